package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// SerializeMarker wraps a marker in a MarkerEvent stamped with the current
// clock time and marshals it for the sink topic.
func SerializeMarker(m MarkerDescriptor) (OutputEvent, error) {
	event := MarkerEvent{Marker: m, ProcessedAt: clock.Now().UTC()}
	data, err := json.Marshal(event)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize marker: %w", err)
	}
	return OutputEvent{
		Key:   []byte(m.Key),
		Value: data,
		Headers: map[string]string{
			"icon_variant": string(m.IconVariant),
			"feature":      m.Feature,
			"processed_at": event.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
