package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/couchcryptid/anomaly-map-etl/internal/config"
	"github.com/couchcryptid/anomaly-map-etl/internal/domain"
	"github.com/couchcryptid/anomaly-map-etl/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the Writer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer projects records to map markers and publishes them to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer    messageWriter
	projector *domain.MarkerProjector
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured sink topic. Messages
// are hashed by key so every marker of one observation lands on one partition.
func NewWriter(cfg *config.Config, projector *domain.MarkerProjector, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newWriter(w, projector, logger, metrics)
}

func newWriter(w messageWriter, projector *domain.MarkerProjector, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	return &Writer{writer: w, projector: projector, logger: logger, metrics: metrics}
}

// LoadBatch projects the records and publishes one marker event per placed
// record in a single WriteMessages call. Records that cannot be placed are
// logged and counted, never published.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.AnomalyRecord) error {
	if len(records) == 0 {
		return nil
	}

	markers, diags := w.projector.Project(records)
	for _, d := range diags {
		w.logger.Warn("record diagnostic",
			"index", d.Index,
			"name", d.Name,
			"field", d.Field,
			"error", d.Reason,
		)
		w.metrics.RecordDiagnostic(d.Field)
	}
	if len(markers) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, len(markers))
	anomalous := 0
	for i := range markers {
		msg, err := serializeToMessage(markers[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
		if markers[i].IconVariant == domain.IconAnomalous {
			anomalous++
		}
	}

	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write markers: %w", err)
	}

	w.metrics.MarkersProduced.Add(float64(len(msgs)))
	w.metrics.AnomalousMarkers.Add(float64(anomalous))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a marker into a Kafka message keyed by the
// marker key. Headers are sorted by name.
func serializeToMessage(m domain.MarkerDescriptor) (kafkago.Message, error) {
	out, err := domain.SerializeMarker(m)
	if err != nil {
		return kafkago.Message{}, err
	}

	keys := make([]string, 0, len(out.Headers))
	for k := range out.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafkago.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(out.Headers[k])})
	}

	return kafkago.Message{
		Key:     out.Key,
		Value:   out.Value,
		Headers: headers,
	}, nil
}
