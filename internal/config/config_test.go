package config

import (
	"testing"
	"time"

	"github.com/couchcryptid/anomaly-map-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "anomaly-records", cfg.KafkaSourceTopic)
	assert.Equal(t, "anomaly-markers", cfg.KafkaSinkTopic)
	assert.Equal(t, "anomaly-map-etl", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Equal(t, 50000, cfg.StoreMaxRecords)
	assert.Equal(t, 256, cfg.SeriesCacheSize)
	assert.Equal(t, 48.0, cfg.MapCenterLat)
	assert.Equal(t, 15.0, cfg.MapCenterLon)
	assert.Equal(t, 5, cfg.MapZoom)
	assert.Contains(t, cfg.MapTileURL, "openstreetmap.org")
	assert.NotEmpty(t, cfg.IconDefaultURL)
	assert.NotEmpty(t, cfg.IconAnomalousURL)
}

func TestConfig_IconsAndMapView(t *testing.T) {
	t.Setenv("ICON_ANOMALOUS_URL", "/custom/red.png")
	t.Setenv("MAP_ZOOM", "7")
	cfg, err := Load()
	require.NoError(t, err)

	icons := cfg.Icons()
	assert.Equal(t, "/static/icons/marker-icon-2x-blue.png", icons.Default.URL)
	assert.Equal(t, "/custom/red.png", icons.Anomalous.URL)
	assert.Equal(t, "/static/icons/marker-shadow.png", icons.Anomalous.ShadowURL)

	assert.Equal(t, domain.MapView{
		Center:      domain.LatLng{Lat: 48.0, Lon: 15.0},
		Zoom:        7,
		TileURL:     "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
	}, cfg.MapView())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092,")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("STORE_MAX_RECORDS", "10")
	t.Setenv("SERIES_CACHE_SIZE", "4")
	t.Setenv("ICON_ANOMALOUS_URL", "https://cdn.example.com/red.png")
	t.Setenv("MAP_CENTER_LAT", "-33.5")
	t.Setenv("MAP_CENTER_LON", "151.2")
	t.Setenv("MAP_ZOOM", "9")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, 10, cfg.StoreMaxRecords)
	assert.Equal(t, 4, cfg.SeriesCacheSize)
	assert.Equal(t, "https://cdn.example.com/red.png", cfg.IconAnomalousURL)
	assert.Equal(t, -33.5, cfg.MapCenterLat)
	assert.Equal(t, 151.2, cfg.MapCenterLon)
	assert.Equal(t, 9, cfg.MapZoom)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ShutdownTimeout")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-1s"},
		{"zero batch size", "BATCH_SIZE", "0"},
		{"batch size too large", "BATCH_SIZE", "9999"},
		{"zero flush interval", "BATCH_FLUSH_INTERVAL", "0s"},
		{"zero store size", "STORE_MAX_RECORDS", "0"},
		{"negative cache size", "SERIES_CACHE_SIZE", "-1"},
		{"latitude out of range", "MAP_CENTER_LAT", "91"},
		{"longitude out of range", "MAP_CENTER_LON", "-181"},
		{"zoom too deep", "MAP_ZOOM", "23"},
		{"unknown log format", "LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BatchFlushInterval")
}
