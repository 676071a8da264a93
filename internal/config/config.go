package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/couchcryptid/anomaly-map-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	KafkaSourceTopic string        `env:"KAFKA_SOURCE_TOPIC" envDefault:"anomaly-records"`
	KafkaSinkTopic   string        `env:"KAFKA_SINK_TOPIC" envDefault:"anomaly-markers"`
	KafkaGroupID     string        `env:"KAFKA_GROUP_ID" envDefault:"anomaly-map-etl"`
	HTTPAddr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	BatchSize          int           `env:"BATCH_SIZE" envDefault:"50"`
	BatchFlushInterval time.Duration `env:"BATCH_FLUSH_INTERVAL" envDefault:"500ms"`

	// In-memory record window and series cache.
	StoreMaxRecords int `env:"STORE_MAX_RECORDS" envDefault:"50000"`
	SeriesCacheSize int `env:"SERIES_CACHE_SIZE" envDefault:"256"`

	// Marker icons handed to the renderer.
	IconDefaultURL   string `env:"ICON_DEFAULT_URL" envDefault:"/static/icons/marker-icon-2x-blue.png"`
	IconAnomalousURL string `env:"ICON_ANOMALOUS_URL" envDefault:"/static/icons/marker-icon-2x-red.png"`
	IconShadowURL    string `env:"ICON_SHADOW_URL" envDefault:"/static/icons/marker-shadow.png"`

	// Initial map view.
	MapCenterLat       float64 `env:"MAP_CENTER_LAT" envDefault:"48.0"`
	MapCenterLon       float64 `env:"MAP_CENTER_LON" envDefault:"15.0"`
	MapZoom            int     `env:"MAP_ZOOM" envDefault:"5"`
	MapTileURL         string  `env:"MAP_TILE_URL" envDefault:"https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"`
	MapTileAttribution string  `env:"MAP_TILE_ATTRIBUTION" envDefault:"&copy; OpenStreetMap contributors"`
}

const maxBatchSize = 1000

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.KafkaBrokers = trimCSV(cfg.KafkaBrokers)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Icons returns the marker icon set the projector draws from.
func (c *Config) Icons() domain.IconSet {
	return domain.NewIconSet(c.IconDefaultURL, c.IconAnomalousURL, c.IconShadowURL)
}

// MapView returns the initial viewport and base layer for the map renderer.
func (c *Config) MapView() domain.MapView {
	return domain.MapView{
		Center:      domain.LatLng{Lat: c.MapCenterLat, Lon: c.MapCenterLon},
		Zoom:        c.MapZoom,
		TileURL:     c.MapTileURL,
		Attribution: c.MapTileAttribution,
	}
}

func (c *Config) validate() error {
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaSourceTopic == "" {
		return errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if c.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.BatchSize < 1 || c.BatchSize > maxBatchSize {
		return fmt.Errorf("BATCH_SIZE must be between 1 and %d", maxBatchSize)
	}
	if c.BatchFlushInterval <= 0 {
		return errors.New("BATCH_FLUSH_INTERVAL must be positive")
	}
	if c.StoreMaxRecords <= 0 {
		return errors.New("STORE_MAX_RECORDS must be positive")
	}
	if c.SeriesCacheSize <= 0 {
		return errors.New("SERIES_CACHE_SIZE must be positive")
	}
	if c.MapCenterLat < -90 || c.MapCenterLat > 90 {
		return errors.New("MAP_CENTER_LAT must be between -90 and 90")
	}
	if c.MapCenterLon < -180 || c.MapCenterLon > 180 {
		return errors.New("MAP_CENTER_LON must be between -180 and 180")
	}
	if c.MapZoom < 0 || c.MapZoom > 22 {
		return errors.New("MAP_ZOOM must be between 0 and 22")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}

// trimCSV drops blank entries left by stray separators.
func trimCSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
