package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataPath        string
	DataSheet       string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	HighThreshold float64
	LowThreshold  float64
	MapZoom       float64
	MapPitch      float64

	// Mapbox static map rendering.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxStyle     string
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Kafka report publishing.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaReportTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	high, err := parseFloat("HIGH_READINESS_THRESHOLD", "85")
	if err != nil {
		return nil, err
	}
	low, err := parseFloat("LOW_READINESS_THRESHOLD", "60")
	if err != nil {
		return nil, err
	}
	zoom, err := parseFloat("MAP_ZOOM", "4")
	if err != nil {
		return nil, err
	}
	pitch, err := parseFloat("MAP_PITCH", "30")
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		DataPath:        sharedcfg.EnvOrDefault("DATA_PATH", "data/USAF_100_Base_Data.csv"),
		DataSheet:       os.Getenv("DATA_SHEET"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		HighThreshold: high,
		LowThreshold:  low,
		MapZoom:       zoom,
		MapPitch:      pitch,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxStyle:     sharedcfg.EnvOrDefault("MAPBOX_STYLE", "mapbox/light-v11"),
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaReportTopic: sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "readiness-insights"),
	}

	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if cfg.HighThreshold <= cfg.LowThreshold {
		return nil, errors.New("HIGH_READINESS_THRESHOLD must be greater than LOW_READINESS_THRESHOLD")
	}
	if cfg.MapZoom < 0 || cfg.MapZoom > 22 {
		return nil, errors.New("MAP_ZOOM must be between 0 and 22")
	}
	if cfg.MapPitch < 0 || cfg.MapPitch > 60 {
		return nil, errors.New("MAP_PITCH must be between 0 and 60")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaReportTopic == "" {
			return nil, errors.New("KAFKA_REPORT_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s: must be a finite number", key)
	}
	return v, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 64
}
