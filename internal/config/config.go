package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service settings. Values come from built-in defaults, an
// optional YAML file (CONFIG_PATH), then environment variables, in that
// order of precedence.
type Config struct {
	DatasetPath string
	HTTPAddr    string
	LogLevel    string
	LogFormat   string

	ShutdownTimeout time.Duration

	// DatasetCacheSize bounds how many distinct source files the cleaned
	// dataset cache retains.
	DatasetCacheSize int

	// MaxMapPoints caps the hotspot map point count; larger result sets are
	// down-sampled with SampleSeed for reproducibility.
	MaxMapPoints int
	SampleSeed   int64
}

// fileConfig mirrors Config with YAML tags and string durations so a config
// file can override any default before env vars are applied.
type fileConfig struct {
	DatasetPath      string `yaml:"dataset_path"`
	HTTPAddr         string `yaml:"http_addr"`
	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"`
	ShutdownTimeout  string `yaml:"shutdown_timeout"`
	DatasetCacheSize int    `yaml:"dataset_cache_size"`
	MaxMapPoints     int    `yaml:"max_map_points"`
	SampleSeed       int64  `yaml:"sample_seed"`
}

// Load reads configuration, applying defaults where unset.
func Load() (*Config, error) {
	raw := fileConfig{
		DatasetPath:      "road_accident_dataset.csv",
		HTTPAddr:         ":8080",
		LogLevel:         "info",
		LogFormat:        "json",
		ShutdownTimeout:  "10s",
		DatasetCacheSize: 4,
		MaxMapPoints:     150000,
		SampleSeed:       42,
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := applyFile(&raw, path); err != nil {
			return nil, err
		}
	}
	applyEnv(&raw)

	shutdownTimeout, err := time.ParseDuration(raw.ShutdownTimeout)
	if err != nil || shutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}

	cfg := &Config{
		DatasetPath:      raw.DatasetPath,
		HTTPAddr:         raw.HTTPAddr,
		LogLevel:         raw.LogLevel,
		LogFormat:        raw.LogFormat,
		ShutdownTimeout:  shutdownTimeout,
		DatasetCacheSize: raw.DatasetCacheSize,
		MaxMapPoints:     raw.MaxMapPoints,
		SampleSeed:       raw.SampleSeed,
	}

	if cfg.DatasetPath == "" {
		return nil, errors.New("DATASET_PATH is required")
	}
	if cfg.DatasetCacheSize <= 0 {
		return nil, errors.New("DATASET_CACHE_SIZE must be positive")
	}
	if cfg.MaxMapPoints <= 0 {
		return nil, errors.New("MAX_MAP_POINTS must be positive")
	}

	return cfg, nil
}

func applyFile(raw *fileConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, raw); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(raw *fileConfig) {
	raw.DatasetPath = envOrDefault("DATASET_PATH", raw.DatasetPath)
	raw.HTTPAddr = envOrDefault("HTTP_ADDR", raw.HTTPAddr)
	raw.LogLevel = envOrDefault("LOG_LEVEL", raw.LogLevel)
	raw.LogFormat = envOrDefault("LOG_FORMAT", raw.LogFormat)
	raw.ShutdownTimeout = envOrDefault("SHUTDOWN_TIMEOUT", raw.ShutdownTimeout)

	if n, ok := envInt("DATASET_CACHE_SIZE"); ok {
		raw.DatasetCacheSize = n
	}
	if n, ok := envInt("MAX_MAP_POINTS"); ok {
		raw.MaxMapPoints = n
	}
	if s := os.Getenv("SAMPLE_SEED"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			raw.SampleSeed = n
		}
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string) (int, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
