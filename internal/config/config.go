// Package config loads server configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Storage   StorageConfig   `yaml:"storage"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

type AnalysisConfig struct {
	// Root is the default target when a start command names no path.
	Root           string `yaml:"root"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type TelemetryConfig struct {
	Interval Duration `yaml:"interval"`
}

// Duration makes time.Duration YAML-friendly ("5s", "250ms").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

func Default() *Config {
	return &Config{
		Server:    ServerConfig{ListenAddr: ":8000"},
		Analysis:  AnalysisConfig{Root: ".", MaxUploadBytes: 32 << 20},
		Telemetry: TelemetryConfig{Interval: Duration(5 * time.Second)},
		Storage:   StorageConfig{DataDir: "data"},
	}
}

// Load builds the config from defaults, then the YAML file at path (if
// any), then environment variables. A .env file is honored when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("CODESCOPE_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("CODESCOPE_ANALYSIS_ROOT"); v != "" {
		cfg.Analysis.Root = v
	}
	if v := os.Getenv("CODESCOPE_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("CODESCOPE_TELEMETRY_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse CODESCOPE_TELEMETRY_INTERVAL: %w", err)
		}
		cfg.Telemetry.Interval = Duration(interval)
	}

	if cfg.Telemetry.Interval <= 0 {
		return nil, fmt.Errorf("telemetry interval must be positive, got %v", cfg.Telemetry.Interval.Std())
	}
	return cfg, nil
}
