package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings are the optional user knobs read from settings.yaml in the data
// directory. Absent file or absent keys fall back to defaults.
type Settings struct {
	// Timezone selects the location used to interpret and format session
	// timestamps: "local" (default) or "utc". The CSV wire format carries no
	// zone field, so exports are only portable between machines that agree
	// on this setting.
	Timezone             string  `yaml:"timezone"`
	DefaultMinPercentile float64 `yaml:"default_min_percentile"`
	HistogramBuckets     int     `yaml:"histogram_buckets"`
	WatchDir             string  `yaml:"watch_dir"`
}

type Config struct {
	DataDir      string
	DBPath       string
	SettingsPath string
	Settings     Settings
}

func defaultSettings() Settings {
	return Settings{
		Timezone:             "local",
		DefaultMinPercentile: 0,
		HistogramBuckets:     10,
	}
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Config{
		DataDir:      dataDir,
		DBPath:       filepath.Join(dataDir, "tally.db"),
		SettingsPath: filepath.Join(dataDir, "settings.yaml"),
		Settings:     defaultSettings(),
	}

	raw, err := os.ReadFile(cfg.SettingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg.Settings); err != nil {
		return Config{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	if cfg.Settings.Timezone == "" {
		cfg.Settings.Timezone = "local"
	}
	if cfg.Settings.HistogramBuckets <= 0 {
		cfg.Settings.HistogramBuckets = 10
	}
	return cfg, nil
}

// Location resolves the Settings.Timezone value to a time.Location.
func (c Config) Location() (*time.Location, error) {
	switch c.Settings.Timezone {
	case "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	default:
		return nil, fmt.Errorf("unknown timezone setting %q (want local or utc)", c.Settings.Timezone)
	}
}
