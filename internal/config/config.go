package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. SCOREBUG_FEED_BASE_URL.
const EnvPrefix = "SCOREBUG"

// Config holds runtime configuration for the streamer.
type Config struct {
	Feed       FeedConfig     `yaml:"feed" envconfig:"FEED"`
	Site       SiteConfig     `yaml:"site" envconfig:"SITE"`
	Playback   PlaybackConfig `yaml:"playback" envconfig:"PLAYBACK"`
	Render     RenderConfig   `yaml:"render" envconfig:"RENDER"`
	Face       FaceConfig     `yaml:"face" envconfig:"FACE"`
	Encoder    EncoderConfig  `yaml:"encoder" envconfig:"ENCODER"`
	Archive    ArchiveConfig  `yaml:"archive" envconfig:"ARCHIVE"`
	HTTP       HTTPConfig     `yaml:"http" envconfig:"HTTP"`
	Metrics    MetricsConfig  `yaml:"metrics" envconfig:"METRICS"`
	Log        LogConfig      `yaml:"log" envconfig:"LOG"`
	AdminToken string         `yaml:"admin_token" envconfig:"ADMIN_TOKEN"`
}

// Load builds the configuration from defaults, the optional YAML file at path, a .env
// file in the working directory and finally SCOREBUG_* environment variables.
func Load(path string) (Config, error) {
	return load(path, ".env")
}

func load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
