package bramble

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional project file read from the environment root.
const ConfigFile = "bramble.yaml"

const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Config holds project settings. Zero-valued fields in the file keep their
// defaults.
type Config struct {
	Title           string `yaml:"title"`
	Width           int    `yaml:"width"`
	Height          int    `yaml:"height"`
	TPS             int    `yaml:"tps"`
	Entry           string `yaml:"entry"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	Debug           bool   `yaml:"debug"`
	AudioSampleRate int    `yaml:"audio_sample_rate"`
}

// DefaultConfig returns the settings used when no project file exists.
func DefaultConfig() Config {
	return Config{
		Title:           "bramble",
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		TPS:             60,
		Entry:           "main.lua",
		LogLevel:        "info",
		LogFormat:       "text",
		AudioSampleRate: 44100,
	}
}

// LoadConfig reads root/bramble.yaml over the defaults. A missing file is
// not an error.
func LoadConfig(root string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(filepath.Join(root, ConfigFile))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", ConfigFile, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", ConfigFile, err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.Width < 1 || c.Height < 1:
		return fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height)
	case c.TPS < 1:
		return fmt.Errorf("tps %d must be at least 1", c.TPS)
	case c.Entry == "":
		return errors.New("entry must not be empty")
	case c.AudioSampleRate < 1:
		return fmt.Errorf("audio_sample_rate %d must be positive", c.AudioSampleRate)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}
