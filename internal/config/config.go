package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Engine tunables
	Engine EngineConfig `koanf:"engine"`

	// Waveform extraction settings
	Waveform WaveformConfig `koanf:"waveform"`

	// Frame-accurate seek settings
	Seek SeekConfig `koanf:"seek"`
}

// EngineConfig holds preload and retry tunables.
type EngineConfig struct {
	PreloadAhead    int `koanf:"preload_ahead"`       // clips prefetched past the current index (default: 2)
	MaxAttempts     int `koanf:"max_attempts"`        // retries per recoverable load failure (default: 3)
	BaseDelayMs     int `koanf:"base_delay_ms"`       // linear backoff base in ms (default: 1000)
	WaitingDebounce int `koanf:"waiting_debounce_ms"` // stall debounce before visible loading (default: 500)
	SafetyTimeoutMs int `koanf:"safety_timeout_ms"`   // max visible loading-spinner duration (default: 10000)
}

// WaveformConfig holds waveform extraction settings.
type WaveformConfig struct {
	MaxSamples int `koanf:"max_samples"` // cap on peak blocks per clip (default: 1000)
}

// SeekConfig holds frame-accurate seek settings.
type SeekConfig struct {
	PollIntervalMs int `koanf:"poll_interval_ms"` // position poll cadence without frame callbacks (default: 15)
	TimeoutMs      int `koanf:"timeout_ms"`       // give-up deadline for frame confirmation (default: 2000)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/preroll/config.toml
	paths = append(paths, filepath.Join(xdg.ConfigHome, "preroll", "config.toml"))

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

// GetEngineConfig returns the engine configuration with defaults applied.
func (c *Config) GetEngineConfig() EngineConfig {
	cfg := c.Engine

	if cfg.PreloadAhead <= 0 {
		cfg.PreloadAhead = 2
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelayMs <= 0 {
		cfg.BaseDelayMs = 1000
	}
	if cfg.WaitingDebounce <= 0 {
		cfg.WaitingDebounce = 500
	}
	if cfg.SafetyTimeoutMs <= 0 {
		cfg.SafetyTimeoutMs = 10000
	}

	return cfg
}

// GetWaveformConfig returns the waveform configuration with defaults applied.
func (c *Config) GetWaveformConfig() WaveformConfig {
	cfg := c.Waveform

	if cfg.MaxSamples <= 0 || cfg.MaxSamples > 10000 {
		cfg.MaxSamples = 1000
	}

	return cfg
}

// GetSeekConfig returns the seek configuration with defaults applied.
func (c *Config) GetSeekConfig() SeekConfig {
	cfg := c.Seek

	if cfg.PollIntervalMs <= 0 {
		cfg.PollIntervalMs = 15
	}
	if cfg.TimeoutMs <= 0 {
		cfg.TimeoutMs = 2000
	}

	return cfg
}
