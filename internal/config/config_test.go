// internal/config/config_test.go
package config

import (
	"path/filepath"
	"testing"
)

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) == 0 {
		t.Fatal("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml (highest priority)
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}

	// First path should end in preroll/config.toml
	if got := filepath.Base(filepath.Dir(paths[0])); got != "preroll" {
		t.Errorf("first config path dir = %q, want %q", got, "preroll")
	}
}

func TestGetEngineConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	ecfg := cfg.GetEngineConfig()

	if ecfg.PreloadAhead != 2 {
		t.Errorf("PreloadAhead = %d, want 2", ecfg.PreloadAhead)
	}
	if ecfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", ecfg.MaxAttempts)
	}
	if ecfg.BaseDelayMs != 1000 {
		t.Errorf("BaseDelayMs = %d, want 1000", ecfg.BaseDelayMs)
	}
	if ecfg.WaitingDebounce != 500 {
		t.Errorf("WaitingDebounce = %d, want 500", ecfg.WaitingDebounce)
	}
	if ecfg.SafetyTimeoutMs != 10000 {
		t.Errorf("SafetyTimeoutMs = %d, want 10000", ecfg.SafetyTimeoutMs)
	}
}

func TestGetEngineConfig_ExplicitValuesKept(t *testing.T) {
	cfg := &Config{
		Engine: EngineConfig{
			PreloadAhead: 5,
			MaxAttempts:  1,
			BaseDelayMs:  250,
		},
	}
	ecfg := cfg.GetEngineConfig()

	if ecfg.PreloadAhead != 5 {
		t.Errorf("PreloadAhead = %d, want 5", ecfg.PreloadAhead)
	}
	if ecfg.MaxAttempts != 1 {
		t.Errorf("MaxAttempts = %d, want 1", ecfg.MaxAttempts)
	}
	if ecfg.BaseDelayMs != 250 {
		t.Errorf("BaseDelayMs = %d, want 250", ecfg.BaseDelayMs)
	}
	// Unset fields still get defaults
	if ecfg.WaitingDebounce != 500 {
		t.Errorf("WaitingDebounce = %d, want 500", ecfg.WaitingDebounce)
	}
}

func TestGetWaveformConfig_Defaults(t *testing.T) {
	tests := []struct {
		name  string
		input int
		want  int
	}{
		{"zero gets default", 0, 1000},
		{"negative gets default", -5, 1000},
		{"oversized gets default", 50000, 1000},
		{"valid value kept", 400, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Waveform: WaveformConfig{MaxSamples: tt.input}}
			if got := cfg.GetWaveformConfig().MaxSamples; got != tt.want {
				t.Errorf("MaxSamples = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetSeekConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	scfg := cfg.GetSeekConfig()

	if scfg.PollIntervalMs != 15 {
		t.Errorf("PollIntervalMs = %d, want 15", scfg.PollIntervalMs)
	}
	if scfg.TimeoutMs != 2000 {
		t.Errorf("TimeoutMs = %d, want 2000", scfg.TimeoutMs)
	}
}
