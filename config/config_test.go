package config

import (
	"testing"
	"time"
)

func TestGetEnvDuration(t *testing.T) {
	for _, tt := range []struct {
		value string
		want  time.Duration
	}{
		{"800ms", 800 * time.Millisecond},
		{"5s", 5 * time.Second},
		{"0.8", 800 * time.Millisecond},
		{"2", 2 * time.Second},
		{"garbage", time.Second},
		{"", time.Second},
	} {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("GHOST_TEST_DUR", tt.value)
			if got := getEnvDuration("GHOST_TEST_DUR", time.Second); got != tt.want {
				t.Errorf("getEnvDuration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AssistantName:     "Ghost",
			Hotword:           "ghost",
			EnergyThreshold:   300,
			PauseThreshold:    800 * time.Millisecond,
			PhraseTimeLimit:   5 * time.Second,
			InactivityTimeout: time.Minute,
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	c := valid()
	c.Hotword = ""
	if err := c.Validate(); err == nil {
		t.Error("empty hotword accepted")
	}

	c = valid()
	c.PhraseTimeLimit = 100 * time.Millisecond
	if err := c.Validate(); err == nil {
		t.Error("phrase limit below pause threshold accepted")
	}

	c = valid()
	c.EnergyThreshold = 0
	if err := c.Validate(); err == nil {
		t.Error("zero energy threshold accepted")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("GHOST_DATA_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AssistantName != "Ghost" {
		t.Errorf("AssistantName = %q, want Ghost", cfg.AssistantName)
	}
	if cfg.Hotword != "ghost" {
		t.Errorf("Hotword = %q, want ghost", cfg.Hotword)
	}
	if cfg.EnergyThreshold != 300 {
		t.Errorf("EnergyThreshold = %d, want 300", cfg.EnergyThreshold)
	}
	if cfg.PauseThreshold != 800*time.Millisecond {
		t.Errorf("PauseThreshold = %v, want 800ms", cfg.PauseThreshold)
	}
	if cfg.InactivityTimeout != time.Minute {
		t.Errorf("InactivityTimeout = %v, want 1m", cfg.InactivityTimeout)
	}
}
