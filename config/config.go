// Package config provides assistant configuration from .env and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all tunables for the assistant. Values come from the
// process environment, optionally seeded from a .env file in the working
// directory (the original deployment style).
type Config struct {
	AssistantName string
	Username      string
	Hotword       string
	GroqAPIKey    string
	Voice         string

	// Listening tunables.
	EnergyThreshold   int           // RMS on the int16 scale; speech above this
	PauseThreshold    time.Duration // trailing silence that ends a phrase
	PhraseTimeLimit   time.Duration // hard cap on a command phrase
	HotwordWindow     time.Duration // hard cap on a hotword probe
	InactivityTimeout time.Duration // active with no commands -> sleep

	DataDir     string
	FilesDir    string
	DBPath      string
	ChatLogPath string
}

// Load reads configuration, loading .env first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir, err := defaultDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	dataDir = getEnv("GHOST_DATA_DIR", dataDir)

	cfg := &Config{
		AssistantName: getEnv("ASSISTANT_NAME", "Ghost"),
		Username:      getEnv("USERNAME", "You"),
		Hotword:       getEnv("HOTWORD", "ghost"),
		GroqAPIKey:    os.Getenv("GROQ_API_KEY"),
		Voice:         getEnv("GHOST_VOICE", "en-US-GuyNeural"),

		EnergyThreshold:   getEnvInt("ENERGY_THRESHOLD", 300),
		PauseThreshold:    getEnvDuration("PAUSE_THRESHOLD", 800*time.Millisecond),
		PhraseTimeLimit:   getEnvDuration("PHRASE_TIME_LIMIT", 5*time.Second),
		HotwordWindow:     getEnvDuration("HOTWORD_WINDOW", 2*time.Second),
		InactivityTimeout: getEnvDuration("INACTIVITY_TIMEOUT", 60*time.Second),

		DataDir:     dataDir,
		FilesDir:    getEnv("GHOST_FILES_DIR", filepath.Join(dataDir, "Files")),
		DBPath:      getEnv("GHOST_DB_PATH", filepath.Join(dataDir, "ghost.db")),
		ChatLogPath: getEnv("GHOST_CHATLOG", filepath.Join(dataDir, "ChatLog.json")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks tunables for values the listening loop cannot work with.
func (c *Config) Validate() error {
	if c.AssistantName == "" {
		return fmt.Errorf("ASSISTANT_NAME cannot be empty")
	}
	if c.Hotword == "" {
		return fmt.Errorf("HOTWORD cannot be empty")
	}
	if c.EnergyThreshold <= 0 {
		return fmt.Errorf("ENERGY_THRESHOLD must be > 0")
	}
	if c.PauseThreshold <= 0 {
		return fmt.Errorf("PAUSE_THRESHOLD must be > 0")
	}
	if c.PhraseTimeLimit < c.PauseThreshold {
		return fmt.Errorf("PHRASE_TIME_LIMIT must be >= PAUSE_THRESHOLD")
	}
	if c.InactivityTimeout <= 0 {
		return fmt.Errorf("INACTIVITY_TIMEOUT must be > 0")
	}
	return nil
}

// EnsureDirs creates the data and state file directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.FilesDir, filepath.Dir(c.DBPath)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Ghost"), nil
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, "Ghost"), nil
		}
		return filepath.Join(home, "Ghost"), nil
	}
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, "Ghost"), nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("800ms") and bare seconds
// ("0.8"), the latter matching the original configuration values.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
