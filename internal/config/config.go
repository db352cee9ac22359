// Package config resolves numberbot settings from defaults, an optional JSON
// file and the environment.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables read by FromEnv.
const (
	EnvStore    = "NUMBERBOT_STORE"
	EnvRedisURL = "REDIS_URL"
	EnvBotID    = "NUMBERBOT_BOT_ID"
	EnvLogLevel = "NUMBERBOT_LOG_LEVEL"
)

// Config holds the settings shared by every command.
type Config struct {
	// Store is a backend location accepted by store.Open.
	Store string `json:"store"`
	// BotID namespaces all keys as "bot_<id>:". Empty means no prefix.
	BotID        string `json:"bot_id,omitempty"`
	LogLevel     string `json:"log_level,omitempty"`
	Conversation string `json:"conversation,omitempty"`
}

// DefaultConfig returns a Config storing state in ~/.numberbot/state.db.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Store:        filepath.Join(home, ".numberbot", "state.db"),
		LogLevel:     "info",
		Conversation: "main",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Store != "" {
		c.Store = source.Store
	}
	if source.BotID != "" {
		c.BotID = source.BotID
	}
	if source.LogLevel != "" {
		c.LogLevel = source.LogLevel
	}
	if source.Conversation != "" {
		c.Conversation = source.Conversation
	}
}

// Load reads a JSON config file and merges it over the defaults.
func Load(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// FromEnv returns the settings present in the environment. NUMBERBOT_STORE
// wins over REDIS_URL.
func FromEnv() Config {
	var c Config
	c.Store = os.Getenv(EnvStore)
	if c.Store == "" {
		c.Store = os.Getenv(EnvRedisURL)
	}
	c.BotID = os.Getenv(EnvBotID)
	c.LogLevel = os.Getenv(EnvLogLevel)
	return c
}

// Level parses LogLevel. Unknown names are an error; empty means info.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
