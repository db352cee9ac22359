package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if !strings.HasSuffix(c.Store, filepath.Join(".numberbot", "state.db")) {
		t.Errorf("unexpected default store %q", c.Store)
	}
	if c.Conversation != "main" || c.LogLevel != "info" || c.BotID != "" {
		t.Errorf("unexpected defaults %+v", c)
	}
}

func TestMergeKeepsZeroValues(t *testing.T) {
	c := DefaultConfig()
	c.Merge(&Config{BotID: "7"})
	if c.BotID != "7" {
		t.Errorf("expected bot id 7, got %q", c.BotID)
	}
	if c.Conversation != "main" {
		t.Errorf("empty source field overwrote conversation: %q", c.Conversation)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numberbot.json")
	if err := os.WriteFile(path, []byte(`{"store":"redis://localhost:6379/1","log_level":"debug"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Store != "redis://localhost:6379/1" {
		t.Errorf("unexpected store %q", c.Store)
	}
	if c.Conversation != "main" {
		t.Errorf("default conversation lost: %q", c.Conversation)
	}
	if l, _ := c.Level(); l != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", l)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte(`{"store":`), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvStore, "")
	t.Setenv(EnvRedisURL, "redis://cache:6379/0")
	t.Setenv(EnvBotID, "42")
	t.Setenv(EnvLogLevel, "warn")

	c := FromEnv()
	if c.Store != "redis://cache:6379/0" || c.BotID != "42" || c.LogLevel != "warn" {
		t.Errorf("unexpected env config %+v", c)
	}

	t.Setenv(EnvStore, "memory://")
	if c := FromEnv(); c.Store != "memory://" {
		t.Errorf("expected NUMBERBOT_STORE to win, got %q", c.Store)
	}
}

func TestLevel(t *testing.T) {
	c := Config{LogLevel: "nope"}
	if _, err := c.Level(); err == nil {
		t.Error("expected error for unknown level")
	}
	c.LogLevel = ""
	if l, err := c.Level(); err != nil || l != slog.LevelInfo {
		t.Errorf("empty level: %v, %v", l, err)
	}
}
