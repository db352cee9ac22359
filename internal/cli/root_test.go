package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcliao/numberbot/internal/config"
)

func setFlags(t *testing.T, store, botID, configPath string) {
	t.Helper()
	storeFlag, botIDFlag, configFlag = store, botID, configPath
	t.Cleanup(func() { storeFlag, botIDFlag, configFlag = "", "", "" })
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numberbot.json")
	if err := os.WriteFile(path, []byte(`{"store":"file.db","bot_id":"1","conversation":"quiz"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvStore, "")
	t.Setenv(config.EnvRedisURL, "")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvBotID, "2")
	setFlags(t, "memory://", "", path)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Store != "memory://" {
		t.Errorf("flag should win for store, got %q", cfg.Store)
	}
	if cfg.BotID != "2" {
		t.Errorf("env should win over file for bot id, got %q", cfg.BotID)
	}
	if cfg.Conversation != "quiz" {
		t.Errorf("file conversation lost, got %q", cfg.Conversation)
	}
}

func TestNamespace(t *testing.T) {
	if got := namespace(&config.Config{BotID: "7"}, "user_data"); got != "bot_7:user_data" {
		t.Errorf("unexpected namespace %q", got)
	}
	if got := namespace(&config.Config{}, "user_data"); got != "user_data" {
		t.Errorf("unexpected namespace %q", got)
	}
}
