// Package cli implements the numberbot CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/rcliao/numberbot/internal/botstate"
	"github.com/rcliao/numberbot/internal/config"
	"github.com/rcliao/numberbot/internal/store"
	"github.com/spf13/cobra"
)

var (
	storeFlag    string
	botIDFlag    string
	configFlag   string
	logLevelFlag string
	formatFlag   string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "numberbot",
	Short: "Multiplication quiz bot with persistent state",
	Long: "A quiz bot for multiplication tables and a number-guessing game, " +
		"with its state kept in SQLite or Redis. Play in the terminal or inspect the stored state.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&storeFlag, "store", "s", "", "Store location: a SQLite path, sqlite://, redis:// or memory:// (default: $NUMBERBOT_STORE, $REDIS_URL or ~/.numberbot/state.db)")
	RootCmd.PersistentFlags().StringVarP(&botIDFlag, "bot-id", "b", "", "Bot id; keys are prefixed with bot_<id>: (default: $NUMBERBOT_BOT_ID)")
	RootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "JSON config file")
	RootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// loadConfig resolves settings: defaults, then --config, then the
// environment, then flags.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFlag != "" {
		loaded, err := config.Load(configFlag)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	env := config.FromEnv()
	cfg.Merge(&env)
	cfg.Merge(&config.Config{Store: storeFlag, BotID: botIDFlag, LogLevel: logLevelFlag})
	return &cfg, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func openBackend(ctx context.Context) (store.Backend, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	b, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	return b, cfg, nil
}

// namespace places ns under the configured bot's prefix.
func namespace(cfg *config.Config, ns string) string {
	return botstate.KeyPrefix(cfg.BotID) + ns
}

func printJSON(cmd *cobra.Command, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
