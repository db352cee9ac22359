package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/rcliao/numberbot/internal/bot"
	"github.com/rcliao/numberbot/internal/botstate"
	"github.com/rcliao/numberbot/internal/quiz"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play with the bot in the terminal",
		Long: "Chat with the bot on stdin/stdout. Each line is one message; the state is " +
			"stored like a real chat so a later session can pick up where this one stopped. Type /quit to leave.",
		Run: runPlay,
	}

	cmd.Flags().Int64("chat", 1, "Chat id")
	cmd.Flags().Int64("user", 1, "User id")
	cmd.Flags().Bool("resume", false, "Continue the stored conversation instead of sending /start")

	RootCmd.AddCommand(cmd)
}

func runPlay(cmd *cobra.Command, args []string) {
	chatID, _ := cmd.Flags().GetInt64("chat")
	userID, _ := cmd.Flags().GetInt64("user")
	resume, _ := cmd.Flags().GetBool("resume")
	ctx := cmd.Context()

	b, cfg, err := openBackend(ctx)
	if err != nil {
		exitErr("open store", err)
	}
	defer b.Close()
	logger, err := newLogger(cfg)
	if err != nil {
		exitErr("log level", err)
	}

	state, err := botstate.Open(ctx, b, cfg.BotID, botstate.WithLogger(logger))
	if err != nil {
		exitErr("open bot state", err)
	}
	defer func() {
		if err := state.Flush(ctx); err != nil {
			exitErr("flush", err)
		}
	}()

	nb := bot.New(state, quiz.NewTables(), bot.WithLogger(logger), bot.WithConversation(cfg.Conversation))
	out := cmd.OutOrStdout()
	send := func(text string) {
		replies, err := nb.Handle(ctx, bot.Message{ChatID: chatID, UserID: userID, Text: text})
		if err != nil {
			exitErr("handle", err)
		}
		for _, r := range replies {
			fmt.Fprintln(out, r.Text)
			for _, row := range r.Keyboard {
				fmt.Fprintf(out, "  [%s]\n", strings.Join(row, "] ["))
			}
		}
	}

	if !resume {
		send("/start")
	}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "/quit" {
			break
		}
		send(line)
	}
	if err := scanner.Err(); err != nil {
		exitErr("read input", err)
	}
}
