package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rcliao/numberbot/internal/persist"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a stored value",
		Run:   runGet,
	}

	addViewFlags(cmd, true)

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	key, _ := cmd.Flags().GetString("key")

	v, b, err := openView(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer b.Close()

	value, ok, err := v.get(cmd.Context(), key)
	if err != nil {
		exitErr("get", err)
	}
	if !ok {
		exitErr("get", fmt.Errorf("%s:%s: %w", v.namespace(), key, persist.ErrKeyNotFound))
	}

	if formatFlag == "text" {
		raw, _ := json.Marshal(persist.Sanitize(value))
		fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return
	}
	printJSON(cmd, map[string]any{
		"ns":    v.namespace(),
		"key":   key,
		"value": persist.Sanitize(value),
	})
}
