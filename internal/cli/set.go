package cli

import (
	"fmt"

	"github.com/rcliao/numberbot/internal/persist"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "set <json>",
		Short: "Store a value",
		Long:  "Store a JSON value under ns:key. In dict mode the value must be a JSON object.",
		Args:  cobra.ExactArgs(1),
		Run:   runSet,
	}

	addViewFlags(cmd, true)

	RootCmd.AddCommand(cmd)
}

func runSet(cmd *cobra.Command, args []string) {
	key, _ := cmd.Flags().GetString("key")

	value, err := persist.Sanitized{}.Unmarshal(args[0])
	if err != nil {
		exitErr("parse value", err)
	}

	v, b, err := openView(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer b.Close()

	if err := v.set(cmd.Context(), key, value); err != nil {
		exitErr("set", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"ns":%q,"key":%q}`+"\n", v.namespace(), key)
}
