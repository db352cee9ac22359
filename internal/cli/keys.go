package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the keys of a namespace",
		Run:   runKeys,
	}

	addViewFlags(cmd, false)

	RootCmd.AddCommand(cmd)
}

func runKeys(cmd *cobra.Command, args []string) {
	v, b, err := openView(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer b.Close()

	keys, err := v.keys(cmd.Context())
	if err != nil {
		exitErr("keys", err)
	}

	if formatFlag == "text" {
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return
	}
	if keys == nil {
		keys = []string{}
	}
	printJSON(cmd, map[string]any{"ns": v.namespace(), "keys": keys})
}
