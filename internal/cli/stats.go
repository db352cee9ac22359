package cli

import (
	"fmt"

	"github.com/rcliao/numberbot/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show key counts per namespace",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	b, _, err := openBackend(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer b.Close()

	stats, err := store.CollectStats(cmd.Context(), b)
	if err != nil {
		exitErr("stats", err)
	}

	if formatFlag == "text" {
		fmt.Fprintf(cmd.OutOrStdout(), "%d keys\n", stats.TotalKeys)
		for _, ns := range stats.Namespaces {
			fmt.Fprintf(cmd.OutOrStdout(), "%6d  %s\n", ns.Keys, ns.NS)
		}
		return
	}
	printJSON(cmd, stats)
}
