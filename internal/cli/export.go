package cli

import (
	"github.com/rcliao/numberbot/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored state as JSON",
		Long:  "Export every key of the bot as a JSON array of {key, value}. Narrow to one namespace with -n.",
		Run:   runExport,
	}

	cmd.Flags().StringP("ns", "n", "", "Namespace, relative to the bot prefix")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	ns, _ := cmd.Flags().GetString("ns")

	b, cfg, err := openBackend(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer b.Close()

	prefix := namespace(cfg, ns)
	if ns != "" {
		prefix += ":"
	}
	entries, err := store.Export(cmd.Context(), b, prefix)
	if err != nil {
		exitErr("export", err)
	}
	if entries == nil {
		entries = []store.Entry{}
	}

	printJSON(cmd, entries)
}
