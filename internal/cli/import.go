package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/oklog/ulid/v2"
	"github.com/rcliao/numberbot/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import state from JSON",
		Long:  "Import state from JSON (stdin or file). Expects the format produced by export; keys are written as given.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	in := io.Reader(os.Stdin)
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open input", err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		exitErr("read input", err)
	}

	var entries []store.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		exitErr("parse json", err)
	}

	b, cfg, err := openBackend(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer b.Close()
	logger, err := newLogger(cfg)
	if err != nil {
		exitErr("log level", err)
	}

	batch := ulid.Make().String()
	imported, err := store.Import(cmd.Context(), b, entries)
	if err != nil {
		logger.Error("import failed", "batch", batch, "imported", imported, "error", err)
		exitErr("import", err)
	}
	logger.Info("import done", "batch", batch, "imported", imported, "store", cfg.Store)

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imported":%d,"batch":%q}`+"\n", imported, batch)
}
