package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete a stored value",
		Run:   runRm,
	}

	addViewFlags(cmd, true)

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	key, _ := cmd.Flags().GetString("key")

	v, b, err := openView(cmd)
	if err != nil {
		exitErr("open store", err)
	}
	defer b.Close()

	if err := v.delete(cmd.Context(), key); err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"ns":%q,"key":%q}`+"\n", v.namespace(), key)
}
