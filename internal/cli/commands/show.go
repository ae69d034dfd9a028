package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"xattrsync/internal/reconcile"
)

var showCmd = &cobra.Command{
	Use:   "show DIR...",
	Short: "Print the stored sidecar record of one or more directories",
	Long: `Print the record stored in each directory's sidecar as JSON, exactly as
persisted. Nothing is reconciled and no extended attribute is read or written.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, dir := range args {
		rec, err := reconcile.StoredView(dir, options())
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		if len(args) > 1 {
			fmt.Fprintf(out, "%s:\n", dir)
		}
		fmt.Fprintln(out, string(data))
	}
	return nil
}
