package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"xattrsync/internal/common"
)

var getCmd = &cobra.Command{
	Use:   "get KEY PATH...",
	Short: "Print the value of a specific attribute for one or more files",
	Long: `Print the value of KEY for each path. With more than one path, each value
is prefixed by its path. A missing key is an error.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runGet,
}

var setCmd = &cobra.Command{
	Use:   "set KEY VALUE PATH...",
	Short: "Set an attribute value on one or more files",
	Long: `Set KEY to VALUE on each path. Regular files and directories receive an
extended attribute; symlinks are recorded in the sidecar only.`,
	Args: cobra.MinimumNArgs(3),
	RunE: runSet,
}

var rmCmd = &cobra.Command{
	Use:     "rm KEY PATH...",
	Aliases: []string{"remove"},
	Short:   "Remove an attribute from one or more files",
	Args:    cobra.MinimumNArgs(2),
	RunE:    runRm,
}

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(rmCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	key, paths := args[0], args[1:]
	printPath := len(paths) > 1

	out := cmd.OutOrStdout()
	dirs := newDirs()
	for _, p := range paths {
		view, err := dirs.File(p)
		if err != nil {
			return err
		}
		val, err := view.Get(key, common.None[string]())
		if err != nil {
			return err
		}
		if printPath {
			fmt.Fprintf(out, "%s: %s\n", p, val)
		} else {
			fmt.Fprintln(out, val)
		}
	}
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	key, value, paths := args[0], args[1], args[2:]

	dirs := newDirs()
	for _, p := range paths {
		view, err := dirs.File(p)
		if err != nil {
			return err
		}
		if err := view.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	key, paths := args[0], args[1:]

	dirs := newDirs()
	for _, p := range paths {
		view, err := dirs.File(p)
		if err != nil {
			return err
		}
		if err := view.Remove(key); err != nil {
			return err
		}
	}
	return nil
}
