package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"xattrsync/internal/cache"
	"xattrsync/internal/common"
	"xattrsync/internal/filter"
)

var fixRecurse bool

var fixCmd = &cobra.Command{
	Use:   "fix PATH...",
	Short: "Ensure xattrs match stored attribute data for one or more paths",
	Long: `Reconcile each directory: sidecar values are written back to extended
attributes where they differ, attributes without a sidecar entry are recorded,
and entries for files that no longer exist are dropped.

With -r, every subdirectory is reconciled too. Directories matching the
excludes setting, and .git, are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().BoolVarP(&fixRecurse, "recurse", "r", false, "reconcile subdirectories")
	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	dirs := newDirs()
	for _, p := range args {
		if !fixRecurse {
			log.Infof("Fixing path: %s", p)
			if _, err := dirs.Directory(p); err != nil {
				return err
			}
			continue
		}

		log.Infof("Recursively fixing path: %s", p)
		if err := fixTree(dirs, p); err != nil {
			return err
		}
	}
	return nil
}

// fixTree reconciles root and every non-excluded directory below it. The
// records of the walked tree are released afterwards.
func fixTree(dirs *cache.Dirs, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", common.ErrNotDir, root)
	}
	defer dirs.DropPrefix(root)

	keep := filter.Build(root, settings.Gitignore, settings.Excludes)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if !keep(rel, true) {
			log.Debugf("Skipping excluded directory: %s", path)
			return filepath.SkipDir
		}
		log.Debugf("Fixing: %s", path)
		_, err = dirs.Directory(path)
		return err
	})
}
