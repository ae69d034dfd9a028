// Copyright 2024 xattrsync Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"xattrsync/internal/cache"
	"xattrsync/internal/filter"
	"xattrsync/internal/sidecar"
)

var (
	lsOneLine bool
	lsDirs    bool
)

var lsCmd = &cobra.Command{
	Use:   "ls PATH...",
	Short: "Print all attributes of one or more files",
	Long: `Print every attribute of each path.

A directory argument lists the attributes of the entries inside it, unless -d
is given. Listing reconciles each directory it touches.

Examples:
  xattrsync ls photos/
  xattrsync ls -1 a.jpg b.jpg
  xattrsync ls -d photos`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLs,
}

func init() {
	lsCmd.Flags().BoolVarP(&lsOneLine, "oneline", "1", false, "print results on a single line per path")
	lsCmd.Flags().BoolVarP(&lsDirs, "directory", "d", false, "list directories, not their contents")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	paths, err := expandPaths(args, lsDirs)
	if err != nil {
		return err
	}

	keyColor := fmt.Sprint
	if settings.ColorEnabled() && !color.NoColor {
		keyColor = color.New(color.FgBlue).Sprint
	}

	out := cmd.OutOrStdout()
	dirs := newDirs()
	for _, p := range paths {
		if err := printAttrs(out, dirs, p, keyColor); err != nil {
			return err
		}
	}
	return nil
}

func printAttrs(out io.Writer, dirs *cache.Dirs, path string, keyColor func(...interface{}) string) error {
	view, err := dirs.File(path)
	if err != nil {
		return err
	}

	if lsOneLine {
		fmt.Fprint(out, path)
		for _, pair := range view.Items() {
			fmt.Fprintf(out, "|%s=%s", keyColor(pair.Key), pair.Value)
		}
		fmt.Fprintln(out)
		return nil
	}

	fmt.Fprintln(out, path)
	for _, pair := range view.Items() {
		fmt.Fprintf(out, "  %10s: %s\n", keyColor(pair.Key), pair.Value)
	}
	return nil
}

// expandPaths replaces each directory argument with its entries, skipping
// the sidecar and excluded names, unless keepDirs is set.
func expandPaths(args []string, keepDirs bool) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if keepDirs || err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		store := sidecar.NewStore(nil, settings.SidecarName)
		keep := filter.Build(arg, false, settings.Excludes)
		var names []string
		for _, entry := range entries {
			if store.IsSidecarEntry(entry.Name()) || !keep(entry.Name(), entry.IsDir()) {
				continue
			}
			names = append(names, entry.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			paths = append(paths, filepath.Join(arg, name))
		}
	}
	return paths, nil
}
