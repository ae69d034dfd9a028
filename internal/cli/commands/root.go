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
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"xattrsync/internal/backend"
	"xattrsync/internal/cache"
	"xattrsync/internal/config"
	"xattrsync/internal/logging"
	"xattrsync/internal/reconcile"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version info for --version flag
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

// getVersionString returns the version string with build info
func getVersionString() string {
	buildDate := formatBuildDate(date)
	if strings.HasSuffix(version, "-dev") {
		return fmt.Sprintf("%s (%s, epoch: %s, commit: %s)", version, buildDate, date, commit)
	}
	return fmt.Sprintf("%s (%s)", version, buildDate)
}

// formatBuildDate converts epoch timestamp to readable date
func formatBuildDate(epoch string) string {
	ts, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return epoch
	}
	return time.Unix(ts, 0).Format("2006-01-02")
}

var (
	verbose       bool
	quiet         bool
	sidecarFlag   string
	namespaceFlag string

	// settings is loaded once per invocation by the root PersistentPreRunE
	settings *config.Settings

	// activeDirs is the directory cache of the running invocation, if any
	activeDirs *cache.Dirs

	// newBackend is swapped out by tests
	newBackend = func(namespace string) backend.Backend {
		return backend.NewOS(namespace)
	}
)

var rootCmd = &cobra.Command{
	Use:   "xattrsync",
	Short: "Keep extended attributes in sync with a per-directory sidecar file",
	Long: `Keep file metadata stored as extended attributes in sync with a JSON sidecar
file (.xattr.json) kept in each directory.

Symlinks cannot carry extended attributes, so their metadata lives only in the
sidecar. When the sidecar and the live attributes disagree, the sidecar wins.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return loadSettings()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if activeDirs == nil {
			return
		}
		st := activeDirs.Stats()
		log.Debugf("[Cache] %d directories reconciled, %d reused (%d cached)", st.Misses, st.Hits, st.Size)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("xattrsync version {{.Version}}\n")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug diagnostics")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "print errors only")
	rootCmd.PersistentFlags().StringVar(&sidecarFlag, "sidecar", "", "sidecar filename (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&namespaceFlag, "namespace", "", "xattr namespace (overrides settings)")
}

// loadSettings reads the settings file, applies flag overrides and configures logging.
func loadSettings() error {
	s, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if sidecarFlag != "" {
		s.SidecarName = sidecarFlag
	}
	if namespaceFlag != "" {
		s.Namespace = namespaceFlag
	}
	if err := s.Validate(); err != nil {
		return err
	}

	level := s.Level()
	switch {
	case quiet:
		level = "error"
	case verbose:
		level = "debug"
	}
	if err := logging.Setup(level, os.Stderr, s.ColorEnabled() && !color.NoColor); err != nil {
		return err
	}

	settings = s
	activeDirs = nil
	return nil
}

// options builds reconciler options from the loaded settings
func options() reconcile.Options {
	return reconcile.Options{
		Backend:     newBackend(settings.Namespace),
		SidecarName: settings.SidecarName,
	}
}

// newDirs returns the directory cache shared by one command invocation
func newDirs() *cache.Dirs {
	if activeDirs == nil {
		activeDirs = cache.NewDirs(options())
	}
	return activeDirs
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
