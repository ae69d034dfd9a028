package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"xattrsync/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage xattrsync settings",
	Long: `Settings are read from $XATTRSYNC_CONFIG_DIR/settings.yaml
(default ~/.xattrsync/settings.yaml). Missing fields fall back to defaults.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		written, err := config.InitConfigDir()
		if err != nil {
			return err
		}
		if written {
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.SettingsPath())
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s already exists (not modified)\n", config.SettingsPath())
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := settings.Marshal()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
