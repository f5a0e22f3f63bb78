package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/phoenix-launcher/phoenix/internal/config"
	"github.com/phoenix-launcher/phoenix/internal/release"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change launcher settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		path, err := config.SettingsPath()
		if err != nil {
			return err
		}

		fmt.Printf("Settings file: %s\n\n", path)
		fmt.Printf("game-dir                     = %q\n", settings.GameDir)
		fmt.Printf("channel                      = %q\n", settings.Channel)
		fmt.Printf("prevent-save-move            = %v\n", settings.PreventSaveMove)
		fmt.Printf("remove-previous-installation = %v\n", settings.RemovePreviousInstallation)
		fmt.Printf("backup-before-update         = %v\n", settings.BackupBeforeUpdate)
		fmt.Printf("backup-compression-level     = %d\n", settings.BackupCompressionLevel)
		fmt.Printf("backup-keep-last             = %d\n", settings.BackupKeepLast)
		fmt.Printf("launch-params                = %q\n", settings.LaunchParams)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and save the settings file",
	Args:  usageArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}

		if err := applySetting(settings, args[0], args[1]); err != nil {
			return err
		}
		if err := settings.Save(); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", args[0], args[1])
		return nil
	},
}

func applySetting(s *config.Settings, key, value string) error {
	switch key {
	case "game-dir":
		s.GameDir = value
	case "channel":
		ch, err := release.ParseChannel(value)
		if err != nil {
			return err
		}
		s.Channel = string(ch)
	case "prevent-save-move":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s wants true or false: %w", key, err)
		}
		s.PreventSaveMove = b
	case "remove-previous-installation":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s wants true or false: %w", key, err)
		}
		s.RemovePreviousInstallation = b
	case "backup-before-update":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s wants true or false: %w", key, err)
		}
		s.BackupBeforeUpdate = b
	case "backup-compression-level":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 9 {
			return fmt.Errorf("%s wants an integer from 0 to 9", key)
		}
		s.BackupCompressionLevel = n
	case "backup-keep-last":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%s wants a positive integer", key)
		}
		s.BackupKeepLast = n
	case "launch-params":
		s.LaunchParams = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
