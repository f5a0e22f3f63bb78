package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/phoenix-launcher/phoenix/internal/backup"
	"github.com/phoenix-launcher/phoenix/internal/config"
	"github.com/phoenix-launcher/phoenix/internal/game"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage save backups",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new save backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		dir, err := resolveGameDir(settings)
		if err != nil {
			return err
		}
		backupDir, err := config.BackupDir()
		if err != nil {
			return err
		}

		info, err := backup.Create(dir, backupDir, settings.BackupCompressionLevel)
		if err != nil {
			return err
		}
		fmt.Printf("Created %s (%s)\n", info.Path, game.FormatSize(info.Size))

		if _, err := backup.Prune(backupDir, settings.BackupKeepLast); err != nil {
			return err
		}
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List existing save backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		backupDir, err := config.BackupDir()
		if err != nil {
			return err
		}
		backups, err := backup.List(backupDir)
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("No backups found")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Name", "Size", "Created"})
		for _, b := range backups {
			table.Append([]string{
				b.Name,
				game.FormatSize(b.Size),
				b.CreatedAt.Format(time.DateTime),
			})
		}
		table.Render()
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Restore saves from a backup, replacing the current save directory",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		dir, err := resolveGameDir(settings)
		if err != nil {
			return err
		}
		backupDir, err := config.BackupDir()
		if err != nil {
			return err
		}

		zipPath := args[0]
		if _, err := os.Stat(zipPath); err != nil {
			zipPath = filepath.Join(backupDir, args[0])
		}

		if err := backup.Restore(zipPath, dir); err != nil {
			return err
		}
		fmt.Printf("Restored saves from %s\n", filepath.Base(zipPath))
		return nil
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old backups beyond the configured retention",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		backupDir, err := config.BackupDir()
		if err != nil {
			return err
		}
		removed, err := backup.Prune(backupDir, settings.BackupKeepLast)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d backup(s)\n", removed)
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd, backupPruneCmd)
	rootCmd.AddCommand(backupCmd)
}
