package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/phoenix-launcher/phoenix/internal/config"
	"github.com/phoenix-launcher/phoenix/internal/game"
	"github.com/phoenix-launcher/phoenix/internal/update"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the installed game version and save state",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		dir, err := resolveGameDir(settings)
		if err != nil {
			return err
		}

		info, err := detectWithCache(dir)
		if err != nil {
			return err
		}
		if info == nil {
			fmt.Printf("No game installation found in %s\n", dir)
			return nil
		}

		version := "unknown"
		if db := openVersionDB(); db != nil {
			if gv, ok, _ := db.LookupVersion(info.SHA256); ok {
				version = gv.Version
			}
			db.Close()
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Field", "Value"})
		table.Append([]string{"Directory", info.Directory})
		table.Append([]string{"Executable", filepath.Base(info.Executable)})
		table.Append([]string{"Version", version})
		table.Append([]string{"Build hash", info.SHA256[:12]})
		table.Append([]string{"Saves", game.FormatSize(info.SavesSize)})
		table.Append([]string{"Channel", settings.Channel})

		if _, err := os.Stat(filepath.Join(dir, update.ArchiveDirName)); err == nil {
			table.Append([]string{"Previous version", "archived (rollback available)"})
		}

		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// detectWithCache detects the installation, short-circuiting the executable
// hash through the version database when size and mtime are unchanged.
func detectWithCache(dir string) (*game.Info, error) {
	db := openVersionDB()
	if db == nil {
		return game.Detect(dir)
	}
	defer db.Close()

	var executable string
	for _, name := range game.Executables {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			executable = p
			break
		}
	}
	if executable == "" {
		return nil, nil
	}

	stat, err := os.Stat(executable)
	if err != nil {
		return nil, err
	}

	sum, ok, _ := db.CachedHash(executable, stat.Size(), stat.ModTime())
	if !ok {
		sum, err = game.HashFile(executable)
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", executable, err)
		}
		_ = db.StoreHash(executable, stat.Size(), stat.ModTime(), sum)
	}

	var savesSize int64
	if saveDir := filepath.Join(dir, "save"); dirExists(saveDir) {
		savesSize, _ = game.DirSize(saveDir)
	}

	return &game.Info{
		Directory:  dir,
		Executable: executable,
		SHA256:     sum,
		SavesSize:  savesSize,
	}, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
