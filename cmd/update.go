package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/phoenix-launcher/phoenix/internal/backup"
	"github.com/phoenix-launcher/phoenix/internal/config"
	"github.com/phoenix-launcher/phoenix/internal/game"
	"github.com/phoenix-launcher/phoenix/internal/release"
	"github.com/phoenix-launcher/phoenix/internal/update"
	"github.com/phoenix-launcher/phoenix/internal/versiondb"
)

var (
	updateChannel string
	updateForce   bool
	skipBackup    bool
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the game to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}

		dir, err := resolveGameDir(settings)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating game directory: %w", err)
		}

		channelName := settings.Channel
		if cmd.Flags().Changed("channel") {
			channelName = updateChannel
		}
		channel, err := release.ParseChannel(channelName)
		if err != nil {
			return err
		}

		downloadDir, err := config.DownloadDir()
		if err != nil {
			return err
		}
		update.SweepPartFiles(downloadDir)
		update.SweepPartFiles(dir)

		ctx := cmd.Context()

		client := release.NewClient(http.DefaultClient)
		build, err := client.FetchLatest(ctx, release.DefaultRepo, channel)
		if err != nil {
			return err
		}
		log.Info().Str("version", build.Version).Str("asset", build.AssetName).Msg("Latest release")

		installed, err := game.Detect(dir)
		if err != nil {
			return err
		}

		db := openVersionDB()
		if db != nil {
			defer db.Close()
		}

		if installed != nil && db != nil && !updateForce {
			if gv, ok, _ := db.LookupVersion(installed.SHA256); ok && gv.Version == build.Version {
				fmt.Printf("Already on %s\n", build.Version)
				return nil
			}
		}

		if installed != nil && settings.BackupBeforeUpdate && !skipBackup && game.HasSaves(dir) {
			backupDir, err := config.BackupDir()
			if err != nil {
				return err
			}
			info, err := backup.Create(dir, backupDir, settings.BackupCompressionLevel)
			if err != nil {
				// A failed safety backup never blocks the update itself.
				log.Warn().Err(err).Msg("Pre-update save backup failed")
			} else {
				fmt.Printf("Backed up saves to %s (%s)\n", info.Path, game.FormatSize(info.Size))
				if _, err := backup.Prune(backupDir, settings.BackupKeepLast); err != nil {
					log.Warn().Err(err).Msg("Backup pruning failed")
				}
			}
		}

		run, err := update.Start(ctx, update.Options{
			AssetURL:                   build.URL,
			AssetName:                  build.AssetName,
			AssetSize:                  build.AssetSize,
			GameDir:                    dir,
			DownloadDir:                downloadDir,
			PreventSaveMove:            settings.PreventSaveMove,
			RemovePreviousInstallation: settings.RemovePreviousInstallation,
		})
		if err != nil {
			return err
		}

		if err := renderProgress(run, build.AssetSize); err != nil {
			return err
		}

		if db != nil {
			recordInstalledVersion(db, dir, build, channel == release.ChannelStable)
		}

		fmt.Printf("Updated to %s\n", build.Version)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateChannel, "channel", "", "Release channel: stable or experimental (default: from settings)")
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "Update even if the installed version already matches")
	updateCmd.Flags().BoolVar(&skipBackup, "skip-backup", false, "Skip the pre-update save backup")
	rootCmd.AddCommand(updateCmd)
}

// renderProgress drives terminal progress bars from the pipeline's snapshot
// stream until completion.
func renderProgress(run *update.Update, assetSize int64) error {
	var bar *progressbar.ProgressBar
	var barPhase update.Phase

	for p := range run.Updates() {
		if p.Phase != barPhase {
			if bar != nil {
				_ = bar.Finish()
				fmt.Println()
			}
			bar = nil
			barPhase = p.Phase
		}

		switch p.Phase {
		case update.PhaseDownloading:
			if bar == nil {
				total := p.TotalBytes
				if total == 0 {
					total = assetSize
				}
				bar = progressbar.NewOptions64(total,
					progressbar.OptionSetDescription("Downloading"),
					progressbar.OptionShowBytes(true),
					progressbar.OptionSetWidth(30),
					progressbar.OptionThrottle(100*time.Millisecond),
				)
			}
			_ = bar.Set64(p.BytesDownloaded)
		case update.PhaseExtracting:
			if bar == nil && p.FilesTotal > 0 {
				bar = progressbar.NewOptions(p.FilesTotal,
					progressbar.OptionSetDescription("Extracting"),
					progressbar.OptionSetWidth(30),
					progressbar.OptionThrottle(100*time.Millisecond),
				)
			}
			if bar != nil {
				_ = bar.Set(p.FilesDone)
			}
		default:
			fmt.Println(p.Phase.String())
		}
	}

	return <-run.Done()
}

// openVersionDB opens the version cache, degrading to nil when unavailable.
func openVersionDB() *versiondb.DB {
	path, err := config.VersionDBPath()
	if err != nil {
		log.Warn().Err(err).Msg("Version database path unavailable")
		return nil
	}
	db, err := versiondb.Open(path)
	if err != nil {
		log.Warn().Err(err).Msg("Version database unavailable")
		return nil
	}
	return db
}

// recordInstalledVersion hashes the freshly installed executable and stores
// the hash-to-version mapping for later status checks.
func recordInstalledVersion(db *versiondb.DB, dir string, build *release.Build, stable bool) {
	installed, err := game.Detect(dir)
	if err != nil || installed == nil {
		return
	}
	err = db.RecordVersion(versiondb.GameVersion{
		SHA256:     installed.SHA256,
		Version:    build.Version,
		Stable:     stable,
		ReleasedOn: build.Published,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to record installed version")
	}
}
