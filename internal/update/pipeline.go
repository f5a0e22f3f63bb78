package update

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Options configures a single update run.
type Options struct {
	// AssetURL is the release zip to download.
	AssetURL string

	// AssetName names the downloaded file; derived from AssetURL when empty.
	AssetName string

	// AssetSize is the release asset's byte size as reported by the release
	// metadata. Used for download progress when the server omits a length.
	AssetSize int64

	// GameDir is the installation to update. Must exist.
	GameDir string

	// DownloadDir receives the downloaded asset. Defaults to GameDir.
	DownloadDir string

	// Client performs the download. Defaults to http.DefaultClient.
	Client *http.Client

	// PreventSaveMove keeps the save subtree in place instead of cycling it
	// through the archive.
	PreventSaveMove bool

	// RemovePreviousInstallation deletes the archive generation after a
	// successful update instead of keeping it for manual recovery.
	RemovePreviousInstallation bool

	// KeepAsset leaves the downloaded zip in place after extraction.
	KeepAsset bool
}

// Update is a handle on an in-flight update run. Progress snapshots arrive
// on Updates; the final outcome arrives exactly once on Done, after the
// progress channel is closed.
type Update struct {
	tracker *Tracker
	done    chan error
}

// Updates returns the progress channel. It carries only the latest snapshot
// and closes when the run finishes.
func (u *Update) Updates() <-chan Progress {
	return u.tracker.Updates()
}

// Done returns the completion channel. It delivers nil on success or the
// run's terminal error.
func (u *Update) Done() <-chan error {
	return u.done
}

// Start validates options and launches the update pipeline in a goroutine:
// access check, download, archive, extract, restore. Extraction and
// restoration failures trigger a rollback to the archived snapshot before
// the error is reported.
func Start(ctx context.Context, opts Options) (*Update, error) {
	if opts.AssetURL == "" {
		return nil, errors.New("asset URL is required")
	}
	if info, err := os.Stat(opts.GameDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("game directory %s is not accessible", opts.GameDir)
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = opts.GameDir
	}
	if opts.AssetName == "" {
		opts.AssetName = filepath.Base(opts.AssetURL)
	}

	u := &Update{
		tracker: NewTracker(),
		done:    make(chan error, 1),
	}

	go func() {
		err := run(ctx, opts, u.tracker)
		if err != nil {
			u.tracker.publish(Progress{Phase: PhaseFailed})
		} else {
			u.tracker.publish(Progress{Phase: PhaseComplete})
		}
		u.tracker.close()
		u.done <- err
	}()

	return u, nil
}

func run(ctx context.Context, opts Options, tracker *Tracker) error {
	if err := CheckAccess(opts.GameDir); err != nil {
		return err
	}

	assetPath := filepath.Join(opts.DownloadDir, opts.AssetName)
	if _, err := Download(ctx, opts.Client, opts.AssetURL, assetPath, opts.AssetSize, tracker); err != nil {
		return err
	}

	archiveDir := filepath.Join(opts.GameDir, ArchiveDirName)
	staleDir := filepath.Join(opts.GameDir, StaleArchiveDirName)

	tracker.publish(Progress{Phase: PhaseArchiving})
	if err := archiveInstallation(opts.GameDir, archiveDir, staleDir, opts.PreventSaveMove, opts.AssetName); err != nil {
		return err
	}

	if _, err := extractArchive(assetPath, opts.GameDir, tracker); err != nil {
		return failWithRollback(opts.GameDir, archiveDir, tracker, err)
	}
	verifyExtraction(opts.GameDir)

	tracker.publish(Progress{Phase: PhaseRestoring})
	if err := restoreUserData(archiveDir, opts.GameDir, opts.PreventSaveMove); err != nil {
		return failWithRollback(opts.GameDir, archiveDir, tracker, err)
	}

	if !opts.KeepAsset {
		if err := os.Remove(assetPath); err != nil {
			log.Warn().Err(err).Str("path", assetPath).Msg("Failed to remove downloaded asset")
		}
	}

	if opts.RemovePreviousInstallation {
		if err := os.RemoveAll(archiveDir); err != nil {
			log.Warn().Err(err).Msg("Failed to remove previous installation archive")
		}
	}

	// The stale generation is garbage from the update before this one.
	// Deleting it can take a while on large installs, so it happens off the
	// critical path and any failure just leaves it for the next run.
	go func(dir string) {
		if _, err := os.Stat(dir); err != nil {
			return
		}
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Background archive cleanup failed")
			return
		}
		log.Debug().Str("dir", dir).Msg("Removed stale archive generation")
	}(staleDir)

	return nil
}

// failWithRollback attempts to restore the archived snapshot after cause.
// When rollback itself fails both errors surface together, since the
// installation is now in an undefined state the user must inspect.
func failWithRollback(gameDir, archiveDir string, tracker *Tracker, cause error) error {
	tracker.publish(Progress{Phase: PhaseRollingBack})

	if rbErr := rollback(gameDir, archiveDir); rbErr != nil {
		return &RollbackFailedError{Cause: cause, Rollback: rbErr}
	}
	return fmt.Errorf("update failed, previous version restored: %w", cause)
}
