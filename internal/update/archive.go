package update

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// ArchiveDirName holds the current archive generation: a full
	// rename-displaced snapshot of the previous installation, used as the
	// rollback source. Release content must never use this name.
	ArchiveDirName = ".phoenix_archive"

	// StaleArchiveDirName holds the previous update's generation while it
	// waits for background deletion. At most two generations ever exist.
	StaleArchiveDirName = ".phoenix_archive_old"

	// saveDirName is the save subtree optionally excluded from movement.
	saveDirName = "save"
)

// archiveInstallation displaces the current installation into the archive
// generation using renames, so the step is near-instant regardless of
// install size:
//
//  1. A leftover stale generation (previous cleanup never ran) is deleted
//     synchronously - rare, and the only blocking deletion in the pipeline.
//  2. An existing current generation is renamed to the stale generation,
//     deferring its expensive deletion until after the update.
//  3. Every child of gameDir is renamed into a fresh current generation,
//     except the generation directories, .part artifacts, names in keep
//     (the downloaded asset when it lives in gameDir), and - when
//     preventSaveMove is set - the save subtree.
//
// Afterward everything displaced is reachable under archiveDir as the same
// files, not copies, which is what makes rollback cheap and exact.
func archiveInstallation(gameDir, archiveDir, staleDir string, preventSaveMove bool, keep ...string) error {
	if _, err := os.Stat(staleDir); err == nil {
		log.Warn().Str("dir", staleDir).Msg("Removing stale archive left by an earlier run")
		if err := os.RemoveAll(staleDir); err != nil {
			return fmt.Errorf("removing stale archive: %w", err)
		}
	}

	if _, err := os.Stat(archiveDir); err == nil {
		if err := os.Rename(archiveDir, staleDir); err != nil {
			return fmt.Errorf("rotating previous archive: %w", err)
		}
		log.Debug().Msg("Rotated previous archive generation (deletion deferred)")
	}

	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}

	entries, err := os.ReadDir(gameDir)
	if err != nil {
		return fmt.Errorf("reading game directory: %w", err)
	}

	moved := 0
	for _, entry := range entries {
		name := entry.Name()

		if name == ArchiveDirName || name == StaleArchiveDirName {
			continue
		}
		if strings.HasSuffix(name, TempSuffix) {
			continue
		}
		if slices.Contains(keep, name) {
			continue
		}
		if preventSaveMove && name == saveDirName {
			continue
		}

		src := filepath.Join(gameDir, name)
		dst := filepath.Join(archiveDir, name)
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("moving %s to archive: %w", src, err)
		}
		moved++
	}

	log.Debug().Int("items", moved).Msg("Moved installation into archive")
	return nil
}

// rollback restores the archived snapshot after a failed extraction or
// restoration. Partial new content is deleted, then every archived entry is
// renamed back, leaving the installation byte-identical to its pre-update
// state. A failure here is fatal for the caller to surface distinctly.
func rollback(gameDir, archiveDir string) error {
	log.Warn().Msg("Rolling back to previous installation from archive")

	entries, err := os.ReadDir(gameDir)
	if err != nil {
		return fmt.Errorf("reading game directory during rollback: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == ArchiveDirName || name == StaleArchiveDirName {
			continue
		}
		path := filepath.Join(gameDir, name)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing partial content %s: %w", path, err)
		}
	}

	archived, err := os.ReadDir(archiveDir)
	if err != nil {
		return fmt.Errorf("reading archive during rollback: %w", err)
	}

	restored := 0
	for _, entry := range archived {
		src := filepath.Join(archiveDir, entry.Name())
		dst := filepath.Join(gameDir, entry.Name())
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("restoring %s from archive: %w", src, err)
		}
		restored++
	}

	if err := os.Remove(archiveDir); err != nil {
		log.Warn().Err(err).Msg("Failed to remove empty archive directory")
	}

	log.Info().Int("items", restored).Msg("Rollback complete")
	return nil
}
