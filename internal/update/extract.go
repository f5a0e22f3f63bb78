package update

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/phoenix-launcher/phoenix/internal/game"
)

// extractionBatchSize bounds progress traffic: one snapshot per batch of
// entries instead of one per entry, which matters on archives with tens of
// thousands of files.
const extractionBatchSize = 50

// extractArchive unpacks the release zip into dest, entry by entry in
// archive order, and returns the total entry count. Entries whose
// normalized path would escape dest are skipped. A corrupt archive surfaces
// as an ArchiveFormatError before dest is touched when detected at open
// time, or mid-extraction otherwise.
func extractArchive(zipPath, dest string, tracker *Tracker) (int, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, &ArchiveFormatError{Path: zipPath, Err: err}
	}
	defer r.Close()

	total := len(r.File)
	tracker.publish(Progress{Phase: PhaseExtracting, FilesTotal: total})

	for i, f := range r.File {
		outPath, ok := safeJoin(dest, f.Name)
		if !ok {
			log.Warn().Str("entry", f.Name).Msg("Skipping archive entry with unsafe path")
			continue
		}

		if strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(outPath, 0o755); err != nil {
				return 0, fmt.Errorf("creating directory %s: %w", outPath, err)
			}
		} else {
			if err := extractEntry(f, outPath); err != nil {
				return 0, err
			}
		}

		if i%extractionBatchSize == 0 || i == total-1 {
			tracker.publish(Progress{
				Phase:       PhaseExtracting,
				FilesDone:   i + 1,
				FilesTotal:  total,
				CurrentFile: f.Name,
			})
		}
	}

	return total, nil
}

// extractEntry streams one archive entry to outPath, creating parents as
// needed.
func extractEntry(f *zip.File, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating parent directory for %s: %w", outPath, err)
	}

	rc, err := f.Open()
	if err != nil {
		return &ArchiveFormatError{Path: f.Name, Err: err}
	}
	defer rc.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}

	_, err = io.Copy(out, rc)
	closeErr := out.Close()
	if err != nil {
		return fmt.Errorf("extracting %s: %w", outPath, err)
	}
	if closeErr != nil {
		return fmt.Errorf("closing %s: %w", outPath, closeErr)
	}

	return nil
}

// safeJoin resolves an archive entry name under dest, rejecting names that
// would escape it.
func safeJoin(dest, name string) (string, bool) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(dest, cleaned), true
}

// verifyExtraction checks a known executable landed in the destination.
// Archives may legitimately ship a different executable name, so a miss is
// only logged.
func verifyExtraction(gameDir string) bool {
	for _, name := range game.Executables {
		if _, err := os.Stat(filepath.Join(gameDir, name)); err == nil {
			return true
		}
	}
	log.Warn().Msg("Game executable not found after extraction")
	return false
}
