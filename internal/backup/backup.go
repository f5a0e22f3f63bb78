// Package backup creates and restores zip backups of the save directory.
package backup

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	saveDirName = "save"

	namePrefix = "saves-"
	nameSuffix = ".zip"

	// timestampLayout keeps backup names sortable lexicographically.
	timestampLayout = "20060102-150405"
)

// Info describes one backup on disk.
type Info struct {
	Path      string
	Name      string
	Size      int64
	CreatedAt time.Time
}

// Create zips gameDir's save directory into destDir at the given flate
// compression level and returns the written backup's info. An empty or
// missing save directory is an error, since an empty backup is never what
// the user wanted.
func Create(gameDir, destDir string, level int) (*Info, error) {
	saveDir := filepath.Join(gameDir, saveDirName)
	if info, err := os.Stat(saveDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("no save directory at %s", saveDir)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	name := namePrefix + time.Now().Format(timestampLayout) + nameSuffix
	destPath := filepath.Join(destDir, name)

	f, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("creating backup file: %w", err)
	}

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	files := 0
	err = filepath.WalkDir(saveDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(saveDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, in)
		in.Close()
		if err != nil {
			return err
		}
		files++
		return nil
	})
	if err != nil {
		zw.Close()
		f.Close()
		os.Remove(destPath)
		return nil, fmt.Errorf("archiving saves: %w", err)
	}
	if files == 0 {
		zw.Close()
		f.Close()
		os.Remove(destPath)
		return nil, fmt.Errorf("save directory %s is empty", saveDir)
	}

	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(destPath)
		return nil, fmt.Errorf("finalizing backup: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(destPath)
		return nil, fmt.Errorf("closing backup: %w", err)
	}

	stat, err := os.Stat(destPath)
	if err != nil {
		return nil, fmt.Errorf("reading backup info: %w", err)
	}

	log.Info().Str("path", destPath).Int("files", files).Msg("Created save backup")

	return &Info{
		Path:      destPath,
		Name:      name,
		Size:      stat.Size(),
		CreatedAt: stat.ModTime(),
	}, nil
}

// List returns backups in destDir, newest first.
func List(destDir string) ([]Info, error) {
	entries, err := os.ReadDir(destDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, namePrefix) || !strings.HasSuffix(name, nameSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(destDir, name),
			Name:      name,
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// Prune deletes all but the newest keep backups. keep <= 0 disables
// pruning. It returns how many backups were removed.
func Prune(destDir string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	backups, err := List(destDir)
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	removed := 0
	for _, b := range backups[keep:] {
		if err := os.Remove(b.Path); err != nil {
			return removed, fmt.Errorf("pruning %s: %w", b.Path, err)
		}
		removed++
	}

	log.Debug().Int("removed", removed).Msg("Pruned old backups")
	return removed, nil
}

// Restore replaces gameDir's save directory with the contents of the
// backup at zipPath. The existing save directory, if any, is removed first.
func Restore(zipPath, gameDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("opening backup %s: %w", zipPath, err)
	}
	defer r.Close()

	saveDir := filepath.Join(gameDir, saveDirName)
	if _, err := os.Stat(saveDir); err == nil {
		if err := os.RemoveAll(saveDir); err != nil {
			return fmt.Errorf("removing existing saves: %w", err)
		}
	}

	for _, f := range r.File {
		cleaned := filepath.Clean(filepath.FromSlash(f.Name))
		if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
			log.Warn().Str("entry", f.Name).Msg("Skipping backup entry with unsafe path")
			continue
		}
		outPath := filepath.Join(saveDir, cleaned)

		if strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(outPath, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", outPath, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return fmt.Errorf("creating parent directory for %s: %w", outPath, err)
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("reading backup entry %s: %w", f.Name, err)
		}
		out, err := os.Create(outPath)
		if err != nil {
			rc.Close()
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		_, copyErr := io.Copy(out, rc)
		rc.Close()
		closeErr := out.Close()
		if copyErr != nil {
			return fmt.Errorf("restoring %s: %w", outPath, copyErr)
		}
		if closeErr != nil {
			return fmt.Errorf("closing %s: %w", outPath, closeErr)
		}
	}

	log.Info().Str("backup", zipPath).Msg("Restored saves from backup")
	return nil
}
