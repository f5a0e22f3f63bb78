// Package game detects and launches local game installations.
package game

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Executables lists the known game executable names, checked in order.
var Executables = []string{"cataclysm-tiles.exe", "cataclysm.exe"}

// worldFiles indicate a directory under save/ holds an actual world.
var worldFiles = []string{"worldoptions.json", "worldoptions.txt", "master.gsav"}

// Info describes a detected installation.
type Info struct {
	Directory  string
	Executable string
	SHA256     string
	SavesSize  int64
}

// Detect looks for a game installation in dir. Returns nil when no known
// executable is present.
func Detect(dir string) (*Info, error) {
	var executable string
	for _, name := range Executables {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			executable = p
			break
		}
	}
	if executable == "" {
		return nil, nil
	}

	sum, err := HashFile(executable)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", executable, err)
	}

	var savesSize int64
	saveDir := filepath.Join(dir, "save")
	if _, err := os.Stat(saveDir); err == nil {
		savesSize, _ = DirSize(saveDir)
	}

	return &Info{
		Directory:  dir,
		Executable: executable,
		SHA256:     sum,
		SavesSize:  savesSize,
	}, nil
}

// HashFile returns the hex SHA-256 of a file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DirSize returns the total size in bytes of all files under dir.
func DirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}

// HasSaves reports whether dir contains at least one world under save/.
func HasSaves(dir string) bool {
	saveDir := filepath.Join(dir, "save")
	entries, err := os.ReadDir(saveDir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		for _, wf := range worldFiles {
			if _, err := os.Stat(filepath.Join(saveDir, entry.Name(), wf)); err == nil {
				return true
			}
		}
	}
	return false
}

// Launch starts the game executable with the given parameter string, using
// the executable's directory as the working directory.
func Launch(executable, params string) error {
	cmd := exec.Command(executable, strings.Fields(params)...)
	cmd.Dir = filepath.Dir(executable)

	log.Info().Str("executable", executable).Str("params", params).Msg("Launching game")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching game: %w", err)
	}
	return nil
}

// FormatSize renders a byte count as a human-readable string.
func FormatSize(bytes int64) string {
	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	size := float64(bytes)
	idx := 0
	for size >= 1024 && idx < len(units)-1 {
		size /= 1024
		idx++
	}
	if idx == 0 {
		return fmt.Sprintf("%d %s", bytes, units[0])
	}
	return fmt.Sprintf("%.2f %s", size, units[idx])
}
