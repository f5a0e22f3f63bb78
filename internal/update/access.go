package update

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/phoenix-launcher/phoenix/internal/game"
)

// writeTestFile is the throwaway probe written to check directory access.
const writeTestFile = ".phoenix_write_test"

// CheckAccess verifies the installation can be modified before any
// destructive phase begins. Each known executable is opened for write
// access - on Windows this fails while the game is running or a scanner
// holds the file - and a throwaway file is written to the directory root.
// No mutation survives the check.
func CheckAccess(gameDir string) error {
	for _, name := range game.Executables {
		exePath := filepath.Join(gameDir, name)
		if _, err := os.Stat(exePath); err != nil {
			continue
		}

		f, err := os.OpenFile(exePath, os.O_WRONLY, 0)
		if err != nil {
			return &LockedError{File: name, Err: err}
		}
		f.Close()
		log.Debug().Str("executable", name).Msg("Access check passed")
	}

	probe := filepath.Join(gameDir, writeTestFile)
	if err := os.WriteFile(probe, []byte("test"), 0o644); err != nil {
		return &AccessDeniedError{Dir: gameDir, Err: err}
	}
	_ = os.Remove(probe)

	return nil
}
