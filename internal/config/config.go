// Package config holds the launcher settings file and well-known paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Settings is the persisted launcher configuration.
type Settings struct {
	// GameDir is the live game installation directory.
	GameDir string `toml:"game-dir,omitempty"`
	// Channel selects which release channel to follow (stable or experimental).
	Channel string `toml:"channel,omitempty"`
	// PreventSaveMove leaves the save directory in place during updates
	// instead of moving it through the archive generation.
	PreventSaveMove bool `toml:"prevent-save-move"`
	// RemovePreviousInstallation deletes the archive generation once an
	// update succeeds instead of keeping it for manual rollback.
	RemovePreviousInstallation bool `toml:"remove-previous-installation"`
	// BackupBeforeUpdate creates a compressed save backup before updating.
	BackupBeforeUpdate bool `toml:"backup-before-update"`
	// BackupCompressionLevel is the zip deflate level (0-9) for save backups.
	BackupCompressionLevel int `toml:"backup-compression-level"`
	// BackupKeepLast bounds how many save backups are retained.
	BackupKeepLast int `toml:"backup-keep-last"`
	// LaunchParams is passed verbatim to the game executable.
	LaunchParams string `toml:"launch-params,omitempty"`
}

// Default returns the settings used when no file exists yet.
func Default() *Settings {
	return &Settings{
		Channel:                "stable",
		BackupCompressionLevel: 6,
		BackupKeepLast:         5,
	}
}

// Load reads the settings file, returning defaults when it does not exist.
func Load() (*Settings, error) {
	path, err := SettingsPath()
	if err != nil {
		return nil, err
	}

	s := Default()
	if _, err := toml.DecodeFile(path, s); err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	if s.BackupCompressionLevel < 0 || s.BackupCompressionLevel > 9 {
		s.BackupCompressionLevel = Default().BackupCompressionLevel
	}
	if s.BackupKeepLast < 1 {
		s.BackupKeepLast = Default().BackupKeepLast
	}

	return s, nil
}

// Save writes the settings file, creating its directory if needed.
func (s *Settings) Save() error {
	path, err := SettingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating settings file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return nil
}
