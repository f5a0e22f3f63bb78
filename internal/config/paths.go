package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDir = "phoenix"

// SettingsPath returns the location of the launcher settings file.
func SettingsPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(appDir, "settings.toml"))
}

// DownloadDir returns the directory release assets are downloaded into,
// creating it if needed.
func DownloadDir() (string, error) {
	dir := filepath.Join(xdg.CacheHome, appDir, "downloads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}
	return dir, nil
}

// BackupDir returns the directory save backups are written into, creating
// it if needed.
func BackupDir() (string, error) {
	dir := filepath.Join(xdg.DataHome, appDir, "backups")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	return dir, nil
}

// VersionDBPath returns the location of the version cache database.
func VersionDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appDir, "phoenix.db"))
}

// LogFilePath returns the default log file location.
func LogFilePath() string {
	return filepath.Join(xdg.StateHome, appDir, "phoenix.log")
}
