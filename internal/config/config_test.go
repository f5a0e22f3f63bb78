package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
)

// isolateXDG redirects every XDG base directory into a temp dir so tests
// never touch the real user config.
func isolateXDG(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))
	xdg.Reload()
	return home
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	isolateXDG(t)

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Channel != "stable" {
		t.Fatalf("Channel = %q, want stable", s.Channel)
	}
	if s.BackupCompressionLevel != 6 || s.BackupKeepLast != 5 {
		t.Fatalf("backup defaults = %d/%d, want 6/5", s.BackupCompressionLevel, s.BackupKeepLast)
	}
	if s.PreventSaveMove || s.RemovePreviousInstallation || s.BackupBeforeUpdate {
		t.Fatal("boolean defaults must be false")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolateXDG(t)

	s := Default()
	s.GameDir = "/games/cdda"
	s.Channel = "experimental"
	s.PreventSaveMove = true
	s.BackupKeepLast = 9
	s.LaunchParams = "--world Devtest"

	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *s {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, s)
	}
}

func TestLoadClampsInvalidValues(t *testing.T) {
	isolateXDG(t)

	path, err := SettingsPath()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "backup-compression-level = 42\nbackup-keep-last = -3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.BackupCompressionLevel != 6 {
		t.Fatalf("BackupCompressionLevel = %d, want clamped 6", s.BackupCompressionLevel)
	}
	if s.BackupKeepLast != 5 {
		t.Fatalf("BackupKeepLast = %d, want clamped 5", s.BackupKeepLast)
	}
}

func TestPathsLiveUnderAppDir(t *testing.T) {
	home := isolateXDG(t)

	settings, err := SettingsPath()
	if err != nil {
		t.Fatal(err)
	}
	downloads, err := DownloadDir()
	if err != nil {
		t.Fatal(err)
	}
	backups, err := BackupDir()
	if err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{settings, downloads, backups, LogFilePath()} {
		if !filepath.IsAbs(p) {
			t.Fatalf("%q is not absolute", p)
		}
		if rel, err := filepath.Rel(home, p); err != nil || strings.HasPrefix(rel, "..") {
			t.Fatalf("%q escapes the isolated home", p)
		}
		if filepath.Base(filepath.Dir(p)) != appDir && filepath.Base(filepath.Dir(filepath.Dir(p))) != appDir {
			t.Fatalf("%q not under the %s app dir", p, appDir)
		}
	}
}
