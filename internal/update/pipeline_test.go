package update

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func assetServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// End-to-end happy path: download, archive, extract, restore. The new
// release lands while the custom mod and saves survive.
func TestStartFullPipeline(t *testing.T) {
	t.Parallel()

	gameDir := t.TempDir()
	writeFile(t, filepath.Join(gameDir, "cataclysm-tiles.exe"), "old-exe")
	writeFile(t, filepath.Join(gameDir, "save", "world", "master.gsav"), "world-data")
	writeFile(t, filepath.Join(gameDir, "data", "mods", "custom", "modinfo.json"),
		`{"type": "MOD_INFO", "id": "my_custom"}`)

	asset := buildZip(t, map[string]string{
		"cataclysm-tiles.exe":                "new-exe",
		"data/mods/official/modinfo.json":    `{"type": "MOD_INFO", "id": "official"}`,
		"data/json/items.json":               `{"id":"rock"}`,
		"save_placeholder/do_not_touch.json": "{}",
	})
	srv := assetServer(t, asset)

	run, err := Start(context.Background(), Options{
		AssetURL:    srv.URL + "/cdda-latest.zip",
		GameDir:     gameDir,
		DownloadDir: t.TempDir(),
		Client:      srv.Client(),
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	snapshots := drainTracker(run.tracker)
	if err := <-run.Done(); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if got := readFile(t, filepath.Join(gameDir, "cataclysm-tiles.exe")); got != "new-exe" {
		t.Fatalf("executable = %q, want new-exe", got)
	}
	if got := readFile(t, filepath.Join(gameDir, "save", "world", "master.gsav")); got != "world-data" {
		t.Fatal("saves lost")
	}
	if !pathExists(filepath.Join(gameDir, "data", "mods", "custom", "modinfo.json")) {
		t.Fatal("custom mod lost")
	}
	if !pathExists(filepath.Join(gameDir, "data", "mods", "official", "modinfo.json")) {
		t.Fatal("new official mod missing")
	}
	// The previous version stays archived for manual recovery by default.
	if !pathExists(filepath.Join(gameDir, ArchiveDirName)) {
		t.Fatal("archive generation missing after successful update")
	}

	last := snapshots[len(snapshots)-1]
	if last.Phase != PhaseComplete {
		t.Fatalf("final phase = %v, want Complete", last.Phase)
	}
}

// A fresh install into an empty directory: nothing to migrate, nothing to
// restore, the release lands as-is.
func TestStartFreshInstall(t *testing.T) {
	t.Parallel()

	gameDir := t.TempDir()
	srv := assetServer(t, buildZip(t, map[string]string{
		"cataclysm-tiles.exe":  "new-exe",
		"data/json/items.json": "{}",
	}))

	run, err := Start(context.Background(), Options{
		AssetURL:    srv.URL + "/cdda-latest.zip",
		GameDir:     gameDir,
		DownloadDir: t.TempDir(),
		Client:      srv.Client(),
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	drainTracker(run.tracker)
	if err := <-run.Done(); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if got := readFile(t, filepath.Join(gameDir, "cataclysm-tiles.exe")); got != "new-exe" {
		t.Fatal("executable missing after fresh install")
	}
	if pathExists(filepath.Join(gameDir, "data", "mods", "custom")) {
		t.Fatal("phantom migrated content in fresh install")
	}
}

func TestStartRemovePreviousInstallation(t *testing.T) {
	t.Parallel()

	gameDir := t.TempDir()
	writeFile(t, filepath.Join(gameDir, "cataclysm-tiles.exe"), "old-exe")

	srv := assetServer(t, buildZip(t, map[string]string{"cataclysm-tiles.exe": "new-exe"}))

	run, err := Start(context.Background(), Options{
		AssetURL:                   srv.URL + "/cdda-latest.zip",
		GameDir:                    gameDir,
		DownloadDir:                t.TempDir(),
		Client:                     srv.Client(),
		RemovePreviousInstallation: true,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	drainTracker(run.tracker)
	if err := <-run.Done(); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if pathExists(filepath.Join(gameDir, ArchiveDirName)) {
		t.Fatal("archive kept despite RemovePreviousInstallation")
	}
}

// A corrupt asset fails extraction after archiving; rollback puts the old
// installation back and the error says so.
func TestStartRollbackOnCorruptAsset(t *testing.T) {
	t.Parallel()

	gameDir := t.TempDir()
	writeFile(t, filepath.Join(gameDir, "cataclysm-tiles.exe"), "old-exe")
	writeFile(t, filepath.Join(gameDir, "data", "json", "items.json"), "old-data")

	srv := assetServer(t, []byte("definitely not a zip archive"))

	run, err := Start(context.Background(), Options{
		AssetURL:    srv.URL + "/cdda-latest.zip",
		GameDir:     gameDir,
		DownloadDir: t.TempDir(),
		Client:      srv.Client(),
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	snapshots := drainTracker(run.tracker)
	err = <-run.Done()
	if err == nil {
		t.Fatal("pipeline succeeded on corrupt asset")
	}

	var fmtErr *ArchiveFormatError
	if !errors.As(err, &fmtErr) {
		t.Fatalf("err = %v, want wrapped ArchiveFormatError", err)
	}

	if got := readFile(t, filepath.Join(gameDir, "cataclysm-tiles.exe")); got != "old-exe" {
		t.Fatal("old installation not restored")
	}
	if got := readFile(t, filepath.Join(gameDir, "data", "json", "items.json")); got != "old-data" {
		t.Fatal("old data not restored")
	}
	if pathExists(filepath.Join(gameDir, ArchiveDirName)) {
		t.Fatal("archive generation left behind after rollback")
	}

	last := snapshots[len(snapshots)-1]
	if last.Phase != PhaseFailed {
		t.Fatalf("final phase = %v, want Failed", last.Phase)
	}
}

func TestStartValidatesOptions(t *testing.T) {
	t.Parallel()

	if _, err := Start(context.Background(), Options{GameDir: t.TempDir()}); err == nil {
		t.Fatal("Start accepted empty asset URL")
	}
	if _, err := Start(context.Background(), Options{
		AssetURL: "http://example.invalid/x.zip",
		GameDir:  filepath.Join(t.TempDir(), "missing"),
	}); err == nil {
		t.Fatal("Start accepted missing game directory")
	}
}

func TestStartFailsOnDownloadError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	gameDir := t.TempDir()
	writeFile(t, filepath.Join(gameDir, "cataclysm-tiles.exe"), "old-exe")

	run, err := Start(context.Background(), Options{
		AssetURL:    srv.URL + "/x.zip",
		GameDir:     gameDir,
		DownloadDir: t.TempDir(),
		Client:      srv.Client(),
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	drainTracker(run.tracker)
	err = <-run.Done()

	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("err = %v, want DownloadError", err)
	}
	// Download fails before archiving; the installation is untouched.
	if got := readFile(t, filepath.Join(gameDir, "cataclysm-tiles.exe")); got != "old-exe" {
		t.Fatal("installation modified by failed download")
	}
}
