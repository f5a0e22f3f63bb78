package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// TempSuffix marks in-flight download files. A .part file never collides
	// with a finished asset, and leftovers are swept on the next launch.
	TempSuffix = ".part"

	// progressInterval bounds how often download progress is published.
	// Rate is computed over the interval, which smooths per-chunk noise.
	progressInterval = 500 * time.Millisecond

	downloadChunkSize = 64 * 1024
)

// Download streams the release asset at url to destPath. Data goes to a
// .part temporary file which is synced and atomically renamed on success,
// so destPath either holds a complete asset or does not exist. sizeHint is
// the asset size from release metadata, used for progress when the server
// omits Content-Length. On transport errors the .part file is deliberately
// left behind; SweepPartFiles removes orphans later.
func Download(ctx context.Context, client *http.Client, url, destPath string, sizeHint int64, tracker *Tracker) (int64, error) {
	tracker.publish(Progress{Phase: PhaseDownloading})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, &DownloadError{URL: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, &DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &DownloadError{URL: url, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	totalBytes := resp.ContentLength
	if totalBytes <= 0 {
		totalBytes = sizeHint
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return 0, fmt.Errorf("creating download directory: %w", err)
	}

	tempPath := destPath + TempSuffix
	f, err := os.Create(tempPath)
	if err != nil {
		return 0, fmt.Errorf("creating temporary download file: %w", err)
	}

	downloaded, err := streamBody(resp.Body, f, totalBytes, tracker)
	if err != nil {
		f.Close()
		return 0, &DownloadError{URL: url, Err: err}
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return 0, fmt.Errorf("syncing download file: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("closing download file: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		return 0, fmt.Errorf("finalizing download: %w", err)
	}

	log.Info().
		Int64("bytes", downloaded).
		Str("dest", destPath).
		Msg("Download complete")

	return downloaded, nil
}

// streamBody copies body to f in chunks, publishing rate-smoothed progress
// at a fixed wall-clock interval.
func streamBody(body io.Reader, f *os.File, totalBytes int64, tracker *Tracker) (int64, error) {
	buf := make([]byte, downloadChunkSize)

	var downloaded int64
	var lastDownloaded int64
	lastPublish := time.Now()

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				return downloaded, fmt.Errorf("writing download file: %w", err)
			}
			downloaded += int64(n)
		}

		if elapsed := time.Since(lastPublish); elapsed >= progressInterval {
			rate := int64(float64(downloaded-lastDownloaded) / elapsed.Seconds())
			tracker.publish(Progress{
				Phase:           PhaseDownloading,
				BytesDownloaded: downloaded,
				TotalBytes:      totalBytes,
				BytesPerSec:     rate,
			})
			lastDownloaded = downloaded
			lastPublish = time.Now()
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return downloaded, fmt.Errorf("reading download stream: %w", readErr)
		}
	}

	tracker.publish(Progress{
		Phase:           PhaseDownloading,
		BytesDownloaded: downloaded,
		TotalBytes:      totalBytes,
	})

	return downloaded, nil
}

// SweepPartFiles removes orphaned .part files left by interrupted
// downloads. Called on launch, before any new download starts.
func SweepPartFiles(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), TempSuffix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove partial download")
			continue
		}
		log.Info().Str("path", path).Msg("Removed partial download")
	}
}
