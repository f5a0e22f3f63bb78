package release

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const releasesJSON = `[
  {
    "tag_name": "cdda-experimental-2026-08-20",
    "prerelease": true,
    "published_at": "2026-08-20T06:00:00Z",
    "assets": [
      {"name": "cdda-windows-tiles-x64-2026-08-20.zip", "size": 300, "browser_download_url": "https://dl.example/exp.zip"}
    ]
  },
  {
    "tag_name": "0.H-RELEASE",
    "prerelease": false,
    "published_at": "2026-07-01T12:00:00Z",
    "assets": [
      {"name": "cdda-windows-tiles-x64-0.H.zip", "size": 200, "browser_download_url": "https://dl.example/stable.zip"},
      {"name": "source.tar.gz", "size": 100, "browser_download_url": "https://dl.example/src.tar.gz"}
    ]
  }
]`

func releaseServer(t *testing.T, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client())
	c.apiBase = srv.URL
	return c
}

func TestFetchLatestStableSkipsPrerelease(t *testing.T) {
	t.Parallel()

	c := releaseServer(t, releasesJSON)
	build, err := c.FetchLatest(context.Background(), "CleverRaven/Cataclysm-DDA", ChannelStable)
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if build.Version != "0.H-RELEASE" {
		t.Fatalf("Version = %q, want 0.H-RELEASE", build.Version)
	}
	if build.URL != "https://dl.example/stable.zip" {
		t.Fatalf("URL = %q", build.URL)
	}
	if build.AssetSize != 200 {
		t.Fatalf("AssetSize = %d, want 200", build.AssetSize)
	}
}

func TestFetchLatestExperimentalTakesNewest(t *testing.T) {
	t.Parallel()

	c := releaseServer(t, releasesJSON)
	build, err := c.FetchLatest(context.Background(), "CleverRaven/Cataclysm-DDA", ChannelExperimental)
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if build.Version != "cdda-experimental-2026-08-20" {
		t.Fatalf("Version = %q, want the experimental build", build.Version)
	}
}

func TestFetchLatestNoZipAsset(t *testing.T) {
	t.Parallel()

	c := releaseServer(t, `[{"tag_name": "v1", "prerelease": false, "assets": [{"name": "x.tar.gz", "browser_download_url": "u"}]}]`)
	if _, err := c.FetchLatest(context.Background(), "owner/repo", ChannelStable); err == nil {
		t.Fatal("FetchLatest succeeded without a zip asset")
	}
}

func TestFetchReleasesHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.Client())
	c.apiBase = srv.URL

	if _, err := c.FetchReleases(context.Background(), "owner/repo"); err == nil {
		t.Fatal("FetchReleases succeeded on HTTP 403")
	}
}

func TestPickZipAssetPrefersTiles(t *testing.T) {
	t.Parallel()

	assets := []Asset{
		{Name: "cdda-windows-curses-x64.zip", BrowserDownloadURL: "curses"},
		{Name: "cdda-windows-tiles-x64.zip", BrowserDownloadURL: "tiles"},
	}
	got := pickZipAsset(assets)
	if got == nil || got.BrowserDownloadURL != "tiles" {
		t.Fatalf("pickZipAsset = %+v, want tiles build", got)
	}

	if got := pickZipAsset(assets[:1]); got == nil || got.BrowserDownloadURL != "curses" {
		t.Fatalf("pickZipAsset fallback = %+v, want curses build", got)
	}

	if got := pickZipAsset(nil); got != nil {
		t.Fatalf("pickZipAsset(nil) = %+v, want nil", got)
	}
}

func TestParseChannel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Channel
		wantErr bool
	}{
		{"stable", ChannelStable, false},
		{"  Experimental ", ChannelExperimental, false},
		{"nightly", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseChannel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseChannel(%q) succeeded, want error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseChannel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
