// Package release looks up downloadable game builds on GitHub releases.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// DefaultRepo is the upstream game repository queried for builds.
const DefaultRepo = "CleverRaven/Cataclysm-DDA"

const releasesPerPage = 25

// Channel selects which kind of builds a lookup considers.
type Channel string

const (
	ChannelStable       Channel = "stable"
	ChannelExperimental Channel = "experimental"
)

// ParseChannel validates a channel name from config or flags.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case ChannelStable:
		return ChannelStable, nil
	case ChannelExperimental:
		return ChannelExperimental, nil
	}
	return "", fmt.Errorf("unknown release channel %q (want stable or experimental)", s)
}

// Release is the subset of GitHub's release API response we need.
type Release struct {
	TagName     string  `json:"tag_name"`
	Name        string  `json:"name"`
	Prerelease  bool    `json:"prerelease"`
	PublishedAt string  `json:"published_at"`
	Assets      []Asset `json:"assets"`
}

// Asset represents a downloadable file attached to a GitHub release.
type Asset struct {
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Build is a resolved, downloadable game build.
type Build struct {
	Version   string
	Published time.Time
	AssetName string
	AssetSize int64
	URL       string
}

// Client queries the GitHub releases API.
type Client struct {
	httpClient *http.Client
	apiBase    string
}

// NewClient returns a client using httpClient, or http.DefaultClient when
// nil.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, apiBase: "https://api.github.com"}
}

// FetchLatest returns the newest build on the given channel of repo.
// Stable means non-prerelease; experimental means any release. Releases
// without a usable zip asset are skipped.
func (c *Client) FetchLatest(ctx context.Context, repo string, channel Channel) (*Build, error) {
	releases, err := c.FetchReleases(ctx, repo)
	if err != nil {
		return nil, err
	}

	for _, rel := range releases {
		if channel == ChannelStable && rel.Prerelease {
			continue
		}
		build, ok := resolveBuild(rel)
		if !ok {
			continue
		}
		return build, nil
	}

	return nil, fmt.Errorf("repo %s: no %s release with a zip asset found", repo, channel)
}

// FetchReleases returns the most recent releases of repo, newest first.
func (c *Client) FetchReleases(ctx context.Context, repo string) ([]Release, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/releases?per_page=%d", c.apiBase, repo, releasesPerPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching releases: HTTP %d", resp.StatusCode)
	}

	var releases []Release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("decoding releases: %w", err)
	}
	return releases, nil
}

// resolveBuild turns a release into a Build if it carries a zip asset.
func resolveBuild(rel Release) (*Build, bool) {
	asset := pickZipAsset(rel.Assets)
	if asset == nil {
		return nil, false
	}

	published, _ := time.Parse(time.RFC3339, rel.PublishedAt)

	version := strings.TrimSpace(rel.TagName)
	if version == "" {
		version = strings.TrimSpace(rel.Name)
	}

	return &Build{
		Version:   version,
		Published: published,
		AssetName: asset.Name,
		AssetSize: asset.Size,
		URL:       asset.BrowserDownloadURL,
	}, true
}

// pickZipAsset selects the game archive from a release's assets. Upstream
// ships one zip per platform; tiles builds are preferred over curses-only
// ones when both are present.
func pickZipAsset(assets []Asset) *Asset {
	var fallback *Asset
	for i, asset := range assets {
		name := strings.ToLower(strings.TrimSpace(asset.Name))
		if !strings.EqualFold(filepath.Ext(name), ".zip") {
			continue
		}
		if strings.TrimSpace(asset.BrowserDownloadURL) == "" {
			continue
		}
		if strings.Contains(name, "tiles") {
			return &assets[i]
		}
		if fallback == nil {
			fallback = &assets[i]
		}
	}
	return fallback
}
