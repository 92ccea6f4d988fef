package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oszuidwest/swim-stopwatch/internal/types"
	"github.com/oszuidwest/swim-stopwatch/internal/util"
	"golang.org/x/mod/semver"
)

const (
	githubRepo           = "oszuidwest/swim-stopwatch"
	versionCheckInterval = 24 * time.Hour
	versionCheckDelay    = 30 * time.Second // Delay before first check to avoid blocking startup
	versionCheckTimeout  = 30 * time.Second // HTTP request timeout
	versionMaxRetries    = 3                // Max retries per check cycle
	versionRetryDelay    = 1 * time.Minute  // First delay between retries, doubled per attempt
	versionMaxRetryDelay = 10 * time.Minute
)

// VersionChecker periodically checks GitHub for new releases.
// The zero value reports the running version without checking.
type VersionChecker struct {
	mu     sync.RWMutex
	latest string
	etag   string // For conditional requests (304 Not Modified)

	client     *http.Client
	releaseURL string
}

// NewVersionChecker returns a checker for the project's GitHub releases.
func NewVersionChecker() *VersionChecker {
	return &VersionChecker{
		client:     &http.Client{Timeout: versionCheckTimeout},
		releaseURL: "https://api.github.com/repos/" + githubRepo + "/releases/latest",
	}
}

// Run checks for updates until ctx is cancelled.
func (vc *VersionChecker) Run(ctx context.Context) {
	if !sleepCtx(ctx, versionCheckDelay) {
		return
	}
	vc.checkWithRetry(ctx)

	ticker := time.NewTicker(versionCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			vc.checkWithRetry(ctx)
		}
	}
}

// checkWithRetry attempts the version check with backoff between failures.
func (vc *VersionChecker) checkWithRetry(ctx context.Context) {
	backoff := util.NewBackoff(versionRetryDelay, versionMaxRetryDelay)
	for attempt := range versionMaxRetries {
		if vc.check(ctx) {
			return
		}
		if attempt < versionMaxRetries-1 && !sleepCtx(ctx, backoff.Next()) {
			return
		}
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// githubRelease represents the GitHub API response for a release.
type githubRelease struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// check fetches the latest release from GitHub. Returns true on success.
func (vc *VersionChecker) check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, vc.releaseURL, nil)
	if err != nil {
		return false
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "swim-stopwatch/"+Version)

	vc.mu.RLock()
	etag := vc.etag
	vc.mu.RUnlock()
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := vc.client.Do(req)
	if err != nil {
		return false
	}
	defer util.SafeCloseFunc(resp.Body, "release response body")()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified, http.StatusNotFound:
		return true
	case http.StatusForbidden, http.StatusTooManyRequests:
		return false
	default:
		// Retry server errors only.
		return resp.StatusCode < 500
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return false
	}

	if release.Draft || release.Prerelease {
		return true
	}

	if release.TagName == "" {
		return false
	}

	vc.mu.Lock()
	vc.latest = normalizeVersion(release.TagName)
	if newEtag := resp.Header.Get("ETag"); newEtag != "" {
		vc.etag = newEtag
	}
	vc.mu.Unlock()

	return true
}

// Info returns the current version info for the live feed.
func (vc *VersionChecker) Info() types.VersionInfo {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	current := normalizeVersion(Version)
	info := types.VersionInfo{
		Current:   current,
		Latest:    vc.latest,
		Commit:    Commit,
		BuildTime: util.FormatHumanTime(BuildTime),
	}

	if vc.latest != "" && current != "dev" && current != "unknown" {
		info.UpdateAvail = isNewerVersion(vc.latest, current)
	}

	return info
}

// normalizeVersion removes 'v' prefix and trims whitespace.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// canonicalVersion ensures a version string is in semver canonical form (v prefix).
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// isNewerVersion returns true if latest is newer than current using semver comparison.
func isNewerVersion(latest, current string) bool {
	return semver.Compare(canonicalVersion(latest), canonicalVersion(current)) > 0
}
