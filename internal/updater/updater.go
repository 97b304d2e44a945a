// Package updater checks GitHub Releases for a newer Moodmate version.
// It only reports; installing is left to the user's package manager.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	// githubRepo is the repository path for API calls.
	githubRepo = "HendryAvila/moodmate"

	// ReleaseURL is the GitHub API endpoint for the latest release.
	ReleaseURL = "https://api.github.com/repos/" + githubRepo + "/releases/latest"

	checkTimeout = 10 * time.Second
)

// Release holds the fields of a GitHub release Moodmate reads.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Result is the outcome of a version check.
type Result struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// Checker queries the releases endpoint.
type Checker struct {
	endpoint string
	client   *http.Client
}

// Option configures a Checker.
type Option func(*Checker)

// WithEndpoint overrides the releases endpoint.
func WithEndpoint(url string) Option { return func(c *Checker) { c.endpoint = url } }

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Checker) { c.client = h } }

// NewChecker creates a Checker for the public release feed.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{endpoint: ReleaseURL, client: &http.Client{Timeout: checkTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check compares current with the latest release. A "dev" build never
// has an update available.
func (c *Checker) Check(ctx context.Context, current string) (Result, error) {
	res := Result{CurrentVersion: normalizeVersion(current)}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return res, fmt.Errorf("updater: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "moodmate/"+current)

	resp, err := c.client.Do(req)
	if err != nil {
		return res, fmt.Errorf("updater: checking latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return res, fmt.Errorf("updater: GitHub API returned %d", resp.StatusCode)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return res, fmt.Errorf("updater: parsing release: %w", err)
	}

	res.LatestVersion = normalizeVersion(rel.TagName)
	res.ReleaseURL = rel.HTMLURL
	res.UpdateAvailable = isNewer(res.CurrentVersion, res.LatestVersion)
	return res, nil
}

// normalizeVersion strips one leading "v".
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// isNewer reports whether latest is a higher semantic version than
// current. Unparseable versions are never newer.
func isNewer(current, latest string) bool {
	cv, lv := "v"+current, "v"+latest
	if !semver.IsValid(cv) || !semver.IsValid(lv) {
		return false
	}
	return semver.Compare(lv, cv) > 0
}
