// Package update asks the GitHub releases API whether a newer mancheck
// release exists.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Repo is the GitHub repository releases are published under.
const Repo = "garagon/mancheck"

// Result holds the outcome of a version check.
type Result struct {
	Latest  string
	Current string
	Install string
}

// NeedsUpdate reports whether Latest differs from Current. Development
// builds never need an update.
func (r *Result) NeedsUpdate() bool {
	if r.Current == "dev" {
		return false
	}
	return strings.TrimPrefix(r.Latest, "v") != strings.TrimPrefix(r.Current, "v")
}

// Checker queries a releases endpoint. The zero value uses the public
// GitHub API with a one second timeout.
type Checker struct {
	BaseURL string
	Repo    string
	Client  *http.Client
}

type githubRelease struct {
	TagName string `json:"tag_name"`
}

// Latest returns the newest published release compared against current.
// It returns an error for network failures, non-200 responses and
// releases without a tag.
func (c Checker) Latest(ctx context.Context, current string) (*Result, error) {
	base := c.BaseURL
	if base == "" {
		base = "https://api.github.com"
	}
	repo := c.Repo
	if repo == "" {
		repo = Repo
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/repos/%s/releases/latest", base, repo), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("checking latest release: %s", resp.Status)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	if release.TagName == "" {
		return nil, fmt.Errorf("latest release of %s has no tag", repo)
	}

	return &Result{
		Latest:  release.TagName,
		Current: current,
		Install: fmt.Sprintf("go install github.com/%s/cmd/mancheck@%s", repo, release.TagName),
	}, nil
}
