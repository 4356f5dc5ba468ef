// Package templates fetches project template archives from GitHub.
package templates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/go-github/v66/github"
)

// GitHubTemplate downloads a repository tarball to seed new projects.
type GitHubTemplate struct {
	client     *github.Client
	httpClient *http.Client
	owner      string
	repo       string
	ref        string
}

// NewGitHubTemplate creates a template source for owner/repo at ref. An
// empty ref uses the repository's default branch; an empty token limits
// access to public repositories.
func NewGitHubTemplate(owner, repo, ref, token string) *GitHubTemplate {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubTemplate{
		client:     client,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		owner:      owner,
		repo:       repo,
		ref:        ref,
	}
}

// NewGitHubTemplateWithClient creates a template source with a prebuilt
// client, used by tests.
func NewGitHubTemplateWithClient(client *github.Client, owner, repo, ref string) *GitHubTemplate {
	return &GitHubTemplate{
		client:     client,
		httpClient: client.Client(),
		owner:      owner,
		repo:       repo,
		ref:        ref,
	}
}

// Download resolves the tarball link for the configured ref and saves the
// archive to a temporary .tar.gz file. The returned cleanup removes it.
func (t *GitHubTemplate) Download(ctx context.Context) (string, func(), error) {
	opts := &github.RepositoryContentGetOptions{Ref: t.ref}
	link, _, err := t.client.Repositories.GetArchiveLink(ctx, t.owner, t.repo, github.Tarball, opts, 3)
	if err != nil {
		return "", nil, fmt.Errorf("resolve archive link for %s/%s: %w", t.owner, t.repo, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.String(), nil)
	if err != nil {
		return "", nil, fmt.Errorf("create download request: %w", err)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("download template tarball: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("download template tarball: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "template-*.tar.gz")
	if err != nil {
		return "", nil, fmt.Errorf("create temp archive: %w", err)
	}
	cleanup := func() { os.Remove(tmp.Name()) }
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("save template tarball: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("save template tarball: %w", err)
	}
	return tmp.Name(), cleanup, nil
}
