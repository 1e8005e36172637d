// Package github provides a client for querying the GitHub API, used to
// look up a repository's default branch when git cannot tell.
package github

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
)

// restClient is the subset of *api.RESTClient the Client uses.
type restClient interface {
	DoWithContext(ctx context.Context, method string, path string, body io.Reader, response interface{}) error
}

// Client wraps GitHub API access.
type Client struct {
	rest restClient
}

// NewClient creates a GitHub client. It attempts to use authentication from
// the gh CLI config, falling back to the provided token, falling back to
// unauthenticated access.
func NewClient(token string) *Client {
	c := &Client{}

	// Try default gh CLI authentication first.
	rest, err := api.DefaultRESTClient()
	if err == nil {
		slog.Debug("using gh CLI authentication")
		c.rest = rest
		return c
	}
	slog.Debug("gh CLI auth not available", "error", err)

	// Fall back to explicit token.
	if token != "" {
		rest, err = api.NewRESTClient(api.ClientOptions{
			AuthToken: token,
		})
		if err == nil {
			slog.Debug("using explicit token authentication")
			c.rest = rest
			return c
		}
		slog.Debug("token auth failed", "error", err)
	}

	// Unauthenticated -- will hit rate limits quickly.
	slog.Debug("using unauthenticated access (rate limits apply)")
	rest, err = api.NewRESTClient(api.ClientOptions{})
	if err != nil {
		slog.Warn("could not create REST client", "error", err)
		return c
	}
	c.rest = rest
	return c
}

// repoResponse holds the fields we care about from GET /repos/{owner}/{repo}.
type repoResponse struct {
	DefaultBranch string `json:"default_branch"`
}

// DefaultBranch returns the default branch of the GitHub repository that
// remoteURL points at. Non-GitHub remotes yield an empty name and no error.
func (c *Client) DefaultBranch(ctx context.Context, remoteURL string) (string, error) {
	owner, repo, ok := ParseGitHubRemote(remoteURL)
	if !ok {
		slog.Debug("remote is not on GitHub, skipping lookup", "url", remoteURL)
		return "", nil
	}
	if c.rest == nil {
		return "", fmt.Errorf("no GitHub API client available")
	}

	var resp repoResponse
	err := c.rest.DoWithContext(ctx, http.MethodGet, fmt.Sprintf("repos/%s/%s", owner, repo), nil, &resp)
	if err != nil {
		return "", fmt.Errorf("querying %s/%s: %w", owner, repo, err)
	}
	return resp.DefaultBranch, nil
}

// sshRemoteRe matches SSH-style GitHub remote URLs:
//
//	git@github.com:owner/repo.git
//	ssh://git@github.com/owner/repo.git
var sshRemoteRe = regexp.MustCompile(`^(?:ssh://)?git@github\.com[:/]([^/]+)/([^/]+?)(?:\.git)?$`)

// ParseGitHubRemote extracts owner and repo from a GitHub remote URL.
// Supports both SSH (git@github.com:owner/repo.git) and HTTPS
// (https://github.com/owner/repo.git) formats.
func ParseGitHubRemote(url string) (owner, repo string, ok bool) {
	// Try SSH format first.
	if m := sshRemoteRe.FindStringSubmatch(url); m != nil {
		return m[1], m[2], true
	}

	// Try HTTPS format.
	url = strings.TrimSuffix(url, ".git")
	for _, prefix := range []string{"https://github.com/", "http://github.com/"} {
		if strings.HasPrefix(url, prefix) {
			rest := strings.TrimPrefix(url, prefix)
			parts := strings.SplitN(rest, "/", 3)
			if len(parts) >= 2 && parts[0] != "" && parts[1] != "" {
				return parts[0], parts[1], true
			}
		}
	}

	return "", "", false
}
