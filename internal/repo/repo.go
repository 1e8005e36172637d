// Package repo answers questions about the repository being groomed:
// whether it is a repository at all, whether it has commits or a given
// remote, which branches exist and which branch the remote treats as its
// default.
package repo

import (
	"context"
	"log/slog"
	"strings"

	"github.com/agrahamlincoln/gitgroom/pkg/git"
)

// Git defines the git operations the inspector needs.
type Git interface {
	IsInsideWorkTree(ctx context.Context) (bool, error)
	ResolveHEAD(ctx context.Context) (string, error)
	RemoteURL(ctx context.Context, remote string) (string, error)
	Branches(ctx context.Context) ([]string, error)
	ShowRemote(ctx context.Context, remote string) (string, error)
	RemoteHEAD(ctx context.Context, remote string) (string, error)
}

// DefaultBranchLookup resolves a remote's default branch from somewhere
// other than git itself, such as a hosting provider API.
type DefaultBranchLookup interface {
	DefaultBranch(ctx context.Context, remoteURL string) (string, error)
}

// Inspector runs probes and enumerations against one repository.
type Inspector struct {
	git    Git
	remote string
	lookup DefaultBranchLookup
}

// NewInspector returns an Inspector for the given remote. lookup may be nil.
func NewInspector(g Git, remote string, lookup DefaultBranchLookup) *Inspector {
	return &Inspector{git: g, remote: remote, lookup: lookup}
}

// IsRepository reports whether the working directory is inside a work tree.
func (i *Inspector) IsRepository(ctx context.Context) bool {
	ok, err := i.isRepository(ctx)
	return settle("is-repository", ok, err)
}

// HasCommits reports whether HEAD resolves to a commit.
func (i *Inspector) HasCommits(ctx context.Context) bool {
	ok, err := i.hasCommits(ctx)
	return settle("has-commits", ok, err)
}

// HasRemote reports whether a remote with the given name has a URL.
func (i *Inspector) HasRemote(ctx context.Context, name string) bool {
	ok, err := i.hasRemote(ctx, name)
	return settle("has-remote", ok, err)
}

func (i *Inspector) isRepository(ctx context.Context) (bool, error) {
	return probe(i.git.IsInsideWorkTree(ctx))
}

func (i *Inspector) hasCommits(ctx context.Context) (bool, error) {
	_, err := i.git.ResolveHEAD(ctx)
	return probe(err == nil, err)
}

func (i *Inspector) hasRemote(ctx context.Context, name string) (bool, error) {
	url, err := i.git.RemoteURL(ctx, name)
	return probe(url != "", err)
}

// probe turns a git answer into a boolean. A non-zero git exit is an
// expected "no"; anything else is an error.
func probe(ok bool, err error) (bool, error) {
	if err == nil {
		return ok, nil
	}
	if git.IsExitError(err) {
		return false, nil
	}
	return false, err
}

// settle collapses a probe result to a boolean, logging errors.
func settle(name string, ok bool, err error) bool {
	if err != nil {
		slog.Debug("probe failed", "probe", name, "error", err)
		return false
	}
	return ok
}

// ListBranches returns local branch names in the order git lists them,
// deduplicated. The last token of each line is used so the current branch
// marker is tolerated. Returns nil if git fails.
func (i *Inspector) ListBranches(ctx context.Context) []string {
	lines, err := i.git.Branches(ctx)
	if err != nil {
		slog.Debug("listing branches failed", "error", err)
		return nil
	}
	return ParseBranchList(lines)
}

// ParseBranchList extracts branch names from `git branch` output lines.
func ParseBranchList(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	var names []string
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := fields[len(fields)-1]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// DefaultBranch returns the remote's default branch. It asks the remote
// first, then the local origin/HEAD symref, then the optional lookup.
// Values reporting "unknown" are never trusted.
func (i *Inspector) DefaultBranch(ctx context.Context) (string, bool) {
	if !i.HasRemote(ctx, i.remote) {
		slog.Debug("no remote configured, default branch unknown", "remote", i.remote)
		return "", false
	}

	tiers := []struct {
		name string
		fn   func(context.Context) (string, error)
	}{
		{"remote show", i.fromShowRemote},
		{"symbolic-ref", i.fromRemoteHEAD},
		{"lookup", i.fromLookup},
	}
	for _, tier := range tiers {
		branch, err := tier.fn(ctx)
		if err != nil {
			slog.Debug("default branch tier failed", "tier", tier.name, "error", err)
			continue
		}
		if usable(branch) {
			slog.Debug("resolved default branch", "tier", tier.name, "branch", branch)
			return branch, true
		}
	}
	return "", false
}

func (i *Inspector) fromShowRemote(ctx context.Context) (string, error) {
	out, err := i.git.ShowRemote(ctx, i.remote)
	if err != nil {
		return "", err
	}
	return ParseHEADBranch(out), nil
}

func (i *Inspector) fromRemoteHEAD(ctx context.Context) (string, error) {
	return i.git.RemoteHEAD(ctx, i.remote)
}

func (i *Inspector) fromLookup(ctx context.Context) (string, error) {
	if i.lookup == nil {
		return "", nil
	}
	url, err := i.git.RemoteURL(ctx, i.remote)
	if err != nil {
		return "", err
	}
	return i.lookup.DefaultBranch(ctx, url)
}

// ParseHEADBranch extracts X from the "HEAD branch: X" line of
// `git remote show` output. Returns "" when absent.
func ParseHEADBranch(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "HEAD branch:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

func usable(branch string) bool {
	return branch != "" && !strings.Contains(strings.ToLower(branch), "unknown")
}
