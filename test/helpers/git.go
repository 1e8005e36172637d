// Package helpers provides test utilities for creating git repositories and scenarios.
package helpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestRepo represents a test git repository
type TestRepo struct {
	Path string
	t    *testing.T
}

// NewTestRepo creates a new test repository on branch main with one commit
func NewTestRepo(t *testing.T, name string) *TestRepo {
	t.Helper()

	repo := NewEmptyRepo(t, name)

	// Create initial commit
	repo.WriteFile("README.md", "# Test Repository\n")
	repo.run("git", "add", "README.md")
	repo.CommitWithDate("Initial commit", time.Now())

	return repo
}

// NewEmptyRepo creates an initialized repository without any commits
func NewEmptyRepo(t *testing.T, name string) *TestRepo {
	t.Helper()

	repoPath := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(repoPath, 0750); err != nil {
		t.Fatalf("Failed to create test repo directory: %v", err)
	}

	repo := &TestRepo{
		Path: repoPath,
		t:    t,
	}

	repo.run("git", "init", "--initial-branch=main")
	repo.run("git", "config", "user.name", "Test User")
	repo.run("git", "config", "user.email", "test@example.com")
	return repo
}

// NewClonedRepo creates a repository with a bare "origin" remote that
// already has main pushed, and returns the working clone.
func NewClonedRepo(t *testing.T, name string) *TestRepo {
	t.Helper()

	seed := NewTestRepo(t, name+"-seed")

	tmpDir := t.TempDir()
	barePath := filepath.Join(tmpDir, name+"-bare.git")
	// #nosec G204 - git command with controlled inputs in test code
	cmd := exec.Command("git", "clone", "--bare", seed.Path, barePath)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to create bare clone: %v\n%s", err, out)
	}

	clonePath := filepath.Join(tmpDir, name)
	// #nosec G204 - git command with controlled inputs in test code
	cmd = exec.Command("git", "clone", barePath, clonePath)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to clone bare repo: %v\n%s", err, out)
	}

	repo := &TestRepo{Path: clonePath, t: t}
	repo.run("git", "config", "user.name", "Test User")
	repo.run("git", "config", "user.email", "test@example.com")
	return repo
}

// WriteFile writes a file to the repository
func (r *TestRepo) WriteFile(filename, content string) {
	r.t.Helper()
	path := filepath.Join(r.Path, filename)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		r.t.Fatalf("Failed to write file %s: %v", filename, err)
	}
}

// AddFile stages a file for commit
func (r *TestRepo) AddFile(filename string) {
	r.t.Helper()
	r.run("git", "add", filename)
}

// Commit creates a commit with the current timestamp
func (r *TestRepo) Commit(message string) {
	r.t.Helper()
	r.CommitWithDate(message, time.Now())
}

// CommitWithDate creates a commit with a specific timestamp
func (r *TestRepo) CommitWithDate(message string, date time.Time) {
	r.t.Helper()
	dateStr := date.Format(time.RFC3339)
	// #nosec G204 - git command with controlled inputs in test code
	cmd := exec.Command("git", "commit", "-m", message, "--date", dateStr)
	cmd.Dir = r.Path
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("GIT_AUTHOR_DATE=%s", dateStr),
		fmt.Sprintf("GIT_COMMITTER_DATE=%s", dateStr),
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		r.t.Fatalf("Failed to commit: %v\n%s", err, output)
	}
}

// CommitFile writes, stages and commits a single file
func (r *TestRepo) CommitFile(filename, content string) {
	r.t.Helper()
	r.WriteFile(filename, content)
	r.AddFile(filename)
	r.Commit("Add " + filename)
}

// CreateBranch creates a new branch and checks it out
func (r *TestRepo) CreateBranch(name string) {
	r.t.Helper()
	r.run("git", "checkout", "-b", name)
}

// Checkout switches to a branch
func (r *TestRepo) Checkout(branch string) {
	r.t.Helper()
	r.run("git", "checkout", branch)
}

// Merge merges a branch into the current branch
func (r *TestRepo) Merge(branch string) {
	r.t.Helper()
	r.run("git", "merge", "--no-ff", branch, "-m", fmt.Sprintf("Merge branch '%s'", branch))
}

// MergedFeature creates branch name with one commit and merges it into main
func (r *TestRepo) MergedFeature(name string) {
	r.t.Helper()
	r.CreateBranch(name)
	r.CommitFile(strings.ReplaceAll(name, "/", "-")+".txt", name)
	r.Checkout("main")
	r.Merge(name)
}

// Tag creates a lightweight tag at HEAD
func (r *TestRepo) Tag(name string) {
	r.t.Helper()
	r.run("git", "tag", name)
}

// AddRemote adds a remote to the repository
func (r *TestRepo) AddRemote(name, url string) {
	r.t.Helper()
	r.run("git", "remote", "add", name, url)
}

// Push pushes to a remote
func (r *TestRepo) Push(remote, branch string) {
	r.t.Helper()
	r.run("git", "push", remote, branch)
}

// CurrentBranch returns the current branch name
func (r *TestRepo) CurrentBranch() string {
	r.t.Helper()
	return strings.TrimSpace(r.output("branch", "--show-current"))
}

// Branches returns a list of all local branch names
func (r *TestRepo) Branches() []string {
	r.t.Helper()
	return nonEmptyLines(r.output("branch", "--format=%(refname:short)"))
}

// Tags returns a list of all tag names
func (r *TestRepo) Tags() []string {
	r.t.Helper()
	return nonEmptyLines(r.output("tag"))
}

// RemoteBranches returns branch names that exist on the given remote
func (r *TestRepo) RemoteBranches(remote string) []string {
	r.t.Helper()
	var names []string
	for _, line := range nonEmptyLines(r.output("ls-remote", "--heads", remote)) {
		fields := strings.Fields(line)
		names = append(names, strings.TrimPrefix(fields[len(fields)-1], "refs/heads/"))
	}
	return names
}

// run executes a git command in the repository
func (r *TestRepo) run(args ...string) {
	r.t.Helper()
	// #nosec G204 - git command with controlled inputs in test code
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = r.Path
	if output, err := cmd.CombinedOutput(); err != nil {
		r.t.Fatalf("Git command failed: %v\n%s", args, output)
	}
}

func (r *TestRepo) output(args ...string) string {
	r.t.Helper()
	// #nosec G204 - git command with controlled inputs in test code
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Path
	output, err := cmd.Output()
	if err != nil {
		r.t.Fatalf("Git command failed: git %v: %v", args, err)
	}
	return string(output)
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
