// Package git provides functions for interacting with a git repository
// by shelling out to the git CLI.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// CommandError is returned when a git invocation fails. ExitCode is -1 when
// git could not be started or was killed before exiting.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Diagnostic returns git's own explanation of the failure, falling back to
// the underlying error when git printed nothing.
func (e *CommandError) Diagnostic() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return e.Err.Error()
}

// IsExitError reports whether err is a git command that ran and exited
// non-zero, as opposed to one that could not run at all.
func IsExitError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.ExitCode > 0
}

// Diagnostic extracts git's stderr from err when available.
func Diagnostic(err error) string {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Diagnostic()
	}
	return err.Error()
}

// Runner executes git commands against the repository containing Dir.
// An empty Dir means the process working directory.
type Runner struct {
	Dir string
}

// NewRunner returns a Runner for dir.
func NewRunner(dir string) *Runner {
	return &Runner{Dir: dir}
}

// run executes a git command and returns its trimmed stdout.
func (r *Runner) run(ctx context.Context, args ...string) (string, error) {
	full := args
	if r.Dir != "" {
		full = append([]string{"-C", r.Dir}, args...)
	}
	slog.Debug("running git", "args", strings.Join(args, " "), "dir", r.Dir)

	// #nosec G204 - arguments are git subcommands with sanitized branch names
	cmd := exec.CommandContext(ctx, "git", full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return "", &CommandError{
			Args:     args,
			ExitCode: code,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// IsInsideWorkTree returns true if the runner's directory is inside a
// repository's work tree.
func (r *Runner) IsInsideWorkTree(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "true", nil
}

// ResolveHEAD returns the commit HEAD points to. It fails in a repository
// without commits.
func (r *Runner) ResolveHEAD(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
}

// RemoteURL returns the fetch URL of the given remote (usually "origin").
func (r *Runner) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := r.run(ctx, "remote", "get-url", remote)
	return strings.TrimSpace(out), err
}

// Branches returns the raw lines of `git branch`, including the current
// branch marker.
func (r *Runner) Branches(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "branch")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// ShowRemote returns the output of `git remote show <remote>`. This contacts
// the remote.
func (r *Runner) ShowRemote(ctx context.Context, remote string) (string, error) {
	return r.run(ctx, "remote", "show", remote)
}

// RemoteHEAD returns the branch the local refs/remotes/<remote>/HEAD symref
// points to, with the remote prefix stripped.
func (r *Runner) RemoteHEAD(ctx context.Context, remote string) (string, error) {
	out, err := r.run(ctx, "symbolic-ref", "--short", "refs/remotes/"+remote+"/HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(strings.TrimSpace(out), remote+"/"), nil
}

// MergedBranches returns the raw lines of `git branch --merged <target>`.
func (r *Runner) MergedBranches(ctx context.Context, target string) ([]string, error) {
	out, err := r.run(ctx, "branch", "--merged", target)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// DeleteBranch deletes a fully merged local branch.
func (r *Runner) DeleteBranch(ctx context.Context, name string) error {
	_, err := r.run(ctx, "branch", "-d", name)
	return err
}

// MergedTags returns tags reachable from target.
func (r *Runner) MergedTags(ctx context.Context, target string) ([]string, error) {
	out, err := r.run(ctx, "tag", "--merged", target)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// DeleteTag deletes a local tag.
func (r *Runner) DeleteTag(ctx context.Context, name string) error {
	_, err := r.run(ctx, "tag", "-d", name)
	return err
}

// PruneRemote deletes remote-tracking refs whose branch no longer exists on
// the remote.
func (r *Runner) PruneRemote(ctx context.Context, remote string) error {
	_, err := r.run(ctx, "remote", "prune", remote)
	return err
}

// MergedRemoteBranches returns the raw lines of
// `git branch -r --merged <target>`.
func (r *Runner) MergedRemoteBranches(ctx context.Context, target string) ([]string, error) {
	out, err := r.run(ctx, "branch", "-r", "--merged", target)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// DeleteRemoteBranch deletes a branch on the given remote.
func (r *Runner) DeleteRemoteBranch(ctx context.Context, remote, branch string) error {
	_, err := r.run(ctx, "push", remote, "--delete", branch)
	return err
}

// splitLines splits output into lines, dropping blank ones. Leading
// whitespace is kept because branch listings use it for markers.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
