// Package branches turns git's merged-ref listings into the sets of
// branches and tags that are safe to delete.
package branches

import (
	"strings"
)

// Kind identifies what a candidate set contains.
type Kind int

const (
	// Local is a set of local branches.
	Local Kind = iota
	// Tags is a set of tags.
	Tags
	// Remote is a set of remote-tracking branches, qualified with the remote name.
	Remote
)

// String returns the plural noun used in user-facing messages.
func (k Kind) String() string {
	switch k {
	case Local:
		return "branches"
	case Tags:
		return "tags"
	case Remote:
		return "remote branches"
	default:
		return "refs"
	}
}

// Exclusions lists names that must never be offered for deletion.
type Exclusions struct {
	Target    string
	Protected []string
}

func (e Exclusions) excludes(name string) bool {
	if name == e.Target {
		return true
	}
	for _, p := range e.Protected {
		if name == p {
			return true
		}
	}
	return false
}

// LocalCandidates filters `git branch --merged` output lines. The current
// branch (marked "*"), branches checked out in other worktrees (marked "+"),
// the target and protected names are excluded by exact name.
func LocalCandidates(lines []string, ex Exclusions) []string {
	var result []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "*") || strings.HasPrefix(line, "+") {
			continue
		}
		if ex.excludes(line) {
			continue
		}
		result = append(result, line)
	}
	return result
}

// TagCandidates filters `git tag --merged` output lines. Every tag is a
// candidate.
func TagCandidates(lines []string) []string {
	var result []string
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return result
}

// RemoteCandidates filters `git branch -r --merged` output lines. The
// remote's HEAD pointer, the remote copy of the target, protected names and
// branches of other remotes are excluded. Names stay qualified with the
// remote, e.g. "origin/old-1".
func RemoteCandidates(lines []string, remote string, ex Exclusions) []string {
	prefix := remote + "/"
	var result []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, " -> ") {
			continue
		}
		name, ok := strings.CutPrefix(line, prefix)
		if !ok || name == "" || name == "HEAD" {
			continue
		}
		if ex.excludes(name) {
			continue
		}
		result = append(result, line)
	}
	return result
}

// RemoteBranchName strips the remote qualifier from a remote-tracking name.
func RemoteBranchName(remote, qualified string) string {
	return strings.TrimPrefix(qualified, remote+"/")
}
