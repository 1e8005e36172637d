// Package groom deletes what a merge left behind: local branches, tags and
// remote branches whose history is already contained in a target branch.
//
// Each of the three passes lists merged refs, filters out what must be
// kept, asks for one confirmation covering the whole set, and deletes the
// set in parallel. A failed deletion never stops its siblings or the
// passes that follow.
package groom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agrahamlincoln/gitgroom/internal/branches"
	"github.com/agrahamlincoln/gitgroom/internal/parallel"
	"github.com/agrahamlincoln/gitgroom/internal/prompt"
	"github.com/agrahamlincoln/gitgroom/internal/ui"
	"github.com/agrahamlincoln/gitgroom/pkg/git"
)

// Git defines the git operations the engine needs.
type Git interface {
	MergedBranches(ctx context.Context, target string) ([]string, error)
	DeleteBranch(ctx context.Context, name string) error
	MergedTags(ctx context.Context, target string) ([]string, error)
	DeleteTag(ctx context.Context, name string) error
	PruneRemote(ctx context.Context, remote string) error
	MergedRemoteBranches(ctx context.Context, target string) ([]string, error)
	DeleteRemoteBranch(ctx context.Context, remote, branch string) error
}

// RemoteChecker reports whether a remote is configured.
type RemoteChecker interface {
	HasRemote(ctx context.Context, name string) bool
}

// Options controls engine behavior.
type Options struct {
	Remote    string   // remote inspected by the remote pass
	Protected []string // names never offered for deletion
	DryRun    bool     // list candidates without prompting or deleting
	Workers   int      // deletion concurrency; 0 means one goroutine per candidate
}

// Engine runs the groom passes for one repository.
type Engine struct {
	git     Git
	remotes RemoteChecker
	prompt  prompt.Prompter
	out     *ui.Printer
	opts    Options
}

// New creates an Engine.
func New(g Git, remotes RemoteChecker, p prompt.Prompter, out *ui.Printer, opts Options) *Engine {
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	return &Engine{git: g, remotes: remotes, prompt: p, out: out, opts: opts}
}

// Run grooms the repository against target: local branches, then tags,
// then remote branches. The returned error is non-nil when a prompt failed
// (the run stops there) or when a pass could not list its candidates (the
// remaining passes still run).
func (e *Engine) Run(ctx context.Context, target string) (Report, error) {
	e.out.Bold("Cleaning up Git for branch: %s", target)

	ex := branches.Exclusions{Target: target, Protected: e.opts.Protected}
	var report Report
	var listErrs []error

	passes := []func(context.Context, string, branches.Exclusions) (PassReport, bool, error){
		e.localPass,
		e.tagPass,
		e.remotePass,
	}
	for _, pass := range passes {
		pr, ran, err := pass(ctx, target, ex)
		if ran {
			report.Passes = append(report.Passes, pr)
		}
		if err != nil {
			return report, err
		}
		if pr.Status == ListFailed {
			listErrs = append(listErrs, pr.Err)
		}
	}

	return report, errors.Join(listErrs...)
}

func (e *Engine) localPass(ctx context.Context, target string, ex branches.Exclusions) (PassReport, bool, error) {
	lines, err := e.git.MergedBranches(ctx, target)
	pr, err := e.runPass(ctx, branches.Local, lines, err, func(l []string) []string {
		return branches.LocalCandidates(l, ex)
	}, e.git.DeleteBranch)
	return pr, true, err
}

func (e *Engine) tagPass(ctx context.Context, target string, _ branches.Exclusions) (PassReport, bool, error) {
	lines, err := e.git.MergedTags(ctx, target)
	pr, err := e.runPass(ctx, branches.Tags, lines, err, branches.TagCandidates, e.git.DeleteTag)
	return pr, true, err
}

func (e *Engine) remotePass(ctx context.Context, target string, ex branches.Exclusions) (PassReport, bool, error) {
	remote := e.opts.Remote
	if !e.remotes.HasRemote(ctx, remote) {
		slog.Debug("no remote, skipping remote branch pass", "remote", remote)
		return PassReport{}, false, nil
	}

	if e.opts.DryRun {
		slog.Debug("dry run, not pruning", "remote", remote)
	} else {
		e.out.Info("Pruning stale remote-tracking branches...")
		if err := e.git.PruneRemote(ctx, remote); err != nil {
			e.out.Warn("Could not prune %s: %s", remote, git.Diagnostic(err))
		}

		review, err := e.prompt.Confirm(ctx, "Do you want to look at deleting merged remote branches?", true)
		if err != nil {
			return PassReport{Kind: branches.Remote}, true, fmt.Errorf("confirming remote review: %w", err)
		}
		if !review {
			e.out.Warn("Skipping remote branch deletion.")
			return PassReport{Kind: branches.Remote, Status: Skipped}, true, nil
		}
	}

	lines, err := e.git.MergedRemoteBranches(ctx, target)
	pr, err := e.runPass(ctx, branches.Remote, lines, err, func(l []string) []string {
		return branches.RemoteCandidates(l, remote, ex)
	}, func(ctx context.Context, qualified string) error {
		return e.git.DeleteRemoteBranch(ctx, remote, branches.RemoteBranchName(remote, qualified))
	})
	return pr, true, err
}

// runPass is the confirm / delete-in-parallel / report cycle shared by all
// three passes.
func (e *Engine) runPass(
	ctx context.Context,
	kind branches.Kind,
	lines []string,
	listErr error,
	filter func([]string) []string,
	del func(context.Context, string) error,
) (PassReport, error) {
	w := wordingFor(kind)
	pr := PassReport{Kind: kind}

	if listErr != nil {
		e.out.Fail("Could not list merged %s: %s", w.label, git.Diagnostic(listErr))
		pr.Status = ListFailed
		pr.Err = fmt.Errorf("listing merged %s: %w", w.label, listErr)
		return pr, nil
	}

	pr.Candidates = filter(lines)
	if len(pr.Candidates) == 0 {
		e.out.Warn("No merged %s to delete.", w.label)
		pr.Status = Empty
		return pr, nil
	}

	e.out.List(fmt.Sprintf("Merged %s to delete:", w.label), pr.Candidates)

	if e.opts.DryRun {
		if kind == branches.Remote {
			e.out.Warn("Dry run: would delete %d %s (not pruned).", len(pr.Candidates), kind)
		} else {
			e.out.Warn("Dry run: would delete %d %s.", len(pr.Candidates), kind)
		}
		pr.Status = DryRun
		return pr, nil
	}

	ok, err := e.prompt.Confirm(ctx, fmt.Sprintf("Are you sure you want to delete these %s?", kind), false)
	if err != nil {
		return pr, fmt.Errorf("confirming %s deletion: %w", kind, err)
	}
	if !ok {
		e.out.Warn("Skipping %s deletion.", w.singular)
		pr.Status = Declined
		return pr, nil
	}

	e.out.Info("Deleting %s...", kind)
	pr.Results = parallel.Run(ctx, pr.Candidates, e.opts.Workers, func(ctx context.Context, name string) Result {
		return Result{Name: name, Err: del(ctx, name)}
	})
	pr.Status = Deleted

	e.report(kind, pr.Results)
	return pr, nil
}

func (e *Engine) report(kind branches.Kind, results []Result) {
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		slog.Debug("deletion failed", "kind", kind.String(), "name", r.Name, "error", r.Err)
		if kind == branches.Remote {
			e.out.Fail("Error deleting %s: %s", r.Name, git.Diagnostic(r.Err))
		} else {
			e.out.Fail("Error deleting %s", r.Name)
		}
	}

	if failed(results) == 0 {
		e.out.Info("All %s deleted successfully.", kind)
	} else {
		e.out.Fail("Some %s were not deleted successfully.", kind)
	}
	e.out.Info("Finished deleting %s.", kind)
}

type wording struct {
	label    string // "Merged <label> to delete:"
	singular string // "Skipping <singular> deletion."
}

func wordingFor(kind branches.Kind) wording {
	switch kind {
	case branches.Local:
		return wording{label: "local branches", singular: "branch"}
	case branches.Tags:
		return wording{label: "tags", singular: "tag"}
	default:
		return wording{label: "remote branches", singular: "remote branch"}
	}
}
