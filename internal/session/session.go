// Package session drives one interactive git-groom run: it checks that
// there is something to groom, settles on a target branch with the user,
// and hands that target to the groom engine.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/agrahamlincoln/gitgroom/internal/groom"
	"github.com/agrahamlincoln/gitgroom/internal/metrics"
	"github.com/agrahamlincoln/gitgroom/internal/prompt"
	"github.com/agrahamlincoln/gitgroom/internal/sanitize"
	"github.com/agrahamlincoln/gitgroom/internal/ui"
)

// Outcome is how a run ended when no error occurred.
type Outcome int

const (
	// NothingToDo means the run legitimately found nothing to groom.
	NothingToDo Outcome = iota
	// Groomed means the groom engine ran against a target.
	Groomed
)

// String returns the name of an Outcome value.
func (o Outcome) String() string {
	switch o {
	case NothingToDo:
		return "nothing-to-do"
	case Groomed:
		return "groomed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Inspector answers questions about the repository.
type Inspector interface {
	IsRepository(ctx context.Context) bool
	HasCommits(ctx context.Context) bool
	HasRemote(ctx context.Context, name string) bool
	ListBranches(ctx context.Context) []string
	DefaultBranch(ctx context.Context) (string, bool)
}

// Groomer runs the deletion passes against a target branch.
type Groomer interface {
	Run(ctx context.Context, target string) (groom.Report, error)
}

// Options controls session behavior.
type Options struct {
	Remote      string // remote whose absence triggers the manual branch question
	Fingerprint string // identifies the repository in metrics events
}

// Session resolves a target branch and grooms it.
type Session struct {
	inspector Inspector
	groomer   Groomer
	prompt    prompt.Prompter
	out       *ui.Printer
	metrics   *metrics.Logger
	opts      Options
}

// New creates a Session. ml may be nil.
func New(inspector Inspector, groomer Groomer, p prompt.Prompter, out *ui.Printer, ml *metrics.Logger, opts Options) *Session {
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	return &Session{
		inspector: inspector,
		groomer:   groomer,
		prompt:    p,
		out:       out,
		metrics:   ml,
		opts:      opts,
	}
}

// Run executes one session. arg is the branch named on the command line, or
// empty. A returned error is a structural failure; declining a prompt or
// finding nothing to delete is not.
func (s *Session) Run(ctx context.Context, arg string) (outcome Outcome, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("session panicked", "panic", r)
			outcome, err = NothingToDo, fmt.Errorf("unexpected failure: %v", r)
		}
		result := outcome.String()
		if err != nil {
			result = "error"
		}
		_ = s.metrics.LogRun(result, int(time.Since(start).Milliseconds()))
	}()

	return s.run(ctx, arg)
}

func (s *Session) run(ctx context.Context, arg string) (Outcome, error) {
	if !s.inspector.IsRepository(ctx) {
		s.out.Info("This is not a git repository - Cleanup skipped")
		return NothingToDo, nil
	}

	branches := s.inspector.ListBranches(ctx)
	if len(branches) == 0 {
		s.out.Info("Your repository does not have any branches - Cleanup skipped")
		return NothingToDo, nil
	}

	if !s.inspector.HasCommits(ctx) {
		s.out.Info("Your repository does not have any commits yet - Cleanup skipped")
		return NothingToDo, nil
	}

	if arg != "" {
		if name, ok := s.existing(sanitize.Sanitize(arg), branches); ok {
			return s.groom(ctx, name)
		}
	}

	defaultBranch, found := s.inspector.DefaultBranch(ctx)
	if found && !slices.Contains(branches, defaultBranch) {
		slog.Debug("default branch not present locally", "branch", defaultBranch)
		found = false
	}
	if found {
		use, err := s.prompt.Confirm(ctx, fmt.Sprintf("Do you want to use the default branch '%s'?", defaultBranch), true)
		if errors.Is(err, prompt.ErrAborted) {
			return s.skipped()
		}
		if err != nil {
			return NothingToDo, fmt.Errorf("confirming default branch: %w", err)
		}
		if use {
			return s.groom(ctx, defaultBranch)
		}
	} else if !s.inspector.HasRemote(ctx, s.opts.Remote) {
		s.out.Warn("It looks like this repository is not connected to a remote.")
		typed, err := s.prompt.Input(ctx, "Please enter the default branch name for this repository:")
		if errors.Is(err, prompt.ErrAborted) {
			return s.skipped()
		}
		if err != nil {
			return NothingToDo, fmt.Errorf("reading branch name: %w", err)
		}
		if typed != "" {
			if name, ok := s.existing(sanitize.Sanitize(typed), branches); ok {
				return s.groom(ctx, name)
			}
		}
	}

	selected, err := s.prompt.SelectOne(ctx, "Select a default branch:", branches)
	if err != nil && !errors.Is(err, prompt.ErrAborted) {
		return NothingToDo, fmt.Errorf("selecting branch: %w", err)
	}
	if err == nil && selected != "" {
		return s.groom(ctx, selected)
	}
	return s.skipped()
}

// skipped ends a run where the user chose no branch, including by
// abandoning a prompt.
func (s *Session) skipped() (Outcome, error) {
	s.out.Info("No branch selected - Cleanup skipped")
	return NothingToDo, nil
}

// existing reports whether name is one of branches, warning with the list
// of available branches when it is not.
func (s *Session) existing(name string, branches []string) (string, bool) {
	if slices.Contains(branches, name) {
		return name, true
	}
	s.out.Warn("Branch '%s' does not exist.", name)
	s.out.Plain("Available branches:")
	for _, b := range branches {
		s.out.Plain("  - %s", b)
	}
	return "", false
}

func (s *Session) groom(ctx context.Context, target string) (Outcome, error) {
	report, err := s.groomer.Run(ctx, target)
	for _, pr := range report.Passes {
		_ = s.metrics.LogPass(metrics.PassEvent{
			Kind:            pr.Kind.String(),
			RepoFingerprint: s.opts.Fingerprint,
			Status:          pr.Status.String(),
			Candidates:      len(pr.Candidates),
			Accepted:        pr.Status == groom.Deleted,
			Succeeded:       pr.Succeeded(),
			Failed:          pr.Failed(),
		})
	}
	if err != nil {
		return Groomed, fmt.Errorf("grooming %s: %w", target, err)
	}
	return Groomed, nil
}
