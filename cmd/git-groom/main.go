// Package main provides the git-groom CLI, which deletes the branches, tags
// and remote branches a merge left behind.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/agrahamlincoln/gitgroom/internal/config"
	"github.com/agrahamlincoln/gitgroom/internal/github"
	"github.com/agrahamlincoln/gitgroom/internal/groom"
	"github.com/agrahamlincoln/gitgroom/internal/metrics"
	"github.com/agrahamlincoln/gitgroom/internal/prompt"
	"github.com/agrahamlincoln/gitgroom/internal/repo"
	"github.com/agrahamlincoln/gitgroom/internal/session"
	"github.com/agrahamlincoln/gitgroom/internal/ui"
	"github.com/agrahamlincoln/gitgroom/pkg/git"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit codes.
const (
	exitGroomed     = 0
	exitFailure     = 1
	exitNothingToDo = 3
)

// CLI defines the command line of git-groom.
type CLI struct {
	Branch  string           `arg:"" optional:"" help:"Branch to clean up against. Prompted for when omitted or unknown."`
	DryRun  bool             `name:"dry-run" short:"n" help:"Show what would be deleted without prompting or deleting."`
	Yes     bool             `name:"yes" short:"y" help:"Answer yes to every confirmation prompt."`
	Verbose bool             `name:"verbose" short:"v" help:"Verbose output."`
	Dir     string           `name:"dir" short:"C" help:"Run as if started in DIR." placeholder:"DIR"`
	Remote  string           `name:"remote" help:"Remote to groom (default from config, \"origin\")." placeholder:"NAME"`
	Version kong.VersionFlag `name:"version" help:"Show version information."`
}

// flags lists the flags that were set, for the command metrics event.
func (c *CLI) flags() []string {
	var flags []string
	if c.Branch != "" {
		flags = append(flags, "<branch>")
	}
	if c.DryRun {
		flags = append(flags, "--dry-run")
	}
	if c.Yes {
		flags = append(flags, "--yes")
	}
	if c.Verbose {
		flags = append(flags, "--verbose")
	}
	if c.Dir != "" {
		flags = append(flags, "--dir")
	}
	if c.Remote != "" {
		flags = append(flags, "--remote")
	}
	return flags
}

// run wires the configured components together and runs one session.
func (c *CLI) run(ctx context.Context, out io.Writer) (session.Outcome, error) {
	if c.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg, err := config.Load()
	if err != nil {
		return session.NothingToDo, fmt.Errorf("loading config: %w", err)
	}
	remote := cfg.Remote
	if c.Remote != "" {
		remote = c.Remote
	}
	dir := config.ExpandHome(c.Dir)

	// Metrics are opt-in local telemetry. Logging errors are discarded
	// because metrics must never interrupt the user's workflow.
	var ml *metrics.Logger
	if cfg.Metrics {
		ml = metrics.NewOrNil()
	}
	defer func() { _ = ml.Close() }()
	_ = ml.LogCommand("git-groom", c.flags())

	runner := git.NewRunner(dir)

	var lookup repo.DefaultBranchLookup
	if cfg.GitHub.DefaultBranchLookup {
		lookup = github.NewClient(cfg.GitHub.Token)
	}
	inspector := repo.NewInspector(runner, remote, lookup)

	var p prompt.Prompter = prompt.Terminal{Accessible: os.Getenv("ACCESSIBLE") != ""}
	if c.Yes {
		p = prompt.AssumeYes{Next: p}
	}

	printer := ui.New(out)
	engine := groom.New(runner, inspector, p, printer, groom.Options{
		Remote:    remote,
		Protected: cfg.Protected,
		DryRun:    c.DryRun,
		Workers:   cfg.Workers,
	})

	s := session.New(inspector, engine, p, printer, ml, session.Options{
		Remote:      remote,
		Fingerprint: repoFingerprint(ctx, ml, runner, remote, dir),
	})
	return s.Run(ctx, c.Branch)
}

// repoFingerprint identifies the repository by its remote URL when it has
// one, falling back to its path. Empty when metrics are off.
func repoFingerprint(ctx context.Context, ml *metrics.Logger, runner *git.Runner, remote, dir string) string {
	if ml == nil {
		return ""
	}
	id, err := runner.RemoteURL(ctx, remote)
	if err != nil || id == "" {
		id, _ = filepath.Abs(dir)
	}
	return metrics.Fingerprint(id)
}

// exitCode maps the result of a run to the process exit status.
func exitCode(outcome session.Outcome, err error) int {
	switch {
	case err != nil:
		return exitFailure
	case outcome == session.NothingToDo:
		return exitNothingToDo
	default:
		return exitGroomed
	}
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("git-groom"),
		kong.Description(`git-groom - clean up after merges

Deletes local branches, tags and remote branches that are already merged
into a target branch, asking before each batch. Run it as "git groom".`),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	outcome, err := cli.run(ctx, os.Stdout)
	stop()

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, color.RedString("git-groom: %v", err))
	}
	os.Exit(exitCode(outcome, err))
}
