package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agrahamlincoln/gitgroom/internal/branches"
	"github.com/agrahamlincoln/gitgroom/internal/groom"
	"github.com/agrahamlincoln/gitgroom/internal/metrics"
	"github.com/agrahamlincoln/gitgroom/internal/prompt"
	"github.com/agrahamlincoln/gitgroom/internal/ui"
)

// mockInspector implements Inspector for testing.
type mockInspector struct {
	notRepo       bool
	noCommits     bool
	noRemote      bool
	branches      []string
	defaultBranch string
}

func (m *mockInspector) IsRepository(context.Context) bool { return !m.notRepo }
func (m *mockInspector) HasCommits(context.Context) bool   { return !m.noCommits }

func (m *mockInspector) HasRemote(_ context.Context, _ string) bool { return !m.noRemote }

func (m *mockInspector) ListBranches(context.Context) []string { return m.branches }

func (m *mockInspector) DefaultBranch(context.Context) (string, bool) {
	return m.defaultBranch, m.defaultBranch != ""
}

// mockGroomer implements Groomer for testing.
type mockGroomer struct {
	report  groom.Report
	err     error
	panics  bool
	targets []string
}

func (m *mockGroomer) Run(_ context.Context, target string) (groom.Report, error) {
	if m.panics {
		panic("boom")
	}
	m.targets = append(m.targets, target)
	return m.report, m.err
}

// scripted implements prompt.Prompter with fixed answers.
type scripted struct {
	confirm  map[string]bool
	selected string
	typed    string
	err      error

	confirms []string
	selects  int
	inputs   int
}

func (s *scripted) Confirm(_ context.Context, message string, _ bool) (bool, error) {
	s.confirms = append(s.confirms, message)
	return s.confirm[message], s.err
}

func (s *scripted) SelectOne(_ context.Context, _ string, _ []string) (string, error) {
	s.selects++
	return s.selected, s.err
}

func (s *scripted) Input(_ context.Context, _ string) (string, error) {
	s.inputs++
	return s.typed, s.err
}

func newSession(insp *mockInspector, g *mockGroomer, p *scripted) (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	return New(insp, g, p, ui.NewPlain(&out), nil, Options{}), &out
}

func TestRun_NothingToDo(t *testing.T) {
	tests := []struct {
		name    string
		insp    *mockInspector
		message string
	}{
		{
			name:    "not a repository",
			insp:    &mockInspector{notRepo: true},
			message: "This is not a git repository - Cleanup skipped",
		},
		{
			name:    "no branches",
			insp:    &mockInspector{},
			message: "Your repository does not have any branches - Cleanup skipped",
		},
		{
			name:    "no commits",
			insp:    &mockInspector{branches: []string{"main"}, noCommits: true},
			message: "Your repository does not have any commits yet - Cleanup skipped",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &mockGroomer{}
			p := &scripted{}
			s, out := newSession(tt.insp, g, p)

			outcome, err := s.Run(context.Background(), "main")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if outcome != NothingToDo {
				t.Errorf("expected NothingToDo, got %v", outcome)
			}
			if len(g.targets) != 0 {
				t.Errorf("groom should not run, got targets %q", g.targets)
			}
			if len(p.confirms)+p.selects+p.inputs != 0 {
				t.Error("no prompt should be shown")
			}
			if !strings.Contains(out.String(), tt.message) {
				t.Errorf("expected %q, got:\n%s", tt.message, out.String())
			}
		})
	}
}

func TestRun_ArgumentNamesBranch(t *testing.T) {
	g := &mockGroomer{}
	p := &scripted{}
	s, _ := newSession(&mockInspector{branches: []string{"main", "feature/foo"}, defaultBranch: "main"}, g, p)

	outcome, err := s.Run(context.Background(), "  feature//foo; ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Groomed {
		t.Errorf("expected Groomed, got %v", outcome)
	}
	if len(g.targets) != 1 || g.targets[0] != "feature/foo" {
		t.Errorf("expected feature/foo groomed, got %q", g.targets)
	}
	if len(p.confirms)+p.selects != 0 {
		t.Error("an existing branch argument needs no prompt")
	}
}

func TestRun_UnknownArgumentFallsThrough(t *testing.T) {
	g := &mockGroomer{}
	p := &scripted{confirm: map[string]bool{"Do you want to use the default branch 'main'?": true}}
	s, out := newSession(&mockInspector{branches: []string{"main", "dev"}, defaultBranch: "main"}, g, p)

	outcome, err := s.Run(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Groomed || len(g.targets) != 1 || g.targets[0] != "main" {
		t.Errorf("expected main groomed, got %v %q", outcome, g.targets)
	}
	text := out.String()
	if !strings.Contains(text, "Branch 'nope' does not exist.") {
		t.Errorf("expected missing-branch warning, got:\n%s", text)
	}
	if !strings.Contains(text, "  - dev") {
		t.Errorf("expected available branches listed, got:\n%s", text)
	}
}

func TestRun_DefaultBranchDeclinedThenSelect(t *testing.T) {
	g := &mockGroomer{}
	p := &scripted{selected: "dev"}
	s, _ := newSession(&mockInspector{branches: []string{"main", "dev"}, defaultBranch: "main"}, g, p)

	outcome, err := s.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.confirms) != 1 || p.selects != 1 {
		t.Errorf("expected one confirm and one select, got %d/%d", len(p.confirms), p.selects)
	}
	if outcome != Groomed || g.targets[0] != "dev" {
		t.Errorf("expected dev groomed, got %v %q", outcome, g.targets)
	}
	if p.inputs != 0 {
		t.Error("input is only asked when there is no remote")
	}
}

func TestRun_NothingSelected(t *testing.T) {
	g := &mockGroomer{}
	p := &scripted{}
	s, out := newSession(&mockInspector{branches: []string{"main"}}, g, p)

	outcome, err := s.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != NothingToDo {
		t.Errorf("expected NothingToDo, got %v", outcome)
	}
	if !strings.Contains(out.String(), "No branch selected - Cleanup skipped") {
		t.Errorf("expected skip message, got:\n%s", out.String())
	}
}

func TestRun_AbortedPromptSkips(t *testing.T) {
	tests := []struct {
		name string
		insp *mockInspector
	}{
		{name: "pick list", insp: &mockInspector{branches: []string{"main", "dev"}}},
		{name: "default branch question", insp: &mockInspector{branches: []string{"main", "dev"}, defaultBranch: "main"}},
		{name: "typed branch question", insp: &mockInspector{branches: []string{"main", "dev"}, noRemote: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &mockGroomer{}
			p := &scripted{err: prompt.ErrAborted}
			s, out := newSession(tt.insp, g, p)

			outcome, err := s.Run(context.Background(), "")
			if err != nil {
				t.Fatalf("abandoning a prompt is not a failure, got %v", err)
			}
			if outcome != NothingToDo {
				t.Errorf("expected NothingToDo, got %v", outcome)
			}
			if len(g.targets) != 0 {
				t.Errorf("groom should not run, got targets %q", g.targets)
			}
			if !strings.Contains(out.String(), "No branch selected - Cleanup skipped") {
				t.Errorf("expected skip message, got:\n%s", out.String())
			}
		})
	}
}

func TestRun_DefaultBranchMissingLocally(t *testing.T) {
	g := &mockGroomer{}
	p := &scripted{selected: "dev"}
	s, _ := newSession(&mockInspector{branches: []string{"main", "dev"}, defaultBranch: "master"}, g, p)

	outcome, err := s.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.confirms) != 0 {
		t.Errorf("a default branch missing locally should not be offered, got %q", p.confirms)
	}
	if p.selects != 1 {
		t.Errorf("expected the pick list, got %d selects", p.selects)
	}
	if outcome != Groomed || len(g.targets) != 1 || g.targets[0] != "dev" {
		t.Errorf("expected dev groomed, got %v %q", outcome, g.targets)
	}
}

func TestRun_NoRemoteAsksForBranch(t *testing.T) {
	g := &mockGroomer{}
	p := &scripted{typed: "trunk"}
	s, out := newSession(&mockInspector{branches: []string{"trunk", "old"}, noRemote: true}, g, p)

	outcome, err := s.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Groomed || g.targets[0] != "trunk" {
		t.Errorf("expected trunk groomed, got %v %q", outcome, g.targets)
	}
	if p.selects != 0 {
		t.Error("no pick list after a valid typed branch")
	}
	if !strings.Contains(out.String(), "not connected to a remote") {
		t.Errorf("expected no-remote warning, got:\n%s", out.String())
	}
}

func TestRun_NoRemoteEmptyInputFallsToSelect(t *testing.T) {
	g := &mockGroomer{}
	p := &scripted{selected: "old"}
	s, _ := newSession(&mockInspector{branches: []string{"trunk", "old"}, noRemote: true}, g, p)

	if _, err := s.Run(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.inputs != 1 || p.selects != 1 {
		t.Errorf("expected input then select, got %d/%d", p.inputs, p.selects)
	}
	if g.targets[0] != "old" {
		t.Errorf("expected old groomed, got %q", g.targets)
	}
}

func TestRun_PromptError(t *testing.T) {
	g := &mockGroomer{}
	p := &scripted{err: errors.New("interrupted")}
	s, _ := newSession(&mockInspector{branches: []string{"main"}, defaultBranch: "main"}, g, p)

	_, err := s.Run(context.Background(), "")
	if err == nil || !strings.Contains(err.Error(), "confirming default branch") {
		t.Fatalf("expected wrapped prompt error, got %v", err)
	}
	if len(g.targets) != 0 {
		t.Error("groom should not run after a prompt error")
	}
}

func TestRun_GroomError(t *testing.T) {
	groomErr := errors.New("listing merged tags: bad revision")
	g := &mockGroomer{err: groomErr}
	s, _ := newSession(&mockInspector{branches: []string{"main"}}, g, &scripted{})

	outcome, err := s.Run(context.Background(), "main")
	if !errors.Is(err, groomErr) {
		t.Fatalf("expected groom error, got %v", err)
	}
	if outcome != Groomed {
		t.Errorf("expected Groomed, got %v", outcome)
	}
}

func TestRun_RecoversPanic(t *testing.T) {
	g := &mockGroomer{panics: true}
	s, _ := newSession(&mockInspector{branches: []string{"main"}}, g, &scripted{})

	_, err := s.Run(context.Background(), "main")
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected recovered panic as error, got %v", err)
	}
}

func TestRun_LogsMetrics(t *testing.T) {
	dir := t.TempDir()
	ml, err := metrics.NewWithDir(dir)
	if err != nil {
		t.Fatalf("NewWithDir failed: %v", err)
	}

	g := &mockGroomer{report: groom.Report{Passes: []groom.PassReport{
		{Kind: branches.Local, Status: groom.Deleted, Candidates: []string{"a", "b"},
			Results: []groom.Result{{Name: "a"}, {Name: "b", Err: errors.New("x")}}},
		{Kind: branches.Tags, Status: groom.Empty},
	}}}
	var out bytes.Buffer
	s := New(&mockInspector{branches: []string{"main"}}, g, &scripted{}, ui.NewPlain(&out), ml, Options{Fingerprint: "fp"})

	if _, err := s.Run(context.Background(), "main"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ml.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "events-*.jsonl"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one events file, got %v (%v)", files, err)
	}
	// #nosec G304 - path from test temp dir
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}

	var events []metrics.Event
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var e metrics.Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("bad event line %q: %v", line, err)
		}
		events = append(events, e)
	}
	if len(events) != 3 {
		t.Fatalf("expected 2 pass events and 1 run event, got %d", len(events))
	}
	first := events[0].Pass
	if first == nil || first.Kind != "branches" || !first.Accepted || first.Succeeded != 1 || first.Failed != 1 {
		t.Fatalf("unexpected first pass event: %+v", first)
	}
	if first.RepoFingerprint != "fp" {
		t.Errorf("expected fingerprint fp, got %q", first.RepoFingerprint)
	}
	if events[1].Pass == nil || events[1].Pass.Accepted {
		t.Errorf("empty pass should not be accepted: %+v", events[1].Pass)
	}
	if events[2].Run == nil || events[2].Run.Outcome != "groomed" {
		t.Errorf("unexpected run event: %+v", events[2].Run)
	}
}

func TestOutcomeString(t *testing.T) {
	if Groomed.String() != "groomed" || NothingToDo.String() != "nothing-to-do" {
		t.Error("unexpected Outcome strings")
	}
}
