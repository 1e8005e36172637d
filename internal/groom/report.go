package groom

import (
	"fmt"

	"github.com/agrahamlincoln/gitgroom/internal/branches"
)

// Status is how a pass ended.
type Status int

const (
	// Empty means there was nothing to delete.
	Empty Status = iota
	// Declined means the user said no to the deletion.
	Declined
	// Skipped means the user chose not to review remote branches at all.
	Skipped
	// DryRun means candidates were listed but nothing was deleted.
	DryRun
	// Deleted means deletions were attempted; see the results.
	Deleted
	// ListFailed means git could not list the merged refs.
	ListFailed
)

// String returns the name of a Status value.
func (s Status) String() string {
	switch s {
	case Empty:
		return "empty"
	case Declined:
		return "declined"
	case Skipped:
		return "skipped"
	case DryRun:
		return "dry-run"
	case Deleted:
		return "deleted"
	case ListFailed:
		return "list-failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of deleting one candidate. A nil Err is success.
type Result struct {
	Name string
	Err  error
}

// PassReport describes one pass.
type PassReport struct {
	Kind       branches.Kind
	Status     Status
	Candidates []string
	Results    []Result
	Err        error // set when Status is ListFailed
}

// Succeeded returns the number of successful deletions.
func (p PassReport) Succeeded() int {
	return len(p.Results) - failed(p.Results)
}

// Failed returns the number of failed deletions.
func (p PassReport) Failed() int {
	return failed(p.Results)
}

// Report collects the passes that ran, in order.
type Report struct {
	Passes []PassReport
}

// AllSucceeded returns false if any deletion failed or any pass could not
// list its candidates.
func (r Report) AllSucceeded() bool {
	for _, p := range r.Passes {
		if p.Status == ListFailed || p.Failed() > 0 {
			return false
		}
	}
	return true
}

// Pass returns the report for kind, if that pass ran.
func (r Report) Pass(kind branches.Kind) (PassReport, bool) {
	for _, p := range r.Passes {
		if p.Kind == kind {
			return p, true
		}
	}
	return PassReport{}, false
}

func failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
