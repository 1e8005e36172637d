package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestPlainPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf)

	p.Bold("Cleaning up Git for branch: %s", "main")
	p.Warn("Skipping tag deletion.")
	p.Fail("Error deleting %s", "old-1")
	p.List("Merged tags to delete:", []string{"v1", "v2"})

	want := strings.Join([]string{
		"Cleaning up Git for branch: main",
		"Skipping tag deletion.",
		"Error deleting old-1",
		"Merged tags to delete:",
		"- v1",
		"- v2",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestColoredPrinter(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	p := New(&buf)
	p.Fail("boom")
	p.Bold("heading")

	if !strings.Contains(buf.String(), "\x1b[31m") {
		t.Errorf("expected red escape code, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "\x1b[1m") {
		t.Errorf("expected bold escape code, got %q", buf.String())
	}
}
