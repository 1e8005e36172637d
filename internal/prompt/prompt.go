// Package prompt asks the user questions. The Prompter interface lets the
// groom workflow be driven by a terminal form or by a script in tests.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user cancels a prompt (ctrl-c / esc).
var ErrAborted = errors.New("prompt aborted")

// Prompter asks yes/no, pick-one and free-text questions.
type Prompter interface {
	Confirm(ctx context.Context, message string, def bool) (bool, error)
	SelectOne(ctx context.Context, message string, choices []string) (string, error)
	Input(ctx context.Context, message string) (string, error)
}

// Terminal renders prompts as huh forms on the controlling terminal.
type Terminal struct {
	// Accessible switches huh to its screen-reader friendly mode.
	Accessible bool
}

// Confirm asks a yes/no question, preselecting def.
func (p Terminal) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	answer := def
	err := p.run(ctx, huh.NewConfirm().
		Title(message).
		Affirmative("Yes").
		Negative("No").
		Value(&answer))
	if err != nil {
		return false, err
	}
	return answer, nil
}

// SelectOne asks the user to pick one of choices. An empty choice list
// returns "" without prompting.
func (p Terminal) SelectOne(ctx context.Context, message string, choices []string) (string, error) {
	if len(choices) == 0 {
		return "", nil
	}
	var selected string
	err := p.run(ctx, huh.NewSelect[string]().
		Title(message).
		Options(huh.NewOptions(choices...)...).
		Value(&selected))
	if err != nil {
		return "", err
	}
	return selected, nil
}

// Input asks for a line of free text.
func (p Terminal) Input(ctx context.Context, message string) (string, error) {
	var text string
	if err := p.run(ctx, huh.NewInput().Title(message).Value(&text)); err != nil {
		return "", err
	}
	return text, nil
}

func (p Terminal) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).WithAccessible(p.Accessible)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// AssumeYes answers every confirmation with yes and delegates the other
// questions to Next.
type AssumeYes struct {
	Next Prompter
}

// Confirm always returns true.
func (AssumeYes) Confirm(_ context.Context, _ string, _ bool) (bool, error) {
	return true, nil
}

// SelectOne delegates to Next.
func (a AssumeYes) SelectOne(ctx context.Context, message string, choices []string) (string, error) {
	return a.Next.SelectOne(ctx, message, choices)
}

// Input delegates to Next.
func (a AssumeYes) Input(ctx context.Context, message string) (string, error) {
	return a.Next.Input(ctx, message)
}
