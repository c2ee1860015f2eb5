package tui

import (
	"context"
	"os"

	"github.com/charmbracelet/huh/spinner"
)

// RunWithSpinner runs action while a spinner titled title is drawn on
// stderr. The action's context is cancelled if the user interrupts.
func RunWithSpinner(ctx context.Context, title string, action func(context.Context) error) error {
	return spinner.New().
		Title(title).
		Context(ctx).
		Accessible(os.Getenv("ACCESSIBLE") != "").
		Output(os.Stderr).
		ActionWithErr(action).
		Run()
}
