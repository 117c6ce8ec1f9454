// Package tui provides terminal user interface entry points for sotsync.
package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// DevicePlan is the pending command batch of one device.
type DevicePlan struct {
	Device   string
	Platform string
	// Commands is the full batch in the order it will be applied.
	Commands []string
	// Negations and Additions classify Commands for display. Commands in
	// neither came from postprocessing.
	Negations []string
	Additions []string
	Errors    []string
}

// ReviewOptions configures the sync review TUI.
type ReviewOptions struct {
	Input  io.Reader
	Output io.Writer
}

// ReviewResult holds the result of a sync review.
type ReviewResult struct {
	Approved  bool
	Cancelled bool
}

// RunSyncReview shows the pending commands of every device and waits for
// the operator to approve or cancel them.
func RunSyncReview(ctx context.Context, plans []DevicePlan, opts ReviewOptions) (*ReviewResult, error) {
	model := newSyncReviewModel(plans)

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	p := tea.NewProgram(model, progOpts...)
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("sync review failed: %w", err)
	}

	m, ok := finalModel.(syncReviewModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}

	return &ReviewResult{
		Approved:  m.approved,
		Cancelled: m.cancelled || !m.approved,
	}, nil
}
