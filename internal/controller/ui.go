// Package controller provides output adapters for reporting run progress and
// summaries to the operator.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "github.com/ollyhq/olly-cli/internal/model"
)

// UI is the interface commands use to surface progress and results.
// Implementations can use different output methods (plain text, TUI).
type UI interface {
	Start(ctx context.Context, total int, dryRun bool) error
	FileProcessed(ctx context.Context, report m.FileReport)
	Warn(ctx context.Context, msg string)
	DisplaySummary(ctx context.Context, summary m.Summary)
	Close(ctx context.Context)
}

// NewUI selects the UI implementation: the progress TUI when attached to a
// terminal, plain output otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
