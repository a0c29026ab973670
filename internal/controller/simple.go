package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/ollyhq/olly-cli/internal/model"
)

// SimpleUI implements UI using the cobra Command's output stream.
type SimpleUI struct {
	cmd    *cobra.Command
	dryRun bool
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, total int, dryRun bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.dryRun = dryRun
	if dryRun {
		s.cmd.Printf("dry run: scanning %d JS file(s), no files will be written\n", total)
	} else {
		s.cmd.Printf("scanning %d JS file(s)\n", total)
	}

	return nil
}

// FileProcessed prints the outcome for a single file.
func (s *SimpleUI) FileProcessed(ctx context.Context, report m.FileReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	switch report.Action {
	case m.ActionInjected, m.ActionWouldInject:
		s.cmd.Printf("  %-12s %s (%s)\n", report.Action, report.File, report.ID)
	case m.ActionFailed:
		s.cmd.Printf("  %-12s %s: %s\n", report.Action, report.File, report.Error)
	default:
		s.cmd.Printf("  %-12s %s\n", report.Action, report.File)
	}
}

// Warn prints an operator-facing warning.
func (s *SimpleUI) Warn(ctx context.Context, msg string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.cmd.Printf("warning: %s\n", msg)
}

// DisplaySummary renders the final run summary as a table.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.Summary) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.cmd.Printf("\n%s", renderSummaryTable(summary))
}

// Close finalizes the UI (no-op for SimpleUI).
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

func renderSummaryTable(summary m.Summary) string {
	buf := &bytes.Buffer{}

	table := tablewriter.NewWriter(buf)
	table.SetHeader([]string{"Result", "Count"})
	table.SetBorder(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	rows := [][2]string{
		{"JS files found", strconv.Itoa(summary.JSFilesFound)},
		{"Injected", strconv.Itoa(summary.Injected)},
		{"Unchanged", strconv.Itoa(summary.Unchanged)},
		{"No map found", strconv.Itoa(summary.NoMap)},
		{"Failed", strconv.Itoa(summary.Failed)},
	}
	if summary.DryRun {
		rows[1] = [2]string{"Would inject", strconv.Itoa(summary.WouldInject)}
	}

	for _, row := range rows {
		table.Append(row[:])
	}

	table.Render()
	fmt.Fprintln(buf)

	return buf.String()
}
