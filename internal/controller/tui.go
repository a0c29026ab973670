package controller

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "github.com/ollyhq/olly-cli/internal/model"
)

var (
	fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// TUI implements UI with a Bubble Tea progress display. It is selected when
// stdout is a terminal; plain output is used otherwise.
type TUI struct {
	output   io.Writer
	program  *tea.Program
	done     chan struct{}
	mu       sync.Mutex
	warnings []string
	summary  *m.Summary
}

// NewTUI creates a new TUI writing to output.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

type fileProcessedMsg struct {
	report m.FileReport
}

// Start launches the progress display.
func (t *TUI) Start(ctx context.Context, total int, dryRun bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	model := progressModel{
		total:   total,
		dryRun:  dryRun,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient()),
	}

	t.program = tea.NewProgram(model, tea.WithOutput(t.output), tea.WithContext(ctx))
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)
		_, _ = t.program.Run()
	}()

	return nil
}

// FileProcessed advances the progress display by one file.
func (t *TUI) FileProcessed(ctx context.Context, report m.FileReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	if t.program != nil {
		t.program.Send(fileProcessedMsg{report: report})
	}
}

// Warn records a warning for display after the progress view closes.
func (t *TUI) Warn(ctx context.Context, msg string) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.mu.Lock()
	t.warnings = append(t.warnings, msg)
	t.mu.Unlock()
}

// DisplaySummary records the final summary for rendering on Close.
func (t *TUI) DisplaySummary(ctx context.Context, summary m.Summary) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.mu.Lock()
	t.summary = &summary
	t.mu.Unlock()
}

// Close stops the progress display and prints warnings and the summary table.
func (t *TUI) Close(_ context.Context) {
	if t.program != nil {
		t.program.Quit()
		<-t.done
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, warning := range t.warnings {
		fmt.Fprintf(t.output, "warning: %s\n", warning)
	}

	if t.summary != nil {
		fmt.Fprintf(t.output, "\n%s", renderSummaryTable(*t.summary))
	}
}

// progressModel is the Bubble Tea model for the injection progress view.
type progressModel struct {
	total    int
	done     int
	failed   int
	dryRun   bool
	lastFile string
	lastTag  string
	spinner  spinner.Model
	bar      progress.Model
	quitting bool
}

// Init starts the spinner tick loop.
func (pm progressModel) Init() tea.Cmd {
	return pm.spinner.Tick
}

// Update handles progress and key messages.
func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			pm.quitting = true
			return pm, tea.Quit
		}

		return pm, nil

	case tea.WindowSizeMsg:
		pm.bar.Width = msg.Width - 8
		return pm, nil

	case fileProcessedMsg:
		pm.done++
		pm.lastFile = string(msg.report.File)
		pm.lastTag = msg.report.Action

		if msg.report.Action == m.ActionFailed {
			pm.failed++
		}

		return pm, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd
	}

	return pm, nil
}

// View renders the progress bar and the last processed file.
func (pm progressModel) View() string {
	if pm.quitting {
		return ""
	}

	percent := 0.0
	if pm.total > 0 {
		percent = float64(pm.done) / float64(pm.total)
	}

	header := "Injecting source map ids"
	if pm.dryRun {
		header = "Previewing source map injection (dry run)"
	}

	line := fmt.Sprintf("%s %s\n\n  %s %d/%d",
		pm.spinner.View(), header, pm.bar.ViewAs(percent), pm.done, pm.total)

	if pm.lastFile != "" {
		tag := okStyle.Render(pm.lastTag)
		if pm.lastTag == m.ActionFailed {
			tag = failStyle.Render(pm.lastTag)
		}

		line += fmt.Sprintf("\n  %s %s", tag, fileStyle.Render(pm.lastFile))
	}

	if pm.failed > 0 {
		line += dimStyle.Render(fmt.Sprintf("\n  %d file(s) failed", pm.failed))
	}

	return line + "\n"
}
