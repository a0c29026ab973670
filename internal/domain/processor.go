package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"

	"github.com/ollyhq/olly-cli/internal/adapter"
	"github.com/ollyhq/olly-cli/internal/controller"
	m "github.com/ollyhq/olly-cli/internal/model"
)

// Processor drives the full inject pass over a build directory.
type Processor interface {
	Run(ctx context.Context, dir m.Path, dryRun bool) (m.RunReport, error)
}

type processor struct {
	fs adapter.SourceFSAdapter
	ui controller.UI
}

// NewProcessor constructs a Processor backed by the provided filesystem
// adapter and UI.
func NewProcessor(fsAdapter adapter.SourceFSAdapter, ui controller.UI) Processor {
	return &processor{fs: fsAdapter, ui: ui}
}

// Run enumerates dir once, pairs every JS file with its map, and injects the
// map's id. A failure on one file is recorded and the batch continues; the
// caller decides the exit status from Summary.Failed. The directory snapshot
// is taken once up front, so files created or deleted mid-run are not
// observed.
func (p *processor) Run(ctx context.Context, dir m.Path, dryRun bool) (m.RunReport, error) {
	if err := p.validateDir(dir); err != nil {
		return m.RunReport{}, err
	}

	jsFiles, knownMaps, err := p.snapshot(dir)
	if err != nil {
		return m.RunReport{}, fmt.Errorf("scan %s: %w", dir, err)
	}

	if err := p.ui.Start(ctx, len(jsFiles), dryRun); err != nil {
		return m.RunReport{}, err
	}

	discovery := NewDiscovery(p.fs)
	injector := NewInjector(p.fs)

	report := m.RunReport{
		Directory: dir,
		Summary:   m.Summary{JSFilesFound: len(jsFiles), DryRun: dryRun},
	}

	for _, jsFile := range jsFiles {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		fileReport := p.processFile(discovery, injector, jsFile, knownMaps, dryRun)
		p.tally(&report.Summary, fileReport)
		report.Files = append(report.Files, fileReport)
		p.ui.FileProcessed(ctx, fileReport)
	}

	p.warn(ctx, report.Summary)
	p.ui.DisplaySummary(ctx, report.Summary)

	return report, nil
}

// validateDir surfaces bad --directory values as validation failures before
// any file processing begins.
func (p *processor) validateDir(dir m.Path) error {
	info, err := p.fs.FileInfo(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &UserError{Op: "scan", Path: dir,
				Msg: "directory does not exist; check the --directory value", Err: err}
		}

		return fmt.Errorf("stat %s: %w", dir, err)
	}

	if !info.IsDir() {
		return &UserError{Op: "scan", Path: dir,
			Msg: "path is not a directory; --directory must point at your build output"}
	}

	return nil
}

// snapshot enumerates every file under dir exactly once and partitions the
// paths into JS files and the known map set.
func (p *processor) snapshot(dir m.Path) ([]m.Path, map[m.Path]struct{}, error) {
	var jsFiles []m.Path

	knownMaps := make(map[m.Path]struct{})

	err := p.fs.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		switch {
		case IsMapFile(m.Path(path)):
			knownMaps[m.Path(path)] = struct{}{}
		case IsJSFile(m.Path(path)):
			jsFiles = append(jsFiles, m.Path(path))
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(jsFiles, func(i, j int) bool { return jsFiles[i] < jsFiles[j] })

	return jsFiles, knownMaps, nil
}

func (p *processor) processFile(
	discovery *Discovery,
	injector *Injector,
	jsFile m.Path,
	knownMaps map[m.Path]struct{},
	dryRun bool,
) m.FileReport {
	fileReport := m.FileReport{File: jsFile}

	mapFile, err := discovery.Discover(jsFile, knownMaps)
	if err != nil {
		return failedReport(fileReport, err)
	}

	if mapFile == "" {
		slog.Debug("no source map for file", "file", jsFile)
		fileReport.Action = m.ActionNoMap

		return fileReport
	}

	fileReport.Map = mapFile

	id, err := ComputeID(p.fs, mapFile)
	if err != nil {
		return failedReport(fileReport, err)
	}

	fileReport.ID = id

	changed, err := injector.Inject(jsFile, id, dryRun)
	if err != nil {
		return failedReport(fileReport, err)
	}

	switch {
	case !changed:
		fileReport.Action = m.ActionUnchanged
	case dryRun:
		fileReport.Action = m.ActionWouldInject
	default:
		fileReport.Action = m.ActionInjected
	}

	return fileReport
}

func failedReport(fileReport m.FileReport, err error) m.FileReport {
	slog.Error("processing file failed", "file", fileReport.File, "error", err)

	fileReport.Action = m.ActionFailed
	fileReport.Error = err.Error()

	return fileReport
}

func (p *processor) tally(summary *m.Summary, fileReport m.FileReport) {
	switch fileReport.Action {
	case m.ActionInjected:
		summary.Injected++
	case m.ActionWouldInject:
		summary.WouldInject++
	case m.ActionUnchanged:
		summary.Unchanged++
	case m.ActionNoMap:
		summary.NoMap++
	case m.ActionFailed:
		summary.Failed++
	}
}

func (p *processor) warn(ctx context.Context, summary m.Summary) {
	if summary.JSFilesFound == 0 {
		p.ui.Warn(ctx, "no JS files found; is --directory pointing at your build output?")
		return
	}

	if summary.Injected == 0 && summary.WouldInject == 0 && summary.Unchanged == 0 {
		p.ui.Warn(ctx, "no source maps were matched; check that your build emits .map files")
	}
}
