package domain

import (
	"log/slog"
	"strings"

	"github.com/ollyhq/olly-cli/internal/adapter"
	m "github.com/ollyhq/olly-cli/internal/model"
)

// SnippetMarker is the literal prefix every injected snippet line starts
// with. It is the only on-disk marker used to recognize a prior injection,
// so changing it is a breaking format change.
const SnippetMarker = ";/* olly sourcemaps inject */"

// jsFileMode is used when a JS file is rewritten.
const jsFileMode = 0o644

// SnippetFor renders the canonical single-line snippet for id. When executed
// in a browser the snippet recovers the running script's own URL from a
// thrown-and-caught stack trace and records it against id in the
// window.sourceMapIds lookup table. Outside a window context it is a no-op.
func SnippetFor(id m.SourceMapID) string {
	return SnippetMarker +
		` if (typeof window === 'object') {` +
		` window.sourceMapIds = window.sourceMapIds || {};` +
		` var stack = ''; try { throw new Error(); } catch (e) { stack = e.stack || ''; }` +
		` var scriptUrl = (stack.match(/https?:\/\/[^\s)]+/) || [''])[0];` +
		` window.sourceMapIds[scriptUrl] = '` + string(id) + `'; }`
}

// ScanLines makes the single pass over a file's lines that injection needs:
// the first sourceMappingURL directive (insertion point) and the last
// existing snippet line (overwrite target).
func ScanLines(lines []string) m.FileScan {
	scan := m.FileScan{Lines: lines, DirectiveIndex: -1, SnippetIndex: -1}

	for i, line := range lines {
		if scan.DirectiveIndex == -1 && strings.HasPrefix(line, DirectivePrefix) {
			scan.DirectiveIndex = i
		}

		if strings.HasPrefix(line, SnippetMarker) {
			scan.SnippetIndex = i
		}
	}

	return scan
}

// spliceSnippet is the pure placement decision: given a scan and the snippet
// to embed, it returns the new line sequence and whether the file content
// changes at all. An existing snippet line is replaced in place; otherwise
// the snippet goes immediately before the directive line, or at the end of
// the file when there is no directive.
func spliceSnippet(scan m.FileScan, snippet string) ([]string, bool) {
	switch {
	case scan.SnippetIndex >= 0:
		if scan.Lines[scan.SnippetIndex] == snippet {
			return scan.Lines, false
		}

		lines := make([]string, len(scan.Lines))
		copy(lines, scan.Lines)
		lines[scan.SnippetIndex] = snippet

		return lines, true

	case scan.DirectiveIndex >= 0:
		lines := make([]string, 0, len(scan.Lines)+1)
		lines = append(lines, scan.Lines[:scan.DirectiveIndex]...)
		lines = append(lines, snippet)
		lines = append(lines, scan.Lines[scan.DirectiveIndex:]...)

		return lines, true

	default:
		lines := make([]string, 0, len(scan.Lines)+1)
		lines = append(lines, scan.Lines...)
		lines = append(lines, snippet)

		return lines, true
	}
}

// Injector rewrites JS files to embed source map ids.
type Injector struct {
	fs adapter.SourceFSAdapter
}

// NewInjector constructs an Injector backed by the provided filesystem
// adapter.
func NewInjector(fs adapter.SourceFSAdapter) *Injector {
	return &Injector{fs: fs}
}

// Inject embeds the snippet for id into the file at jsPath. It reports
// whether the file content would change. When the current snippet already
// carries id no write happens at all, keeping modification times stable
// across repeated runs. With dryRun set the filesystem is never written.
func (i *Injector) Inject(jsPath m.Path, id m.SourceMapID, dryRun bool) (bool, error) {
	lines, err := i.fs.ReadLines(jsPath)
	if err != nil {
		return false, translateFileError("read", jsPath, err,
			"the file no longer exists; make sure no concurrent process is deleting build output",
			"permission denied; re-check the permissions on your build directory")
	}

	scan := ScanLines(lines)

	updated, changed := spliceSnippet(scan, SnippetFor(id))
	if !changed {
		slog.Debug("snippet already current", "file", jsPath, "id", id)
		return false, nil
	}

	if dryRun {
		return true, nil
	}

	if err := i.fs.WriteLines(jsPath, updated, jsFileMode); err != nil {
		return false, translateFileError("write", jsPath, err,
			"the file no longer exists; make sure no concurrent process is deleting build output",
			"permission denied; the build output must be writable to inject source map ids")
	}

	return true, nil
}
