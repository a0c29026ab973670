package domain

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ollyhq/olly-cli/internal/adapter"
	m "github.com/ollyhq/olly-cli/internal/model"
)

// DirectivePrefix is the externally defined source map reference comment
// convention consumed (never produced) by discovery.
const DirectivePrefix = "//# sourceMappingURL="

// Discovery pairs JS files with their source maps.
type Discovery struct {
	fs adapter.SourceFSAdapter
}

// NewDiscovery constructs a Discovery backed by the provided filesystem
// adapter.
func NewDiscovery(fs adapter.SourceFSAdapter) *Discovery {
	return &Discovery{fs: fs}
}

// Discover locates the map file paired with jsPath, or "" when there is
// none. The sibling naming convention wins over any sourceMappingURL
// directive inside the file; the directive is only consulted when no sibling
// map exists in knownMaps. Directive values that are absolute paths, remote
// URLs, data URIs, or that resolve outside knownMaps yield "" rather than an
// error.
func (d *Discovery) Discover(jsPath m.Path, knownMaps map[m.Path]struct{}) (m.Path, error) {
	sibling := jsPath + MapSuffix
	if _, ok := knownMaps[sibling]; ok {
		return sibling, nil
	}

	lines, err := d.fs.ReadLines(jsPath)
	if err != nil {
		return "", translateFileError("discover map for", jsPath, err,
			"the file no longer exists; make sure no concurrent process is deleting build output",
			"permission denied; re-check the permissions on your build directory")
	}

	value := directiveValue(lines)
	if value == "" {
		return "", nil
	}

	if !resolvable(value) {
		slog.Debug("ignoring unresolvable sourceMappingURL", "file", jsPath, "value", value)
		return "", nil
	}

	resolved := m.Path(filepath.Join(filepath.Dir(string(jsPath)), value))
	if _, ok := knownMaps[resolved]; !ok {
		slog.Warn("sourceMappingURL points outside the scanned directory",
			"file", jsPath, "target", resolved)

		return "", nil
	}

	return resolved, nil
}

// directiveValue returns the trimmed value of the first sourceMappingURL
// line, scanning top to bottom. Later directives are ignored.
func directiveValue(lines []string) string {
	for _, line := range lines {
		if strings.HasPrefix(line, DirectivePrefix) {
			return strings.TrimSpace(line[len(DirectivePrefix):])
		}
	}

	return ""
}

// resolvable reports whether a directive value can name a local file under
// the scanned directory. Absolute paths and remote or inline URLs cannot.
func resolvable(value string) bool {
	if filepath.IsAbs(value) {
		return false
	}

	for _, scheme := range []string{"http://", "https://", "data:"} {
		if strings.HasPrefix(value, scheme) {
			return false
		}
	}

	return true
}
