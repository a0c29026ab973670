// Package adapter contains filesystem and network adapters for the olly CLI.
package adapter

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	m "github.com/ollyhq/olly-cli/internal/model"
)

// SourceFSAdapter abstracts filesystem-specific operations that the engine
// layer relies on when scanning build output. It intentionally hides direct
// `os` access so the processing logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// Walk traverses every entry under the provided root path, descending
	// into subdirectories.
	Walk(root m.Path, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// ReadLines loads a file and splits it into logical lines. Both LF and
	// CRLF terminators are accepted; a trailing terminator does not produce
	// a phantom empty final line.
	ReadLines(path m.Path) ([]string, error)

	// WriteLines writes the line sequence back to path, one line per record,
	// using the platform's native line terminator.
	WriteLines(path m.Path, lines []string, perm os.FileMode) error

	// HashFile returns the hex SHA-256 fingerprint of the file at path.
	HashFile(path m.Path) (string, error)

	// FileInfo returns metadata for a path so callers can check existence or
	// distinguish between files and directories.
	FileInfo(path m.Path) (os.FileInfo, error)
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type into the engine
// layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter is the concrete SourceFSAdapter backed by the os
// package.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter ready to be wired
// into the commands.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Walk iterates over all files under root, descending into subdirectories.
func (a *LocalSourceFSAdapter) Walk(root m.Path, fn FilepathWalkFunc) error {
	return filepath.Walk(string(root), func(path string, info os.FileInfo, err error) error {
		return fn(path, info, err)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// ReadLines loads a file and splits it into logical lines.
func (a *LocalSourceFSAdapter) ReadLines(path m.Path) ([]string, error) {
	content, err := os.ReadFile(string(path))
	if err != nil {
		return nil, err
	}

	return SplitLines(string(content)), nil
}

// SplitLines converts raw file content into logical lines. CRLF terminators
// normalize to the same logical line as LF. The final terminator, when
// present, closes the last line instead of opening an empty one.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	return lines
}

// WriteLines writes lines back to path, each terminated by the platform's
// native line separator.
func (a *LocalSourceFSAdapter) WriteLines(path m.Path, lines []string, perm os.FileMode) error {
	sep := lineSeparator()

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString(sep)
	}

	return os.WriteFile(string(path), []byte(b.String()), perm)
}

func lineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}

	return "\n"
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(path m.Path) (string, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}
