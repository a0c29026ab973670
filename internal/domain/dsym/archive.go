// Package dsym locates iOS debug-symbol bundles and packs them for upload.
package dsym

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/ollyhq/olly-cli/internal/adapter"
	m "github.com/ollyhq/olly-cli/internal/model"
)

// BundleSuffix marks a dSYM bundle directory.
const BundleSuffix = ".dSYM"

// Archiver finds and zips dSYM bundles.
type Archiver struct {
	fs adapter.SourceFSAdapter
}

// NewArchiver constructs an Archiver backed by the provided filesystem
// adapter.
func NewArchiver(fsAdapter adapter.SourceFSAdapter) *Archiver {
	return &Archiver{fs: fsAdapter}
}

// FindBundles returns every *.dSYM bundle directory under root. A bundle is
// not searched for nested bundles.
func (a *Archiver) FindBundles(root m.Path) ([]m.Path, error) {
	var bundles []m.Path

	err := a.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() && strings.HasSuffix(path, BundleSuffix) {
			bundles = append(bundles, m.Path(path))
			return filepath.SkipDir
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s for dSYM bundles: %w", root, err)
	}

	return bundles, nil
}

// Archive zips the bundle directory into memory. Entry names are relative to
// the bundle's parent so the archive unpacks to `<name>.dSYM/...`.
func (a *Archiver) Archive(bundle m.Path) ([]byte, error) {
	buf := &bytes.Buffer{}

	zw := zip.NewWriter(buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestSpeed)
	})

	base := filepath.Dir(string(bundle))

	err := a.fs.Walk(bundle, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}

		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		content, err := a.fs.ReadFile(m.Path(path))
		if err != nil {
			return err
		}

		_, err = entry.Write(content)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", bundle, err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive for %s: %w", bundle, err)
	}

	return buf.Bytes(), nil
}
