// Package domain implements the source map association and injection engine
// plus the upload workflows built on top of it.
package domain

import (
	"strings"

	m "github.com/ollyhq/olly-cli/internal/model"
)

// jsExtensions are the recognized JavaScript bundle extensions: plain,
// CommonJS and ES-module variants.
var jsExtensions = []string{".js", ".cjs", ".mjs"}

// MapSuffix is appended to a JS extension to form the matching map file
// extension.
const MapSuffix = ".map"

// IsJSFile reports whether path names a JavaScript source file. The check is
// a pure suffix match; no file access happens.
func IsJSFile(path m.Path) bool {
	for _, ext := range jsExtensions {
		if strings.HasSuffix(string(path), ext) {
			return true
		}
	}

	return false
}

// IsMapFile reports whether path names a JavaScript source map file.
func IsMapFile(path m.Path) bool {
	for _, ext := range jsExtensions {
		if strings.HasSuffix(string(path), ext+MapSuffix) {
			return true
		}
	}

	return false
}
