package domain

import (
	"testing"

	m "github.com/ollyhq/olly-cli/internal/model"
)

func TestIsJSFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"dist/app.js", true},
		{"dist/app.cjs", true},
		{"dist/app.mjs", true},
		{"dist/app.js.map", false},
		{"dist/app.css", false},
		{"dist/app.json", false},
		{"app.jsx", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsJSFile(m.Path(tt.path)); got != tt.want {
				t.Fatalf("IsJSFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsMapFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"dist/app.js.map", true},
		{"dist/app.cjs.map", true},
		{"dist/app.mjs.map", true},
		{"dist/app.js", false},
		{"dist/app.map", false},
		{"dist/app.css.map", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsMapFile(m.Path(tt.path)); got != tt.want {
				t.Fatalf("IsMapFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
