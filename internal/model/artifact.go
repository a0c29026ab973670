// Package model defines the data structures shared by the olly CLI layers.
package model

// Path represents a file system path.
type Path string

// SourceMapID is the content-derived identifier injected into JS bundles,
// rendered in the canonical 8-4-4-4-12 hexadecimal form.
type SourceMapID string

// ArtifactKind distinguishes the debugging-symbol payloads the backend accepts.
type ArtifactKind string

// Available ArtifactKind values.
const (
	ArtifactSourceMap ArtifactKind = "sourcemap"
	ArtifactProguard  ArtifactKind = "proguard"
	ArtifactDSYM      ArtifactKind = "dsym"
)

// Artifact describes one uploadable payload handed to the API client.
type Artifact struct {
	Kind        ArtifactKind
	Name        string
	ID          SourceMapID // set for sourcemap artifacts
	AppID       string
	VersionName string
	VersionCode string
	Payload     []byte
}

// FileScan is the result of a single pass over a JS file's lines, recording
// the splice positions the injector needs. Index values are -1 when absent.
type FileScan struct {
	Lines          []string
	DirectiveIndex int // first //# sourceMappingURL line
	SnippetIndex   int // last previously injected snippet line
}
