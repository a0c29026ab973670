package model

// Summary aggregates the outcome of one sourcemaps run.
type Summary struct {
	JSFilesFound int  `yaml:"js_files_found"`
	Injected     int  `yaml:"injected"`
	WouldInject  int  `yaml:"would_inject"`
	Unchanged    int  `yaml:"unchanged"`
	NoMap        int  `yaml:"no_map"`
	Failed       int  `yaml:"failed"`
	DryRun       bool `yaml:"dry_run"`
}

// File actions recorded in run reports.
const (
	ActionInjected    = "injected"
	ActionWouldInject = "would-inject"
	ActionUnchanged   = "unchanged"
	ActionNoMap       = "no-map"
	ActionFailed      = "failed"
)

// FileReport records the outcome for a single JS file.
type FileReport struct {
	File   Path        `yaml:"file"`
	Map    Path        `yaml:"map,omitempty"`
	ID     SourceMapID `yaml:"id,omitempty"`
	Action string      `yaml:"action"`
	Error  string      `yaml:"error,omitempty"`
}

// RunReport is the persisted record of one sourcemaps run.
type RunReport struct {
	Directory Path         `yaml:"directory"`
	Summary   Summary      `yaml:"summary"`
	Files     []FileReport `yaml:"files"`
}
