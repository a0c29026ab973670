package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	m "github.com/ollyhq/olly-cli/internal/model"
)

// ReportStore persists sourcemaps run reports.
type ReportStore interface {
	Save(dir m.Path, report m.RunReport) (m.Path, error)
	Load(path m.Path) (m.RunReport, error)
}

type yamlReportStore struct {
	now func() time.Time
}

// NewReportStore constructs the YAML-backed ReportStore.
func NewReportStore() ReportStore {
	return &yamlReportStore{now: time.Now}
}

// Save writes the report to dir under a timestamped file name and returns the
// resulting path.
func (s *yamlReportStore) Save(dir m.Path, report m.RunReport) (m.Path, error) {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return "", fmt.Errorf("create report directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	name := fmt.Sprintf("sourcemaps-%s.yaml", s.now().UTC().Format("20060102-150405"))
	path := filepath.Join(string(dir), name)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}

	return m.Path(path), nil
}

// Load reads a previously saved report.
func (s *yamlReportStore) Load(path m.Path) (m.RunReport, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.RunReport{}, fmt.Errorf("read report %s: %w", path, err)
	}

	var report m.RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.RunReport{}, fmt.Errorf("decode report %s: %w", path, err)
	}

	return report, nil
}
