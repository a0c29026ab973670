package domain

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollyhq/olly-cli/internal/adapter"
	m "github.com/ollyhq/olly-cli/internal/model"
)

// fakeAPIClient records uploads and can fail selected artifact names.
type fakeAPIClient struct {
	mu       sync.Mutex
	uploaded []m.Artifact
	errs     map[string]error
}

func (f *fakeAPIClient) UploadArtifact(_ context.Context, artifact m.Artifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.errs[artifact.Name]; ok {
		return err
	}

	f.uploaded = append(f.uploaded, artifact)

	return nil
}

func TestUploader_UploadMaps(t *testing.T) {
	root := t.TempDir()
	mapPath := filepath.Join(root, "app.js.map")
	writeTestFile(t, mapPath, `{"version":3}`)

	report := m.RunReport{Files: []m.FileReport{
		{File: "app.js", Map: m.Path(mapPath), ID: testID, Action: m.ActionInjected},
		// A second JS file sharing the same map must not duplicate the upload.
		{File: "app.copy.js", Map: m.Path(mapPath), ID: testID, Action: m.ActionInjected},
		{File: "vendor.js", Action: m.ActionNoMap},
	}}

	client := &fakeAPIClient{}
	uploader := NewUploader(adapter.NewLocalSourceFSAdapter(), client, 2)

	stats, err := uploader.UploadMaps(context.Background(), report, false)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Uploaded)
	assert.Equal(t, 0, stats.Failed)
	require.Len(t, client.uploaded, 1)
	assert.Equal(t, m.ArtifactSourceMap, client.uploaded[0].Kind)
	assert.Equal(t, testID, client.uploaded[0].ID)
	assert.Equal(t, "app.js.map", client.uploaded[0].Name)
	assert.Equal(t, `{"version":3}`, string(client.uploaded[0].Payload))
}

func TestUploader_UnreadableMapCountsAsFailed(t *testing.T) {
	root := t.TempDir()
	goodPath := filepath.Join(root, "good.js.map")
	writeTestFile(t, goodPath, `{"version":3}`)

	report := m.RunReport{Files: []m.FileReport{
		{File: "good.js", Map: m.Path(goodPath), ID: testID, Action: m.ActionInjected},
		// The map vanished between injection and upload.
		{File: "gone.js", Map: m.Path(filepath.Join(root, "gone.js.map")),
			ID: "647366e7-d3db-6cf4-8693-2c321c377d00", Action: m.ActionInjected},
	}}

	client := &fakeAPIClient{}
	uploader := NewUploader(adapter.NewLocalSourceFSAdapter(), client, 2)

	stats, err := uploader.UploadMaps(context.Background(), report, false)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Uploaded)
	assert.Equal(t, 1, stats.Failed, "an unreadable map must surface in the failure count")
	require.Len(t, client.uploaded, 1)
	assert.Equal(t, "good.js.map", client.uploaded[0].Name)
}

func TestUploader_DryRunSendsNothing(t *testing.T) {
	client := &fakeAPIClient{}
	uploader := NewUploader(adapter.NewLocalSourceFSAdapter(), client, 2)

	artifacts := []m.Artifact{
		{Kind: m.ArtifactSourceMap, Name: "a.js.map"},
		{Kind: m.ArtifactSourceMap, Name: "b.js.map"},
	}

	stats, err := uploader.UploadArtifacts(context.Background(), artifacts, true)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Uploaded)
	assert.Equal(t, 2, stats.Skipped)
	assert.Empty(t, client.uploaded)
}

func TestUploader_ConflictCountsAsSkipped(t *testing.T) {
	client := &fakeAPIClient{errs: map[string]error{
		"dup.js.map": &adapter.HTTPStatusError{StatusCode: http.StatusConflict, Status: "409 Conflict"},
	}}
	uploader := NewUploader(adapter.NewLocalSourceFSAdapter(), client, 1)

	artifacts := []m.Artifact{
		{Kind: m.ArtifactSourceMap, Name: "dup.js.map"},
		{Kind: m.ArtifactSourceMap, Name: "new.js.map"},
	}

	stats, err := uploader.UploadArtifacts(context.Background(), artifacts, false)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Uploaded)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Failed)
}

func TestUploader_FailureIsCountedNotFatal(t *testing.T) {
	client := &fakeAPIClient{errs: map[string]error{
		"bad.js.map": &adapter.HTTPStatusError{StatusCode: http.StatusInternalServerError, Status: "500 Internal Server Error"},
	}}
	uploader := NewUploader(adapter.NewLocalSourceFSAdapter(), client, 4)

	artifacts := []m.Artifact{
		{Kind: m.ArtifactSourceMap, Name: "bad.js.map"},
		{Kind: m.ArtifactSourceMap, Name: "good.js.map"},
	}

	stats, err := uploader.UploadArtifacts(context.Background(), artifacts, false)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Uploaded)
	assert.Equal(t, 1, stats.Failed)
}
