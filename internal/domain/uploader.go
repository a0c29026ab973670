package domain

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ollyhq/olly-cli/internal/adapter"
	m "github.com/ollyhq/olly-cli/internal/model"
)

// UploadStats aggregates the outcome of an artifact upload batch.
type UploadStats struct {
	Uploaded int
	Skipped  int
	Failed   int
}

// Uploader sends debugging-symbol artifacts to the backend.
type Uploader interface {
	UploadMaps(ctx context.Context, report m.RunReport, dryRun bool) (UploadStats, error)
	UploadArtifacts(ctx context.Context, artifacts []m.Artifact, dryRun bool) (UploadStats, error)
}

type uploader struct {
	fs       adapter.SourceFSAdapter
	client   adapter.APIClient
	parallel int
}

// NewUploader constructs an Uploader that runs at most parallel uploads at
// once.
func NewUploader(fsAdapter adapter.SourceFSAdapter, client adapter.APIClient, parallel int) Uploader {
	if parallel < 1 {
		parallel = 1
	}

	return &uploader{fs: fsAdapter, client: client, parallel: parallel}
}

// UploadMaps uploads every map file paired during the given run, keyed by its
// SourceMapID. Each distinct map uploads once even when several JS files
// share it. A map that cannot be read counts as a failed upload.
func (u *uploader) UploadMaps(ctx context.Context, report m.RunReport, dryRun bool) (UploadStats, error) {
	seen := make(map[m.Path]struct{})

	var artifacts []m.Artifact

	unreadable := 0

	for _, fileReport := range report.Files {
		if fileReport.Map == "" || fileReport.ID == "" {
			continue
		}

		if _, ok := seen[fileReport.Map]; ok {
			continue
		}

		seen[fileReport.Map] = struct{}{}

		payload, err := u.fs.ReadFile(fileReport.Map)
		if err != nil {
			slog.Error("read map file for upload failed", "map", fileReport.Map, "error", err)

			unreadable++

			continue
		}

		artifacts = append(artifacts, m.Artifact{
			Kind:    m.ArtifactSourceMap,
			Name:    filepath.Base(string(fileReport.Map)),
			ID:      fileReport.ID,
			Payload: payload,
		})
	}

	stats, err := u.UploadArtifacts(ctx, artifacts, dryRun)
	stats.Failed += unreadable

	return stats, err
}

// UploadArtifacts uploads the batch with bounded concurrency. A failed
// artifact is counted, not fatal; an artifact the backend already has
// (HTTP 409) counts as skipped. In dry run mode nothing is sent and every
// artifact counts as skipped.
func (u *uploader) UploadArtifacts(ctx context.Context, artifacts []m.Artifact, dryRun bool) (UploadStats, error) {
	if dryRun {
		return UploadStats{Skipped: len(artifacts)}, nil
	}

	var (
		mu    sync.Mutex
		stats UploadStats
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(u.parallel)

	for _, artifact := range artifacts {
		artifact := artifact
		group.Go(func() error {
			err := u.client.UploadArtifact(groupCtx, artifact)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				stats.Uploaded++
			case isAlreadyStored(err):
				slog.Debug("artifact already stored", "name", artifact.Name, "id", artifact.ID)
				stats.Skipped++
			default:
				slog.Error("upload failed", "name", artifact.Name, "error", err)
				stats.Failed++
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return stats, err
	}

	return stats, nil
}

func isAlreadyStored(err error) bool {
	var statusErr *adapter.HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusConflict
}
