package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	m "github.com/ollyhq/olly-cli/internal/model"
)

// Config carries the upload settings for a run. It is resolved once at
// startup from flags, config file and environment, and handed to the client
// constructor; nothing reads configuration ad hoc after that.
type Config struct {
	BaseURL string
	Token   string
	AppID   string
	Timeout time.Duration
}

// APIClient uploads debugging-symbol artifacts to the olly backend.
type APIClient interface {
	UploadArtifact(ctx context.Context, artifact m.Artifact) error
}

// HTTPStatusError reports that the backend answered with a non-success
// status. It is one of the two error variants the client produces, so
// callers can match on a closed set instead of probing error shapes.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("backend returned %s", e.Status)
}

// NoResponseError reports that the request never produced an HTTP response
// (connection refused, DNS failure, timeout).
type NoResponseError struct {
	URL string
	Err error
}

func (e *NoResponseError) Error() string {
	return fmt.Sprintf("no response from %s: %v", e.URL, e.Err)
}

func (e *NoResponseError) Unwrap() error { return e.Err }

// maxErrorBody caps how much of an error response body is kept for logs.
const maxErrorBody = 4 << 10

type httpAPIClient struct {
	cfg    Config
	client *http.Client
}

// NewAPIClient constructs the HTTP-backed APIClient for the given config.
func NewAPIClient(cfg Config) APIClient {
	return &httpAPIClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// UploadArtifact posts one artifact as a multipart form to the store
// endpoint for its kind.
func (c *httpAPIClient) UploadArtifact(ctx context.Context, artifact m.Artifact) error {
	url := fmt.Sprintf("%s/v2/store/%s", c.cfg.BaseURL, artifact.Kind)

	body, contentType, err := encodeArtifact(artifact, c.cfg.AppID)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", artifact.Kind, artifact.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}

	req.Header.Set("Content-Type", contentType)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &NoResponseError{URL: url, Err: err}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(detail),
		}
	}

	slog.Debug("uploaded artifact",
		"kind", artifact.Kind, "name", artifact.Name, "status", resp.StatusCode)

	return nil
}

func encodeArtifact(artifact m.Artifact, appID string) (*bytes.Buffer, string, error) {
	if artifact.AppID == "" {
		artifact.AppID = appID
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := map[string]string{
		"app":          artifact.AppID,
		"id":           string(artifact.ID),
		"version_name": artifact.VersionName,
		"version_code": artifact.VersionCode,
	}

	for name, value := range fields {
		if value == "" {
			continue
		}

		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	part, err := w.CreateFormFile("file", artifact.Name)
	if err != nil {
		return nil, "", err
	}

	if _, err := part.Write(artifact.Payload); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf, w.FormDataContentType(), nil
}
