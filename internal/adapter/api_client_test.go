package adapter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/ollyhq/olly-cli/internal/model"
)

func testArtifact() m.Artifact {
	return m.Artifact{
		Kind:    m.ArtifactSourceMap,
		Name:    "app.js.map",
		ID:      "90605548-63a6-2b9d-b5f7-26216876654e",
		Payload: []byte(`{"version":3}`),
	}
}

func TestAPIClient_UploadArtifact(t *testing.T) {
	var gotPath, gotAuth string
	var gotApp, gotID, gotFile string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotApp = r.FormValue("app")
		gotID = r.FormValue("id")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		gotFile = string(content)
		assert.Equal(t, "app.js.map", header.Filename)

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewAPIClient(Config{
		BaseURL: server.URL,
		Token:   "secret",
		AppID:   "com.example.app",
		Timeout: 5 * time.Second,
	})

	err := client.UploadArtifact(context.Background(), testArtifact())
	require.NoError(t, err)

	assert.Equal(t, "/v2/store/sourcemap", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "com.example.app", gotApp)
	assert.Equal(t, "90605548-63a6-2b9d-b5f7-26216876654e", gotID)
	assert.Equal(t, `{"version":3}`, gotFile)
}

func TestAPIClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad payload", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewAPIClient(Config{BaseURL: server.URL, Timeout: 5 * time.Second})

	err := client.UploadArtifact(context.Background(), testArtifact())
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "bad payload")
}

func TestAPIClient_NoResponse(t *testing.T) {
	// A server that is immediately closed leaves nothing listening on the port.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewAPIClient(Config{BaseURL: url, Timeout: 2 * time.Second})

	err := client.UploadArtifact(context.Background(), testArtifact())
	require.Error(t, err)

	var noResp *NoResponseError
	require.ErrorAs(t, err, &noResp)
	assert.Contains(t, noResp.URL, "/v2/store/sourcemap")
}

func TestAPIClient_ArtifactAppOverridesConfig(t *testing.T) {
	var gotApp string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotApp = r.FormValue("app")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewAPIClient(Config{BaseURL: server.URL, AppID: "from-config", Timeout: 5 * time.Second})

	artifact := testArtifact()
	artifact.AppID = "from-flag"

	require.NoError(t, client.UploadArtifact(context.Background(), artifact))
	assert.Equal(t, "from-flag", gotApp)
}
