package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/bankroll/internal/api/response"
	"github.com/newthinker/bankroll/internal/storage/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archivedSweep(t *testing.T) *archive.Artifacts {
	t.Helper()
	fs, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	a := archive.NewArtifacts(fs)
	_, err = a.SaveSweep(context.Background(), "sweep-1", map[string][]byte{
		"results.csv":  []byte("run_id\nrun-a\n"),
		"summary.json": []byte(`{"sweep_id":"sweep-1"}`),
	})
	require.NoError(t, err)
	return a
}

func TestArtifactsHandler_List(t *testing.T) {
	handler := NewArtifactsHandler(archivedSweep(t))

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest("GET", "/api/v1/archive/sweep-1", nil), "sweep-1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp response.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []any{"results.csv", "summary.json"}, resp.Data)
}

func TestArtifactsHandler_Get(t *testing.T) {
	handler := NewArtifactsHandler(archivedSweep(t))

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest("GET", "/api/v1/archive/sweep-1/results.csv", nil), "sweep-1", "results.csv")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "run_id\nrun-a\n", w.Body.String())
}

func TestArtifactsHandler_NotFound(t *testing.T) {
	handler := NewArtifactsHandler(archivedSweep(t))

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest("GET", "/x", nil), "sweep-1", "missing.csv")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	handler.List(w, httptest.NewRequest("GET", "/x", nil), "sweep-9")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestArtifactsHandler_Escape(t *testing.T) {
	handler := NewArtifactsHandler(archivedSweep(t))

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest("GET", "/x", nil), "..", "../../etc/passwd")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArtifactsHandler_NoArchive(t *testing.T) {
	handler := NewArtifactsHandler(nil)

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest("GET", "/x", nil), "sweep-1")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
