package api

import (
	"net/http"
	"strings"

	"github.com/newthinker/bankroll/internal/api/response"
	"github.com/newthinker/bankroll/internal/core"
	"github.com/newthinker/bankroll/internal/storage/archive"
)

// ArtifactsHandler exposes archived sweep bundles. A nil archive answers
// every request with ARTIFACT_NOT_FOUND.
type ArtifactsHandler struct {
	artifacts *archive.Artifacts
}

func NewArtifactsHandler(artifacts *archive.Artifacts) *ArtifactsHandler {
	return &ArtifactsHandler{artifacts: artifacts}
}

// List returns the artifact names of a sweep.
func (h *ArtifactsHandler) List(w http.ResponseWriter, r *http.Request, sweepID string) {
	if h.artifacts == nil {
		response.Error(w, http.StatusNotFound, core.ErrArtifactNotFound)
		return
	}
	names, err := h.artifacts.Files(r.Context(), sweepID)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	if len(names) == 0 {
		response.Error(w, http.StatusNotFound, core.ErrArtifactNotFound)
		return
	}
	response.JSON(w, http.StatusOK, names)
}

// Get streams one artifact.
func (h *ArtifactsHandler) Get(w http.ResponseWriter, r *http.Request, sweepID, name string) {
	if h.artifacts == nil {
		response.Error(w, http.StatusNotFound, core.ErrArtifactNotFound)
		return
	}
	data, err := h.artifacts.Load(r.Context(), sweepID, name)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	switch {
	case strings.HasSuffix(name, ".csv"):
		w.Header().Set("Content-Type", "text/csv")
	case strings.HasSuffix(name, ".json"):
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
