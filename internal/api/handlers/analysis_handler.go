package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/codelens/engine/internal/api/types"
	"github.com/codelens/engine/internal/services"
)

type AnalysisHandler struct {
	analysis services.AnalysisService
}

func NewAnalysisHandler(analysis services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis}
}

// Analyze triggers a whole-codebase analysis run. Reasoning-service failures
// never produce an error status here; the stored fallback result comes back
// with 200.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID, projectID, err := h.ids(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.analysis.AnalyzeProject(r.Context(), projectID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: rec})
}

// Latest returns the most recent analysis for a project, 404 when none.
func (h *AnalysisHandler) Latest(w http.ResponseWriter, r *http.Request) {
	userID, projectID, err := h.ids(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.analysis.LatestAnalysis(r.Context(), projectID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: rec})
}

func (h *AnalysisHandler) ids(r *http.Request) (userID, projectID uuid.UUID, err error) {
	userID, err = authedUserID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	projectID, err = pathUUID(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, projectID, nil
}
