package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/codelens/engine/internal/api/types"
	"github.com/codelens/engine/internal/services"
)

type FilesHandler struct {
	projects services.ProjectService
	analysis services.AnalysisService
	validate interface{ Struct(any) error }
}

func NewFilesHandler(projects services.ProjectService, analysis services.AnalysisService, v interface{ Struct(any) error }) *FilesHandler {
	return &FilesHandler{projects: projects, analysis: analysis, validate: v}
}

func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, fileID, err := h.ids(r)
	if err != nil {
		writeError(w, err)
		return
	}
	f, err := h.projects.GetFile(r.Context(), fileID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: f})
}

// Patch is the patch-applier entry point: it replaces the content of exactly
// one file and never creates a record.
func (h *FilesHandler) Patch(w http.ResponseWriter, r *http.Request) {
	userID, fileID, err := h.ids(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.FilePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := h.projects.PatchFile(r.Context(), fileID, userID, req.Content, req.PreviousContentSHA256)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: f})
}

// Document asks the reasoning service for a documented version of the file.
// Upstream failures surface as errors here, unlike the codebase analysis
// path: this is an explicit user action that expects feedback.
func (h *FilesHandler) Document(w http.ResponseWriter, r *http.Request) {
	h.rewrite(w, r, h.analysis.DocumentFile)
}

// Improve asks the reasoning service for an improved version of the file.
func (h *FilesHandler) Improve(w http.ResponseWriter, r *http.Request) {
	h.rewrite(w, r, h.analysis.ImproveFile)
}

func (h *FilesHandler) rewrite(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, fileID, userID uuid.UUID) (*services.RewriteResponse, error)) {
	userID, fileID, err := h.ids(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := fn(r.Context(), fileID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: res})
}

func (h *FilesHandler) ids(r *http.Request) (userID, fileID uuid.UUID, err error) {
	userID, err = authedUserID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	fileID, err = pathUUID(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, fileID, nil
}
