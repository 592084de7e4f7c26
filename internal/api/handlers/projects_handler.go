package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/codelens/engine/internal/api/types"
	"github.com/codelens/engine/internal/collector"
	"github.com/codelens/engine/internal/services"
)

// maxUploadMemory bounds the in-memory part of multipart parsing.
const maxUploadMemory = 32 << 20

type ProjectsHandler struct {
	projects services.ProjectService
	validate interface{ Struct(any) error }
}

func NewProjectsHandler(projects services.ProjectService, v interface{ Struct(any) error }) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, validate: v}
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.ProjectCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.projects.CreateProject(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: p})
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUserID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.projects.ListProjects(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items, Meta: &types.Meta{Total: int64(len(items))}})
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, projectID, err := h.ids(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.projects.GetProject(r.Context(), projectID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: p})
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, projectID, err := h.ids(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.projects.DeleteProject(r.Context(), projectID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Upload replaces the project's full file set from a multipart batch and
// returns the recomputed counters.
func (h *ProjectsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, projectID, err := h.ids(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File) == 0 {
		writeErrorStr(w, http.StatusBadRequest, "no files in upload")
		return
	}

	var records []collector.FileRecord
	for _, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			rel := cleanRelPath(fh.Filename)
			if rel == "" {
				writeErrorStr(w, http.StatusBadRequest, "file with empty or unsafe path")
				return
			}
			part, err := fh.Open()
			if err != nil {
				writeErrorStr(w, http.StatusBadRequest, "unreadable file part: "+rel)
				return
			}
			data, err := io.ReadAll(part)
			part.Close()
			if err != nil {
				writeErrorStr(w, http.StatusBadRequest, "unreadable file part: "+rel)
				return
			}
			content := string(data)
			records = append(records, collector.FileRecord{
				Path:     rel,
				Content:  content,
				Language: collector.LanguageForPath(rel),
				Size:     len(data),
				Lines:    collector.CountLines(content),
			})
		}
	}

	summary, err := h.projects.ReplaceFiles(r.Context(), projectID, userID, records)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: summary})
}

func (h *ProjectsHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	userID, projectID, err := h.ids(r)
	if err != nil {
		writeError(w, err)
		return
	}
	files, err := h.projects.ListFiles(r.Context(), projectID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: files, Meta: &types.Meta{Total: int64(len(files))}})
}

func (h *ProjectsHandler) ids(r *http.Request) (userID, projectID uuid.UUID, err error) {
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

// cleanRelPath normalizes a client-supplied file name into a safe relative
// '/'-separated path, rejecting traversal and absolute paths.
func cleanRelPath(name string) string {
	p := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if p == "." || p == "/" || strings.HasPrefix(p, "/") || strings.HasPrefix(p, "..") {
		return ""
	}
	return p
}
