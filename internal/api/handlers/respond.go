package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/codelens/engine/internal/api/middleware"
	"github.com/codelens/engine/internal/api/types"
	appErr "github.com/codelens/engine/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, types.StatusFor(err), types.APIResponse{Success: false, Error: types.FromAppError(err)})
}

func writeErrorStr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: &types.APIError{Code: "invalid", Message: msg}})
}

// authedUserID extracts the authenticated user id from the request context.
func authedUserID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(middleware.GetUserID(r.Context()))
	if err != nil {
		return uuid.Nil, appErr.New(appErr.CodeUnauthorized, "missing or invalid user identity")
	}
	return id, nil
}

// pathUUID parses a chi URL parameter as a UUID.
func pathUUID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, appErr.New(appErr.CodeInvalid, "invalid identifier in path")
	}
	return id, nil
}
