package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/codelens/engine/internal/api/types"
	"github.com/codelens/engine/internal/models"
	"github.com/codelens/engine/internal/services"
)

type AuthHandler struct {
	auth     services.AuthService
	validate interface{ Struct(any) error }
}

func NewAuthHandler(auth services.AuthService, v interface{ Struct(any) error }) *AuthHandler {
	return &AuthHandler{auth: auth, validate: v}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: u})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	token, u, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: tokenPayload(token, u)})
}

// Demo mints a trial user without credentials. This is the stub flow used by
// the editor extension on first launch.
func (h *AuthHandler) Demo(w http.ResponseWriter, r *http.Request) {
	token, u, err := h.auth.Demo(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: tokenPayload(token, u)})
}

func tokenPayload(token string, u *models.User) map[string]any {
	return map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   86400,
		"user":         u,
	}
}
