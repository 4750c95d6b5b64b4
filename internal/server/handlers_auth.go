package server

import (
	"fmt"
	"net/http"
)

// --- Auth handlers ---

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		AccessToken string `json:"access_token"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.AccessToken == "" {
		WriteError(w, http.StatusBadRequest, "access_token is required")
		return
	}

	token, profile, err := s.app.SessionService.SignIn(r.Context(), req.AccessToken)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, fmt.Sprintf("Sign-in failed: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token":   token,
		"profile": profile,
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.app.SessionService.SignOut(r.Context()); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Sign-out failed: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "signed_out"})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status, err := s.app.SessionService.Status(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading session: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, status)
}
