package server

import (
	"fmt"
	"net/http"
	"strconv"
)

// --- Documents handlers ---

func (s *Server) handleDocumentsPoints(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	points, err := s.app.DocumentsService.Points(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error reading points: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, points)
}

func (s *Server) handleDocumentsAttendance(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	sheet, err := s.app.DocumentsService.Attendance(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error loading roster: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, sheet)
}

func (s *Server) handleDocumentsRecent(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	files, err := s.app.DocumentsService.Recent(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error listing recent files: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

// --- Minutes handlers ---

func (s *Server) handleMinutesTemplates(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	templates, err := s.app.MinutesService.Templates(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing templates: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"templates": templates})
}

func (s *Server) handleMinutesComposeURL(w http.ResponseWriter, r *http.Request, templateID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	composeURL, err := s.app.MinutesService.ComposeURL(r.Context(), templateID)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Error building compose URL: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"url": composeURL})
}

func (s *Server) handleMinutesDraft(w http.ResponseWriter, r *http.Request, templateID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	draft, err := s.app.MinutesService.CreateDraft(r.Context(), templateID)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error creating draft: %v", err))
		return
	}
	WriteJSON(w, http.StatusCreated, draft)
}

func (s *Server) handleMinutesSubtasks(w http.ResponseWriter, r *http.Request, templateID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	count, err := s.app.MinutesService.EnqueueSubtasks(r.Context(), templateID)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error enqueueing subtasks: %v", err))
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]interface{}{"enqueued": count})
}
