package server

import (
	"fmt"
	"net/http"
)

// --- Agenda handlers ---

func (s *Server) handleAgendaFeed(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	feed, err := s.app.AgendaService.Feed(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error building agenda: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, feed)
}

func (s *Server) handleAgendaDueToday(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	due, err := s.app.AgendaService.DueToday(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error loading due tasks: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, due)
}

func (s *Server) handleAgendaDigest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	digest, err := s.app.AgendaService.Digest(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error generating digest: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"digest": digest})
}

func (s *Server) handleAgendaEventCreate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Summary  string `json:"summary"`
		Location string `json:"location"`
		Start    string `json:"start"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Summary == "" || req.Start == "" {
		WriteError(w, http.StatusBadRequest, "summary and start are required")
		return
	}

	item, err := s.app.AgendaService.CreateEvent(r.Context(), req.Summary, req.Location, req.Start)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error creating event: %v", err))
		return
	}
	WriteJSON(w, http.StatusCreated, item)
}

func (s *Server) handleAgendaEventDelete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	eventID := PathParam(r, "/api/agenda/events/", "")
	if eventID == "" {
		WriteError(w, http.StatusBadRequest, "event ID is required in path")
		return
	}
	calendarID := r.URL.Query().Get("calendar_id")
	if calendarID == "" {
		calendarID = "primary"
	}

	if err := s.app.AgendaService.DeleteEvent(r.Context(), calendarID, eventID); err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error deleting event: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
}

func (s *Server) handleAgendaTaskCreate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Title string `json:"title"`
		Due   string `json:"due"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		WriteError(w, http.StatusBadRequest, "title is required")
		return
	}

	item, err := s.app.AgendaService.AddTask(r.Context(), req.Title, req.Due)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error creating task: %v", err))
		return
	}
	WriteJSON(w, http.StatusCreated, item)
}

func (s *Server) handleAgendaTaskComplete(w http.ResponseWriter, r *http.Request, listID, taskID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.app.AgendaService.CompleteTask(r.Context(), listID, taskID); err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error completing task: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "completed"})
}

func (s *Server) handleAgendaTaskDelete(w http.ResponseWriter, r *http.Request, listID, taskID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if err := s.app.AgendaService.DeleteTask(r.Context(), listID, taskID); err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error deleting task: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
}
