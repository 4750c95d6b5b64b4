package server

import (
	"net/http"
	"strings"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Auth
	mux.HandleFunc("/api/auth/signin", s.handleSignIn)
	mux.HandleFunc("/api/auth/signout", s.handleSignOut)
	mux.HandleFunc("/api/auth/status", s.handleAuthStatus)

	// Agenda
	mux.HandleFunc("/api/agenda", s.handleAgendaFeed)
	mux.HandleFunc("/api/agenda/due-today", s.handleAgendaDueToday)
	mux.HandleFunc("/api/agenda/digest", s.handleAgendaDigest)
	mux.HandleFunc("/api/agenda/events/", s.handleAgendaEventDelete)
	mux.HandleFunc("/api/agenda/events", s.handleAgendaEventCreate)
	mux.HandleFunc("/api/agenda/tasks/", s.routeAgendaTasks)
	mux.HandleFunc("/api/agenda/tasks", s.handleAgendaTaskCreate)

	// Watchlist
	mux.HandleFunc("/api/watchlist/search", s.handleWatchlistSearch)
	mux.HandleFunc("/api/watchlist/refresh", s.handleWatchlistRefreshAll)
	mux.HandleFunc("/api/watchlist/", s.routeWatchlistSymbol)
	mux.HandleFunc("/api/watchlist", s.handleWatchlist)

	// Alerts
	mux.HandleFunc("/api/alerts/", s.routeAlerts)
	mux.HandleFunc("/api/alerts", s.handleAlerts)

	// Monitor
	mux.HandleFunc("/api/monitor/run", s.handleMonitorRun)
	mux.HandleFunc("/api/monitor", s.handleMonitorStatus)

	// Finance
	mux.HandleFunc("/api/finance/summary", s.handleFinanceSummary)
	mux.HandleFunc("/api/finance/sync", s.handleFinanceSync)
	mux.HandleFunc("/api/finance/", s.handleFinanceDelete)
	mux.HandleFunc("/api/finance", s.handleFinance)

	// Documents
	mux.HandleFunc("/api/documents/points", s.handleDocumentsPoints)
	mux.HandleFunc("/api/documents/attendance", s.handleDocumentsAttendance)
	mux.HandleFunc("/api/documents/recent", s.handleDocumentsRecent)

	// Minutes
	mux.HandleFunc("/api/minutes/templates", s.handleMinutesTemplates)
	mux.HandleFunc("/api/minutes/", s.routeMinutes)

	// Optional static frontend
	if dir := s.app.Config.Server.StaticDir; dir != "" {
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	}
}

// routeAgendaTasks dispatches /api/agenda/tasks/{listID}/{taskID}[/complete].
func (s *Server) routeAgendaTasks(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/agenda/tasks/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		WriteError(w, http.StatusBadRequest, "task list and task ID are required in path")
		return
	}
	listID, taskID := parts[0], parts[1]

	if len(parts) == 3 && parts[2] == "complete" {
		s.handleAgendaTaskComplete(w, r, listID, taskID)
		return
	}
	if len(parts) == 2 {
		s.handleAgendaTaskDelete(w, r, listID, taskID)
		return
	}
	WriteError(w, http.StatusNotFound, "Not found")
}

// routeWatchlistSymbol dispatches /api/watchlist/{symbol}[/refresh|/chart].
func (s *Server) routeWatchlistSymbol(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/watchlist/")
	parts := strings.Split(path, "/")
	if parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}
	symbol := parts[0]

	if len(parts) == 1 {
		s.handleWatchlistRemove(w, r, symbol)
		return
	}
	switch parts[1] {
	case "refresh":
		s.handleWatchlistRefresh(w, r, symbol)
	case "chart":
		s.handleWatchlistChart(w, r, symbol)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeAlerts dispatches /api/alerts/{id}[/toggle].
func (s *Server) routeAlerts(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/alerts/")
	parts := strings.Split(path, "/")
	if parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "alert ID is required in path")
		return
	}
	id := parts[0]

	if len(parts) == 2 && parts[1] == "toggle" {
		s.handleAlertToggle(w, r, id)
		return
	}
	if len(parts) == 1 {
		s.handleAlertRemove(w, r, id)
		return
	}
	WriteError(w, http.StatusNotFound, "Not found")
}

// routeMinutes dispatches /api/minutes/{id}/{compose-url|draft|subtasks}.
func (s *Server) routeMinutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/minutes/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	templateID := parts[0]

	switch parts[1] {
	case "compose-url":
		s.handleMinutesComposeURL(w, r, templateID)
	case "draft":
		s.handleMinutesDraft(w, r, templateID)
	case "subtasks":
		s.handleMinutesSubtasks(w, r, templateID)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}
