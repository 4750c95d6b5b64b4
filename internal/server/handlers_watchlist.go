package server

import (
	"fmt"
	"net/http"
	"strings"
)

// --- Watchlist handlers ---

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.app.WatchlistService.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing watchlist: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"symbols": list})

	case http.MethodPost:
		var req struct {
			Symbol string `json:"symbol"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if req.Symbol == "" {
			WriteError(w, http.StatusBadRequest, "symbol is required")
			return
		}

		entry, err := s.app.WatchlistService.Add(r.Context(), req.Symbol)
		if err != nil {
			if strings.Contains(err.Error(), "already watched") {
				WriteError(w, http.StatusConflict, err.Error())
				return
			}
			WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error adding symbol: %v", err))
			return
		}
		WriteJSON(w, http.StatusCreated, entry)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if err := s.app.WatchlistService.Remove(r.Context(), symbol); err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Error removing symbol: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "removed"})
}

func (s *Server) handleWatchlistRefresh(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	entry, err := s.app.WatchlistService.Refresh(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error refreshing symbol: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, entry)
}

func (s *Server) handleWatchlistRefreshAll(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	list, err := s.app.WatchlistService.RefreshAll(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error refreshing watchlist: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"symbols": list})
}

func (s *Server) handleWatchlistSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	keywords := r.URL.Query().Get("q")
	if keywords == "" {
		WriteError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	matches, err := s.app.WatchlistService.Search(r.Context(), keywords)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error searching symbols: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

func (s *Server) handleWatchlistChart(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.WatchlistService.Chart(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Error rendering chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// --- Alert handlers ---

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		alerts, err := s.app.WatchlistService.ListAlerts(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing alerts: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})

	case http.MethodPost:
		var req struct {
			Symbol string  `json:"symbol"`
			Kind   string  `json:"kind"`
			Target float64 `json:"target"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}

		alert, err := s.app.WatchlistService.AddAlert(r.Context(), req.Symbol, req.Kind, req.Target)
		if err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Error adding alert: %v", err))
			return
		}
		WriteJSON(w, http.StatusCreated, alert)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleAlertToggle(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	alert, err := s.app.WatchlistService.ToggleAlert(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Error toggling alert: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, alert)
}

func (s *Server) handleAlertRemove(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if err := s.app.WatchlistService.RemoveAlert(r.Context(), id); err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Error removing alert: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "removed"})
}
