package server

import (
	"fmt"
	"net/http"
)

// --- Finance handlers ---

func (s *Server) handleFinance(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ledger, err := s.app.FinanceService.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing transactions: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"transactions": ledger})

	case http.MethodPost:
		var req struct {
			Date   string `json:"date"`
			Item   string `json:"item"`
			Amount int64  `json:"amount"`
			Kind   string `json:"kind"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}

		entry, err := s.app.FinanceService.Add(r.Context(), req.Date, req.Item, req.Amount, req.Kind)
		if err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("Error adding transaction: %v", err))
			return
		}
		WriteJSON(w, http.StatusCreated, entry)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleFinanceDelete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := PathParam(r, "/api/finance/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "transaction ID is required in path")
		return
	}

	if err := s.app.FinanceService.Delete(r.Context(), id); err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Error deleting transaction: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
}

func (s *Server) handleFinanceSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := s.app.FinanceService.Summary(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error building summary: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) handleFinanceSync(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	sync, err := s.app.FinanceService.SyncFromDrive(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Error importing ledger: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, sync)
}
