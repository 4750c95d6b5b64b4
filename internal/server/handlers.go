package server

import (
	"net/http"
	"time"

	"github.com/hyuoka/workpal/internal/common"
)

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleConfig reports which integrations are configured, never the
// credentials themselves.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	config := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":        config.Environment,
		"quotes_configured":  config.Clients.AlphaVantage.APIKey != "",
		"digest_configured":  config.Clients.Gemini.APIKey != "",
		"webhook_configured": config.Monitor.WebhookURL != "",
		"monitor_interval":   config.Monitor.GetInterval().String(),
		"ledger_file_name":   config.Finance.LedgerFileName,
		"points_required":    config.Documents.RequiredPoints,
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// --- Monitor handlers ---

func (s *Server) handleMonitorStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"running":  s.app.MonitorService.Running(),
		"interval": s.app.Config.Monitor.GetInterval().String(),
	})
}

func (s *Server) handleMonitorRun(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.app.MonitorService.RunCycle(r.Context()); err != nil {
		WriteError(w, http.StatusInternalServerError, "Monitor cycle failed: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "completed"})
}
