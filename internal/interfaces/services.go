// Package interfaces defines service contracts for Workpal
package interfaces

import (
	"context"

	"github.com/hyuoka/workpal/internal/models"
)

// WatchlistService manages watched symbols and their alerts.
type WatchlistService interface {
	// List returns the watchlist in stored order
	List(ctx context.Context) ([]models.WatchedSymbol, error)

	// Add registers a new symbol and fetches its initial quote
	Add(ctx context.Context, symbol string) (*models.WatchedSymbol, error)

	// Remove deletes a symbol and every alert referencing it
	Remove(ctx context.Context, symbol string) error

	// Refresh updates quote, history and MA25 for one symbol
	Refresh(ctx context.Context, symbol string) (*models.WatchedSymbol, error)

	// RefreshAll updates every watched symbol
	RefreshAll(ctx context.Context) ([]models.WatchedSymbol, error)

	// Search proxies a symbol search against the quote API
	Search(ctx context.Context, keywords string) ([]models.SymbolMatch, error)

	// Chart renders a PNG sparkline of the symbol's close history
	Chart(ctx context.Context, symbol string) ([]byte, error)

	// Alert management
	ListAlerts(ctx context.Context) ([]models.Alert, error)
	AddAlert(ctx context.Context, symbol, kind string, target float64) (*models.Alert, error)
	ToggleAlert(ctx context.Context, id string) (*models.Alert, error)
	RemoveAlert(ctx context.Context, id string) error

	// LatchAlerts flips fired alerts off, serialized against the
	// alert mutations above so concurrent edits are never lost
	LatchAlerts(ctx context.Context, ids []string) error
}

// MonitorService runs the periodic alert evaluation loop.
type MonitorService interface {
	// Start launches the loop; repeated calls while running are no-ops
	Start()

	// Stop halts the loop and discards in-flight results
	Stop()

	// Running reports whether the loop is active
	Running() bool

	// RunCycle evaluates all active alerts once, immediately
	RunCycle(ctx context.Context) error
}

// AgendaService assembles the unified calendar+tasks feed.
type AgendaService interface {
	// Feed rebuilds and returns the agenda feed
	Feed(ctx context.Context) (*models.AgendaFeed, error)

	// DueToday returns tasks due within the current local day
	DueToday(ctx context.Context) (*models.DueToday, error)

	// Digest produces a short natural-language summary of the feed.
	// Returns empty when no digest client is configured.
	Digest(ctx context.Context) (string, error)

	// Mutations; the cached feed updates optimistically with
	// rollback-by-refetch on remote failure
	CreateEvent(ctx context.Context, summary, location string, start string) (*models.AgendaItem, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	AddTask(ctx context.Context, title, due string) (*models.AgendaItem, error)
	CompleteTask(ctx context.Context, tasklistID, taskID string) error
	DeleteTask(ctx context.Context, tasklistID, taskID string) error
}

// FinanceService manages the household ledger.
type FinanceService interface {
	// List returns transactions sorted date descending
	List(ctx context.Context) ([]models.Transaction, error)

	// Add appends a transaction; amount must be non-negative
	Add(ctx context.Context, date, item string, amount int64, kind string) (*models.Transaction, error)

	// Delete removes a transaction by ID
	Delete(ctx context.Context, id string) error

	// Summary returns month-to-date totals
	Summary(ctx context.Context) (*models.LedgerSummary, error)

	// SyncFromDrive imports the ledger workbook, replacing the stored
	// collection
	SyncFromDrive(ctx context.Context) (*models.LedgerSync, error)
}

// DocumentsService surfaces tracked Drive documents.
type DocumentsService interface {
	// Points reads training-points progress from the management workbook
	Points(ctx context.Context) (*models.PointsSummary, error)

	// Attendance finds and validates the newest roster PDF
	Attendance(ctx context.Context) (*models.AttendanceSheet, error)

	// Recent lists the most recently viewed Drive files
	Recent(ctx context.Context, limit int) ([]models.DriveFile, error)
}

// MinutesService drafts and distributes meeting minutes.
type MinutesService interface {
	// Templates returns the built-in meeting templates
	Templates(ctx context.Context) ([]models.Template, error)

	// ComposeURL builds a prefilled Gmail compose URL for the template
	ComposeURL(ctx context.Context, templateID string) (string, error)

	// CreateDraft exports the minutes document, extracts the meeting
	// date and creates a Gmail draft with the PDF attached
	CreateDraft(ctx context.Context, templateID string) (*models.MinutesDraft, error)

	// EnqueueSubtasks inserts the template's follow-up tasks
	EnqueueSubtasks(ctx context.Context, templateID string) (int, error)
}

// SessionService owns sign-in state and the monitor lifecycle.
type SessionService interface {
	// SignIn validates the Google token, persists the session and
	// starts the monitor loop. Returns the minted server JWT.
	SignIn(ctx context.Context, accessToken string) (string, *models.Profile, error)

	// SignOut clears the session and stops the monitor loop
	SignOut(ctx context.Context) error

	// Status reports current sign-in state
	Status(ctx context.Context) (*models.SessionStatus, error)
}
