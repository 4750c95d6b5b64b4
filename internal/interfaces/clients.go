// Package interfaces defines service contracts for Workpal
package interfaces

import (
	"context"
	"time"

	"github.com/hyuoka/workpal/internal/models"
)

// QuoteClient provides access to the market quote API.
type QuoteClient interface {
	// SearchSymbols finds tickers matching the given keywords
	SearchSymbols(ctx context.Context, keywords string) ([]models.SymbolMatch, error)

	// GetQuote retrieves the latest quote for a symbol
	GetQuote(ctx context.Context, symbol string) (*Quote, error)

	// GetDailyHistory retrieves up to limit recent daily closes,
	// chronological oldest-first
	GetDailyHistory(ctx context.Context, symbol string, limit int) ([]float64, error)

	// Configured reports whether an API key is present; when false the
	// watchlist falls back to simulated quotes
	Configured() bool
}

// Quote is a single price snapshot from the quote API.
type Quote struct {
	Symbol        string
	Price         float64
	PreviousClose float64
	Change        float64
	ChangePercent float64
	Volume        int64
	TradingDay    string
}

// TokenSource supplies the Google bearer token for workspace calls.
// Implemented by the session service so clients always see the current
// credential.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// GoogleClient provides access to the Google Workspace APIs used by the
// dashboard: Calendar, Tasks, Drive, Gmail, and Userinfo.
type GoogleClient interface {
	// Userinfo
	GetProfile(ctx context.Context) (*models.Profile, error)

	// Calendar
	ListCalendars(ctx context.Context) ([]Calendar, error)
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error)
	InsertEvent(ctx context.Context, calendarID string, event *Event) (*Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error

	// Tasks
	ListTaskLists(ctx context.Context) ([]TaskList, error)
	ListTasks(ctx context.Context, tasklistID string, showCompleted bool) ([]Task, error)
	InsertTask(ctx context.Context, tasklistID string, task *Task) (*Task, error)
	PatchTask(ctx context.Context, tasklistID, taskID string, patch *Task) (*Task, error)
	DeleteTask(ctx context.Context, tasklistID, taskID string) error

	// Drive
	SearchFiles(ctx context.Context, query DriveQuery) ([]models.DriveFile, error)
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
	ExportFile(ctx context.Context, fileID, mimeType string) ([]byte, error)
	CopyFile(ctx context.Context, fileID, name, mimeType string) (*models.DriveFile, error)
	DeleteFile(ctx context.Context, fileID string) error

	// Gmail
	CreateDraft(ctx context.Context, rawMessage string) (string, error)

	// RevokeToken invalidates the current bearer token (best-effort)
	RevokeToken(ctx context.Context) error
}

// Calendar is a calendar list entry.
type Calendar struct {
	ID      string
	Summary string
	Color   string
	Primary bool
}

// Event is a calendar event.
type Event struct {
	ID       string
	Summary  string
	Location string
	Start    time.Time
	End      time.Time
	AllDay   bool
}

// TaskList is a task list entry.
type TaskList struct {
	ID    string
	Title string
}

// Task is a single task. Due carries only date precision.
type Task struct {
	ID     string
	Title  string
	Notes  string
	Due    time.Time
	Status string // needsAction or completed
}

// DriveQuery narrows a Drive file search. Zero-value fields are omitted
// from the generated query.
type DriveQuery struct {
	Name        string // exact name match
	ParentID    string
	MimeType    string
	OrderBy     string // e.g. "modifiedTime desc", "viewedByMeTime desc"
	PageSize    int
	NamePattern string // contains match, used instead of Name when set
}

// DigestClient generates short natural-language summaries. Optional;
// a nil client disables the digest feature.
type DigestClient interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Notifier delivers alert notifications. Implementations must be
// best-effort: delivery failure never fails the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}
