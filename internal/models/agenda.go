package models

import "time"

// Agenda item sources.
const (
	AgendaSourceCalendar = "calendar"
	AgendaSourceTasks    = "tasks"
)

// AgendaItem is one row of the unified agenda feed. Items are transient:
// the feed is rebuilt from the remote services, never persisted.
type AgendaItem struct {
	ID       string    `json:"id"`
	Summary  string    `json:"summary"`
	Start    time.Time `json:"start"`
	AllDay   bool      `json:"all_day,omitempty"`
	Location string    `json:"location,omitempty"`
	Source   string    `json:"source"` // calendar or task list name
	Color    string    `json:"color,omitempty"`
	IsTask   bool      `json:"is_task"`
	ListID   string    `json:"list_id,omitempty"` // owning calendar or tasklist ID
}

// AgendaFeed is the assembled feed plus its build timestamp.
type AgendaFeed struct {
	Items   []AgendaItem `json:"items"`
	BuiltAt time.Time    `json:"built_at"`
}

// DueToday summarizes tasks due within the current local day.
type DueToday struct {
	Count   int          `json:"count"`
	Items   []AgendaItem `json:"items"`
	Message string       `json:"message,omitempty"`
}
