// Package models defines data structures for Workpal
package models

import (
	"strings"
	"time"
)

// WatchedSymbol holds a watchlist entry with its latest quote snapshot.
type WatchedSymbol struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name,omitempty"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`         // absolute change from previous close
	ChangePercent float64   `json:"change_percent"` // percentage change from previous close
	History       []float64 `json:"history"`        // daily closes, most-recent-last, max 30
	MA25          *float64  `json:"ma25,omitempty"` // nil until 25 samples accumulate
	Simulated     bool      `json:"simulated,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SymbolMatch is a single symbol search result.
type SymbolMatch struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Region   string `json:"region"`
	Currency string `json:"currency"`
}

// Alert kinds evaluated by the monitor loop.
const (
	AlertPriceAbove = "price_above"
	AlertPriceBelow = "price_below"
	AlertMA25Touch  = "ma25_touch"
)

// Alert is a one-shot price condition on a watched symbol.
// Active flips to false exactly once when the condition first holds.
type Alert struct {
	ID          string     `json:"id"`
	Symbol      string     `json:"symbol"`
	Kind        string     `json:"kind"`
	Target      float64    `json:"target,omitempty"` // unused for ma25_touch
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
}

// ValidAlertKind reports whether kind is one of the supported alert kinds.
func ValidAlertKind(kind string) bool {
	switch kind {
	case AlertPriceAbove, AlertPriceBelow, AlertMA25Touch:
		return true
	}
	return false
}

// CanonicalSymbol normalizes a user-entered ticker for storage and lookup.
func CanonicalSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
