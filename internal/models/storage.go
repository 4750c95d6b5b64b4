package models

import "time"

// System keys stored in the internal database.
const (
	SystemKeyAccessToken     = "google_access_token"
	SystemKeyProfile         = "profile"
	SystemKeyFinanceLastSync = "finance_last_sync"
	SystemKeyFinanceSheetURL = "finance_sheet_url"
)

// User collection names backing the dashboard cards.
const (
	CollectionWatchlist = "watchlist"
	CollectionAlerts    = "alerts"
	CollectionLedger    = "ledger"
)

// SystemKeyValue is a system configuration entry in the internal database.
type SystemKeyValue struct {
	Key      string    `json:"key" badgerhold:"key"`
	Value    string    `json:"value"`
	DateTime time.Time `json:"datetime"`
}

// CollectionRecord stores one named collection as a single JSON blob.
// Every mutation rewrites the whole blob; a malformed or missing blob
// reads back as the empty collection.
type CollectionRecord struct {
	Name     string    `json:"name" badgerhold:"key"`
	Data     []byte    `json:"data"`
	Version  int       `json:"version"`
	DateTime time.Time `json:"datetime"`
}

// ChangeEvent is published on the storage bus after a collection write.
type ChangeEvent struct {
	Collection string    `json:"collection"`
	Version    int       `json:"version"`
	DateTime   time.Time `json:"datetime"`
}
