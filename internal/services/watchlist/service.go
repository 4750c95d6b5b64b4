// Package watchlist manages watched symbols and their price alerts
package watchlist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
	"github.com/hyuoka/workpal/internal/signals"
)

// Compile-time interface check
var _ interfaces.WatchlistService = (*Service)(nil)

const historyLimit = 30

// Service implements WatchlistService. mu serializes every
// read-modify-write of the watchlist and alerts collections: the
// monitor loop latches alerts concurrently with the HTTP mutations,
// and an unserialized write-back would drop whichever side lost the
// race.
type Service struct {
	storage interfaces.StorageManager
	quotes  interfaces.QuoteClient
	logger  *common.Logger
	now     func() time.Time

	mu sync.Mutex
}

// NewService creates a new watchlist service
func NewService(storage interfaces.StorageManager, quotes interfaces.QuoteClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		quotes:  quotes,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns the watchlist in stored order
func (s *Service) List(ctx context.Context) ([]models.WatchedSymbol, error) {
	var list []models.WatchedSymbol
	if err := s.storage.UserDataStore().GetCollection(ctx, models.CollectionWatchlist, &list); err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	return list, nil
}

// Add registers a new symbol and fetches its initial quote
func (s *Service) Add(ctx context.Context, symbol string) (*models.WatchedSymbol, error) {
	symbol = models.CanonicalSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, entry := range list {
		if entry.Symbol == symbol {
			return nil, fmt.Errorf("symbol '%s' is already watched", symbol)
		}
	}

	// fetch before taking the lock: the quote call is a network round
	// trip and must not block concurrent mutations
	entry, err := s.fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// re-read and re-check: another writer may have landed during the
	// fetch
	list, err = s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range list {
		if existing.Symbol == symbol {
			return nil, fmt.Errorf("symbol '%s' is already watched", symbol)
		}
	}

	list = append(list, *entry)
	if err := s.storage.UserDataStore().PutCollection(ctx, models.CollectionWatchlist, list); err != nil {
		return nil, fmt.Errorf("failed to save watchlist: %w", err)
	}

	s.logger.Info().Str("symbol", symbol).Bool("simulated", entry.Simulated).Msg("Symbol added to watchlist")
	return entry, nil
}

// Remove deletes a symbol and every alert referencing it
func (s *Service) Remove(ctx context.Context, symbol string) error {
	symbol = models.CanonicalSymbol(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := list[:0]
	found := false
	for _, entry := range list {
		if entry.Symbol == symbol {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return fmt.Errorf("symbol '%s' not found in watchlist", symbol)
	}

	if err := s.storage.UserDataStore().PutCollection(ctx, models.CollectionWatchlist, kept); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}

	// cascade: drop the symbol's alerts so none are left orphaned
	alerts, err := s.ListAlerts(ctx)
	if err != nil {
		return err
	}
	keptAlerts := alerts[:0]
	removed := 0
	for _, alert := range alerts {
		if alert.Symbol == symbol {
			removed++
			continue
		}
		keptAlerts = append(keptAlerts, alert)
	}
	if removed > 0 {
		if err := s.storage.UserDataStore().PutCollection(ctx, models.CollectionAlerts, keptAlerts); err != nil {
			return fmt.Errorf("failed to save alerts: %w", err)
		}
	}

	s.logger.Info().Str("symbol", symbol).Int("alerts_removed", removed).Msg("Symbol removed from watchlist")
	return nil
}

// Refresh updates quote, history and MA25 for one symbol
func (s *Service) Refresh(ctx context.Context, symbol string) (*models.WatchedSymbol, error) {
	symbol = models.CanonicalSymbol(symbol)

	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	watched := false
	for i := range list {
		if list[i].Symbol == symbol {
			watched = true
			break
		}
	}
	if !watched {
		return nil, fmt.Errorf("symbol '%s' not found in watchlist", symbol)
	}

	updated, err := s.fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// merge into the current list, not the one read before the fetch:
	// a symbol added meanwhile must survive the write-back
	list, err = s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Symbol != symbol {
			continue
		}
		updated.Name = list[i].Name
		list[i] = *updated
		if err := s.storage.UserDataStore().PutCollection(ctx, models.CollectionWatchlist, list); err != nil {
			return nil, fmt.Errorf("failed to save watchlist: %w", err)
		}
		return updated, nil
	}
	// removed while the fetch was in flight
	return nil, fmt.Errorf("symbol '%s' not found in watchlist", symbol)
}

// RefreshAll updates every watched symbol. A single symbol's fetch
// failure is logged and skipped, not fatal.
func (s *Service) RefreshAll(ctx context.Context) ([]models.WatchedSymbol, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	fetched := make(map[string]*models.WatchedSymbol, len(list))
	for i := range list {
		updated, err := s.fetch(ctx, list[i].Symbol)
		if err != nil {
			s.logger.Warn().Str("symbol", list[i].Symbol).Err(err).Msg("Refresh failed, keeping stale quote")
			continue
		}
		fetched[list[i].Symbol] = updated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// merge into the current list so adds and removes that landed
	// during the fetches are preserved
	list, err = s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		updated, ok := fetched[list[i].Symbol]
		if !ok {
			continue
		}
		updated.Name = list[i].Name
		list[i] = *updated
	}

	if err := s.storage.UserDataStore().PutCollection(ctx, models.CollectionWatchlist, list); err != nil {
		return nil, fmt.Errorf("failed to save watchlist: %w", err)
	}
	return list, nil
}

// Search proxies a symbol search against the quote API
func (s *Service) Search(ctx context.Context, keywords string) ([]models.SymbolMatch, error) {
	if !s.quotes.Configured() {
		return []models.SymbolMatch{}, nil
	}
	matches, err := s.quotes.SearchSymbols(ctx, keywords)
	if err != nil {
		return nil, fmt.Errorf("symbol search failed: %w", err)
	}
	return matches, nil
}

// fetch builds a fresh WatchedSymbol from the quote API, falling back
// to a simulated random walk when no API key is configured.
func (s *Service) fetch(ctx context.Context, symbol string) (*models.WatchedSymbol, error) {
	if !s.quotes.Configured() {
		return s.simulate(symbol), nil
	}

	quote, err := s.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for '%s': %w", symbol, err)
	}

	history, err := s.quotes.GetDailyHistory(ctx, symbol, historyLimit)
	if err != nil {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("History fetch failed, MA25 unavailable")
		history = nil
	}

	return &models.WatchedSymbol{
		Symbol:        symbol,
		Price:         quote.Price,
		Change:        quote.Change,
		ChangePercent: quote.ChangePercent,
		History:       history,
		MA25:          signals.MA25(history),
		UpdatedAt:     s.now(),
	}, nil
}

// --- alerts ---

// ListAlerts returns all alerts
func (s *Service) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	var alerts []models.Alert
	if err := s.storage.UserDataStore().GetCollection(ctx, models.CollectionAlerts, &alerts); err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}
	return alerts, nil
}

// AddAlert creates an active alert on a watched symbol
func (s *Service) AddAlert(ctx context.Context, symbol, kind string, target float64) (*models.Alert, error) {
	symbol = models.CanonicalSymbol(symbol)
	if !models.ValidAlertKind(kind) {
		return nil, fmt.Errorf("unknown alert kind '%s'", kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	watched := false
	for _, entry := range list {
		if entry.Symbol == symbol {
			watched = true
			break
		}
	}
	if !watched {
		return nil, fmt.Errorf("symbol '%s' is not watched", symbol)
	}

	alert := models.Alert{
		ID:        uuid.New().String(),
		Symbol:    symbol,
		Kind:      kind,
		Target:    target,
		Active:    true,
		CreatedAt: s.now(),
	}

	alerts, err := s.ListAlerts(ctx)
	if err != nil {
		return nil, err
	}
	alerts = append(alerts, alert)
	if err := s.storage.UserDataStore().PutCollection(ctx, models.CollectionAlerts, alerts); err != nil {
		return nil, fmt.Errorf("failed to save alerts: %w", err)
	}

	s.logger.Info().Str("symbol", symbol).Str("kind", kind).Float64("target", target).Msg("Alert added")
	return &alert, nil
}

// ToggleAlert flips an alert's Active flag, rearming a fired alert.
func (s *Service) ToggleAlert(ctx context.Context, id string) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts, err := s.ListAlerts(ctx)
	if err != nil {
		return nil, err
	}

	for i := range alerts {
		if alerts[i].ID != id {
			continue
		}
		alerts[i].Active = !alerts[i].Active
		if alerts[i].Active {
			alerts[i].TriggeredAt = nil
		}
		if err := s.storage.UserDataStore().PutCollection(ctx, models.CollectionAlerts, alerts); err != nil {
			return nil, fmt.Errorf("failed to save alerts: %w", err)
		}
		return &alerts[i], nil
	}
	return nil, fmt.Errorf("alert '%s' not found", id)
}

// RemoveAlert deletes an alert by ID
func (s *Service) RemoveAlert(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts, err := s.ListAlerts(ctx)
	if err != nil {
		return err
	}

	kept := alerts[:0]
	found := false
	for _, alert := range alerts {
		if alert.ID == id {
			found = true
			continue
		}
		kept = append(kept, alert)
	}
	if !found {
		return fmt.Errorf("alert '%s' not found", id)
	}

	if err := s.storage.UserDataStore().PutCollection(ctx, models.CollectionAlerts, kept); err != nil {
		return fmt.Errorf("failed to save alerts: %w", err)
	}
	return nil
}

// LatchAlerts flips the given fired alerts off. The collection is
// re-read under the service lock so an alert added or toggled after
// the caller's evaluation snapshot is never overwritten.
func (s *Service) LatchAlerts(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alerts, err := s.ListAlerts(ctx)
	if err != nil {
		return err
	}

	fired := make(map[string]bool, len(ids))
	for _, id := range ids {
		fired[id] = true
	}

	now := s.now()
	changed := false
	for i := range alerts {
		if !fired[alerts[i].ID] || !alerts[i].Active {
			continue
		}
		alerts[i].Active = false
		alerts[i].TriggeredAt = &now
		changed = true
	}
	if !changed {
		return nil
	}

	if err := s.storage.UserDataStore().PutCollection(ctx, models.CollectionAlerts, alerts); err != nil {
		return fmt.Errorf("failed to save alerts: %w", err)
	}
	return nil
}
