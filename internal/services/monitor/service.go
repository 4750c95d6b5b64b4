// Package monitor runs the periodic alert evaluation loop
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

// Compile-time interface check
var _ interfaces.MonitorService = (*Service)(nil)

const notificationTitle = "Price alert"

// Service implements MonitorService. The loop is owned by the session
// service: started on sign-in, stopped on sign-out and shutdown. All
// alert state goes through the watchlist service, whose lock
// serializes the latch against concurrent HTTP mutations.
type Service struct {
	watchlist interfaces.WatchlistService
	notifier  interfaces.Notifier // nil means notifications are skipped
	logger    *common.Logger

	interval    time.Duration
	symbolDelay time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new monitor service
func NewService(
	watchlist interfaces.WatchlistService,
	notifier interfaces.Notifier,
	config *common.MonitorConfig,
	logger *common.Logger,
) *Service {
	return &Service{
		watchlist:   watchlist,
		notifier:    notifier,
		logger:      logger,
		interval:    config.GetInterval(),
		symbolDelay: config.GetSymbolDelay(),
	}
}

// Start launches the evaluation loop. Repeated calls while running are
// no-ops.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.done)
	s.logger.Info().Dur("interval", s.interval).Msg("Alert monitor started")
}

// Stop halts the loop and waits for the current cycle to wind down.
// Results from a fetch in flight at stop time are discarded.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info().Msg("Alert monitor stopped")
}

// Running reports whether the loop is active
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Service) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// evaluate immediately on start
	s.runCycleLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycleLogged(ctx)
		}
	}
}

// runCycleLogged runs one cycle; a failed cycle is logged, never fatal,
// and the next cycle runs unconditionally.
func (s *Service) runCycleLogged(ctx context.Context) {
	if err := s.RunCycle(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Msg("Alert cycle failed")
	}
}

// RunCycle evaluates all active alerts once. Within the cycle symbols
// are fetched strictly sequentially with a fixed inter-call delay; a
// symbol whose quote is still within the freshness window is evaluated
// from its stored state without a fetch.
func (s *Service) RunCycle(ctx context.Context) error {
	list, err := s.watchlist.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load watchlist: %w", err)
	}

	fetched := 0
	for i := range list {
		symbol := list[i].Symbol

		refreshed := &list[i]
		if common.IsFresh(list[i].UpdatedAt, common.FreshnessQuote) {
			s.logger.Debug().Str("symbol", symbol).Msg("Quote still fresh, skipping fetch")
		} else {
			if fetched > 0 {
				if err := s.pause(ctx); err != nil {
					return err
				}
			}
			fetched++

			refreshed, err = s.watchlist.Refresh(ctx, symbol)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Quote fetch failed, skipping symbol")
				continue
			}
		}

		// stop may have landed while the fetch was in flight
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := s.evaluateSymbol(ctx, refreshed); err != nil {
			s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Alert evaluation failed")
		}
	}
	return nil
}

// evaluateSymbol checks the symbol's active alerts in stable order and
// latches every match through the watchlist service.
func (s *Service) evaluateSymbol(ctx context.Context, symbol *models.WatchedSymbol) error {
	alerts, err := s.watchlist.ListAlerts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load alerts: %w", err)
	}

	ordered := make([]models.Alert, 0, len(alerts))
	for i := range alerts {
		if alerts[i].Symbol == symbol.Symbol {
			ordered = append(ordered, alerts[i])
		}
	}
	if len(ordered) == 0 {
		return nil
	}
	sortForEvaluation(ordered)

	triggeredMessages := make([]string, 0, len(ordered))
	triggeredIDs := make([]string, 0, len(ordered))
	for i := range ordered {
		fired, message := evaluate(&ordered[i], symbol)
		if !fired {
			continue
		}
		triggeredIDs = append(triggeredIDs, ordered[i].ID)
		triggeredMessages = append(triggeredMessages, message)
	}
	if len(triggeredIDs) == 0 {
		return nil
	}

	// one-shot: flip Active exactly once
	if err := s.watchlist.LatchAlerts(ctx, triggeredIDs); err != nil {
		return fmt.Errorf("failed to latch alerts: %w", err)
	}

	for _, message := range triggeredMessages {
		s.logger.Info().Str("symbol", symbol.Symbol).Str("message", message).Msg("Alert triggered")
		if s.notifier == nil {
			continue
		}
		if err := s.notifier.Notify(ctx, notificationTitle, message); err != nil {
			s.logger.Warn().Err(err).Msg("Notification delivery failed")
		}
	}
	return nil
}

// pause waits the inter-symbol delay, honoring cancellation.
func (s *Service) pause(ctx context.Context) error {
	if s.symbolDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.symbolDelay):
		return nil
	}
}
