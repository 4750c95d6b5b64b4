package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Internal.Path = filepath.Join(dir, "internal")
	cfg.Storage.User.Path = filepath.Join(dir, "user")

	m, err := NewManager(common.NewSilentLogger(), cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestSubscribe_ReceivesCollectionWrites(t *testing.T) {
	m := newTestManager(t)
	ch, cancel := m.Subscribe()
	defer cancel()

	err := m.UserDataStore().PutCollection(context.Background(), models.CollectionWatchlist,
		[]models.WatchedSymbol{{Symbol: "AAPL"}})
	if err != nil {
		t.Fatalf("PutCollection: %v", err)
	}

	select {
	case event := <-ch:
		if event.Collection != models.CollectionWatchlist {
			t.Errorf("expected watchlist event, got %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestSubscribe_CancelStopsDelivery(t *testing.T) {
	m := newTestManager(t)
	ch, cancel := m.Subscribe()
	cancel()

	// channel is closed; a closed receive yields the zero value
	if _, ok := <-ch; ok {
		t.Error("expected closed channel after cancel")
	}

	// writes after cancel must not panic
	err := m.UserDataStore().PutCollection(context.Background(), models.CollectionAlerts, []models.Alert{})
	if err != nil {
		t.Fatalf("PutCollection after cancel: %v", err)
	}
}

func TestSubscribe_SlowSubscriberMissesInsteadOfBlocking(t *testing.T) {
	m := newTestManager(t)
	ch, cancel := m.Subscribe()
	defer cancel()

	// overflow the buffer; writes must all return promptly
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 40; i++ {
			_ = m.UserDataStore().PutCollection(context.Background(), models.CollectionLedger, []models.Transaction{})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("writes blocked on slow subscriber")
	}

	// buffered events are still readable
	if event := <-ch; event.Collection != models.CollectionLedger {
		t.Errorf("unexpected event: %+v", event)
	}
}
