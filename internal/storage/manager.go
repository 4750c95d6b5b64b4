// Package storage provides the top-level StorageManager that coordinates
// the 2 storage areas: internaldb and userdb.
package storage

import (
	"fmt"
	"sync"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
	"github.com/hyuoka/workpal/internal/storage/internaldb"
	"github.com/hyuoka/workpal/internal/storage/userdb"
)

// Manager implements interfaces.StorageManager using 2 storage areas.
type Manager struct {
	internal *internaldb.Store
	user     *userdb.Store
	logger   *common.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]chan models.ChangeEvent
}

// NewManager creates a new StorageManager with the 2 storage areas.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	internalStore, err := internaldb.NewStore(logger, config.Storage.Internal.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create internal store: %w", err)
	}

	userStore, err := userdb.NewStore(logger, config.Storage.User.Path)
	if err != nil {
		internalStore.Close()
		return nil, fmt.Errorf("failed to create user store: %w", err)
	}

	m := &Manager{
		internal: internalStore,
		user:     userStore,
		logger:   logger,
		subs:     make(map[int]chan models.ChangeEvent),
	}
	userStore.SetOnChange(m.publish)

	logger.Info().
		Str("internal", config.Storage.Internal.Path).
		Str("user", config.Storage.User.Path).
		Msg("Storage manager initialized (2 areas)")

	return m, nil
}

func (m *Manager) InternalStore() interfaces.InternalStore {
	return m.internal
}

func (m *Manager) UserDataStore() interfaces.UserDataStore {
	return m.user
}

// Subscribe registers a change listener. The returned cancel func must
// be called to release the subscription.
func (m *Manager) Subscribe() (<-chan models.ChangeEvent, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan models.ChangeEvent, 16)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if existing, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}

// publish fans a change event out to all subscribers. A subscriber with
// a full buffer misses the event rather than blocking the writer.
func (m *Manager) publish(event models.ChangeEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (m *Manager) Close() error {
	m.mu.Lock()
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	m.mu.Unlock()

	var firstErr error
	if err := m.internal.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := m.user.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

var _ interfaces.StorageManager = (*Manager)(nil)
