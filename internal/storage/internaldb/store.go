// Package internaldb implements InternalStore using BadgerHold.
// It holds credentials and system-level key-value state.
package internaldb

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/models"
)

// Store implements interfaces.InternalStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new InternalStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create internal db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open internal db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("InternalDB opened")
	return &Store{db: db, logger: logger}, nil
}

// GetSystemKV returns the value for key, or empty string when absent.
func (s *Store) GetSystemKV(_ context.Context, key string) (string, error) {
	var kv models.SystemKeyValue
	if err := s.db.Get(key, &kv); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to get system kv '%s': %w", key, err)
	}
	return kv.Value, nil
}

func (s *Store) SetSystemKV(_ context.Context, key, value string) error {
	kv := models.SystemKeyValue{
		Key:      key,
		Value:    value,
		DateTime: time.Now(),
	}
	if err := s.db.Upsert(key, &kv); err != nil {
		return fmt.Errorf("failed to set system kv '%s': %w", key, err)
	}
	s.logger.Debug().Str("key", key).Msg("System KV saved")
	return nil
}

func (s *Store) DeleteSystemKV(_ context.Context, key string) error {
	if err := s.db.Delete(key, models.SystemKeyValue{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete system kv '%s': %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
