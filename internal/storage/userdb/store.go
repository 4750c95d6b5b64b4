// Package userdb implements UserDataStore using BadgerHold.
// Each named collection is persisted whole as one JSON blob; mutations
// rewrite the blob and bump its version.
package userdb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/models"
)

// Store implements interfaces.UserDataStore using BadgerHold.
type Store struct {
	db       *badgerhold.Store
	logger   *common.Logger
	onChange func(models.ChangeEvent)
}

// NewStore creates a new UserDataStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create user db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open user db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("UserDB opened")
	return &Store{db: db, logger: logger}, nil
}

// SetOnChange registers a hook invoked after every collection write.
// Used by the storage manager to publish change events.
func (s *Store) SetOnChange(fn func(models.ChangeEvent)) {
	s.onChange = fn
}

// GetCollection unmarshals the named collection into out, which must be
// a non-nil pointer to a slice. A missing or malformed blob yields the
// empty slice rather than an error.
func (s *Store) GetCollection(_ context.Context, name string, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("collection target must be a pointer to a slice, got %T", out)
	}

	resetSlice := func() {
		rv.Elem().Set(reflect.MakeSlice(rv.Elem().Type(), 0, 0))
	}

	var record models.CollectionRecord
	if err := s.db.Get(name, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			resetSlice()
			return nil
		}
		return fmt.Errorf("failed to get collection '%s': %w", name, err)
	}

	if err := json.Unmarshal(record.Data, out); err != nil {
		s.logger.Warn().Str("collection", name).Err(err).Msg("Malformed collection blob, treating as empty")
		resetSlice()
		return nil
	}
	return nil
}

// PutCollection replaces the named collection and bumps its version.
func (s *Store) PutCollection(_ context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal collection '%s': %w", name, err)
	}

	version := 1
	var existing models.CollectionRecord
	if err := s.db.Get(name, &existing); err == nil {
		version = existing.Version + 1
	}

	record := models.CollectionRecord{
		Name:     name,
		Data:     data,
		Version:  version,
		DateTime: time.Now(),
	}
	if err := s.db.Upsert(name, &record); err != nil {
		return fmt.Errorf("failed to put collection '%s': %w", name, err)
	}

	s.logger.Debug().Str("collection", name).Int("version", version).Msg("Collection saved")

	if s.onChange != nil {
		s.onChange(models.ChangeEvent{
			Collection: name,
			Version:    version,
			DateTime:   record.DateTime,
		})
	}
	return nil
}

func (s *Store) DeleteCollection(_ context.Context, name string) error {
	if err := s.db.Delete(name, models.CollectionRecord{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete collection '%s': %w", name, err)
	}
	if s.onChange != nil {
		s.onChange(models.ChangeEvent{Collection: name, DateTime: time.Now()})
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
