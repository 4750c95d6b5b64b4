// Package interfaces defines service contracts for Workpal
package interfaces

import (
	"context"

	"github.com/hyuoka/workpal/internal/models"
)

// StorageManager coordinates the storage backends.
type StorageManager interface {
	InternalStore() InternalStore
	UserDataStore() UserDataStore

	// Subscribe returns a channel receiving a ChangeEvent after every
	// collection write, plus a cancel func. Slow subscribers miss
	// events rather than block writers.
	Subscribe() (<-chan models.ChangeEvent, func())

	Close() error
}

// InternalStore manages credentials and system-level KV.
type InternalStore interface {
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error
	DeleteSystemKV(ctx context.Context, key string) error

	Close() error
}

// UserDataStore manages named JSON collections, each persisted whole.
type UserDataStore interface {
	// GetCollection unmarshals the named collection into out (a pointer
	// to a slice). A missing or malformed blob yields the empty slice.
	GetCollection(ctx context.Context, name string, out any) error

	// PutCollection replaces the named collection with the marshalled
	// value and bumps its version.
	PutCollection(ctx context.Context, name string, value any) error

	DeleteCollection(ctx context.Context, name string) error

	Close() error
}
