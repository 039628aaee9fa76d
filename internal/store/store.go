// Package store owns the day memory records and the cycle configuration.
// Every mutation goes through Store.Update, which merges a Patch into the
// day's record by a per-field policy and hands the result to the active
// Backend.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/cycle-journal/internal/model"
)

var (
	// ErrStorageUnavailable wraps failures of the device-local store. The
	// in-memory copy of the data stays valid for the session.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrRemoteWriteFailed means a write was queued locally instead of
	// reaching the remote log. Sync retries it.
	ErrRemoteWriteFailed = errors.New("remote write failed")

	// ErrRemoteReadFailed means the remote log could not be read.
	ErrRemoteReadFailed = errors.New("remote read failed")

	// ErrRetriesExhausted means a queued write used up its attempts and
	// blocks the queue until retries are reset.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrEmptyEntry is returned for blank journal or highlight text.
	ErrEmptyEntry = errors.New("entry text is required")
)

// Backend names.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Backend persists day records and the cycle configuration. A Store is
// bound to one Backend for its whole life; switching backends is a cutover.
type Backend interface {
	// Name identifies the backend ("local" or "remote").
	Name() string

	// Lookup returns the record for day, or nil when nothing is stored.
	Lookup(ctx context.Context, day string) (*model.DayMemory, error)

	// Days returns every stored record, ascending by date.
	Days(ctx context.Context) ([]*model.DayMemory, error)

	// Commit persists a merged record. p is the change that produced merged
	// from the previous record, with toggles already resolved.
	Commit(ctx context.Context, day string, p Patch, merged *model.DayMemory) error

	// LoadConfig returns the saved cycle configuration, or nil.
	LoadConfig(ctx context.Context) (*model.CycleConfig, error)

	// SaveConfig persists cfg.
	SaveConfig(ctx context.Context, cfg model.CycleConfig) error
}

// Syncer is implemented by backends that queue failed writes.
type Syncer interface {
	// Sync retries queued writes in order and returns how many were sent.
	Sync(ctx context.Context) (int, error)

	// Pending returns the queued writes.
	Pending(ctx context.Context) ([]Op, error)

	// ResetRetries clears the attempt counters of queued writes.
	ResetRetries(ctx context.Context) error
}
