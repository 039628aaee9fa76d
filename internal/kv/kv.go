// Package kv is the device-local string key-value store. The memory store
// keeps whole serialized documents under a handful of fixed keys.
package kv

import (
	"context"
	"fmt"
)

// KV is a string key-value store.
type KV interface {
	// Get returns the value under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Close releases the underlying database.
	Close() error
}

// Drivers.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Open opens the store for the named driver at path.
func Open(driver, path string) (KV, error) {
	switch driver {
	case DriverSQLite, "":
		return NewSQLite(path)
	case DriverBadger:
		return NewBadger(path)
	default:
		return nil, fmt.Errorf("unknown kv driver %q (valid: sqlite, badger)", driver)
	}
}
