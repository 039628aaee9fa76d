package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/cycle-journal/internal/kv"
	"github.com/rcliao/cycle-journal/internal/remote"
)

var errDown = errors.New("connection refused")

// stepClock advances one minute per reading.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock(start string) *stepClock {
	t, _ := time.Parse(time.RFC3339, start)
	return &stepClock{t: t}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

// flakyKV wraps a KV and fails on demand.
type flakyKV struct {
	kv.KV
	failGet bool
	failSet bool
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errDown
	}
	return f.KV.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errDown
	}
	return f.KV.Set(ctx, key, value)
}

// flakyLog wraps an EntryLog and fails on demand.
type flakyLog struct {
	remote.EntryLog
	failInsert bool
	failQuery  bool
	inserts    int
}

func (f *flakyLog) Insert(ctx context.Context, userID, id uuid.UUID, entryType string, payload json.RawMessage) (remote.Entry, error) {
	f.inserts++
	if f.failInsert {
		return remote.Entry{}, errDown
	}
	return f.EntryLog.Insert(ctx, userID, id, entryType, payload)
}

func (f *flakyLog) QueryAll(ctx context.Context, userID uuid.UUID, entryType string) ([]remote.Entry, error) {
	if f.failQuery {
		return nil, errDown
	}
	return f.EntryLog.QueryAll(ctx, userID, entryType)
}

func newTestKV(t *testing.T) *flakyKV {
	t.Helper()
	s, err := kv.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return &flakyKV{KV: s}
}

func newLocalStore(t *testing.T) (*Store, *flakyKV, *stepClock) {
	t.Helper()
	local := newTestKV(t)
	clk := newStepClock("2024-01-10T08:00:00Z")
	return New(NewLocalBackend(local, nil), WithClock(clk)), local, clk
}

type remoteFixture struct {
	store  *Store
	log    *flakyLog
	mem    *remote.Memory
	local  *flakyKV
	userID uuid.UUID
	clock  *stepClock
}

func newRemoteStore(t *testing.T, opts ...RemoteOption) *remoteFixture {
	t.Helper()
	clk := newStepClock("2024-01-10T08:00:00Z")
	mem := remote.NewMemory(clk.Now)
	log := &flakyLog{EntryLog: mem}
	local := newTestKV(t)
	userID := uuid.New()

	opts = append([]RemoteOption{WithLocation(time.UTC), WithNow(clk.Now)}, opts...)
	backend := NewRemoteBackend(log, userID, local, nil, opts...)
	return &remoteFixture{
		store:  New(backend, WithClock(clk)),
		log:    log,
		mem:    mem,
		local:  local,
		userID: userID,
		clock:  clk,
	}
}
