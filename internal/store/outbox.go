package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcliao/cycle-journal/internal/kv"
)

// DefaultMaxAttempts bounds how often one queued write is tried.
const DefaultMaxAttempts = 5

// Op is one remote entry waiting to be written. ID doubles as the remote
// entry id, so a write that landed before a crash is not duplicated.
type Op struct {
	ID       string          `json:"id"`
	Type     string          `json:"entry_type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
	QueuedAt time.Time       `json:"queued_at"`
}

// outbox is the ordered queue of unsent ops, persisted in the local KV.
// The in-memory queue stays authoritative for the session when the KV fails.
type outbox struct {
	kv     kv.KV
	items  []Op
	loaded bool
}

func (o *outbox) load(ctx context.Context) ([]Op, error) {
	if !o.loaded {
		raw, ok, err := o.kv.Get(ctx, KeyOutbox)
		if err != nil {
			return o.snapshot(), fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		var items []Op
		if ok {
			if err := json.Unmarshal([]byte(raw), &items); err != nil {
				return o.snapshot(), fmt.Errorf("%w: decode %s: %v", ErrStorageUnavailable, KeyOutbox, err)
			}
		}
		o.items = append(items, o.items...)
		o.loaded = true
	}
	return o.snapshot(), nil
}

// hold keeps ops in memory behind the persisted queue, which could not be
// read. The next successful load merges them in order.
func (o *outbox) hold(ops []Op) {
	o.items = append(o.items, ops...)
}

// save replaces the persisted queue. It refuses to run before the queue has
// been read, so it never overwrites entries it has not seen.
func (o *outbox) save(ctx context.Context, items []Op) error {
	if !o.loaded {
		return fmt.Errorf("%w: %s not loaded", ErrStorageUnavailable, KeyOutbox)
	}
	o.items = append([]Op(nil), items...)

	raw, err := json.Marshal(o.items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyOutbox, err)
	}
	if err := o.kv.Set(ctx, KeyOutbox, string(raw)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	o.loaded = true
	return nil
}

func (o *outbox) snapshot() []Op {
	return append([]Op(nil), o.items...)
}
