package remote

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process EntryLog. It keeps insertion order, which is also
// created_at order.
type Memory struct {
	mu      sync.Mutex
	now     func() time.Time
	entries []Entry
}

// NewMemory returns an empty log stamped by now (time.Now when nil).
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{now: now}
}

func (m *Memory) Insert(ctx context.Context, userID, id uuid.UUID, entryType string, payload json.RawMessage) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	e := Entry{
		ID:        id,
		UserID:    userID,
		Type:      entryType,
		Payload:   append(json.RawMessage(nil), payload...),
		CreatedAt: m.now().UTC(),
	}
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *Memory) QueryAll(ctx context.Context, userID uuid.UUID, entryType string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Entry
	for _, e := range m.entries {
		if e.UserID == userID && e.Type == entryType {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len returns the number of stored entries across all users.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
