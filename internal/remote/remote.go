// Package remote is the server-side per-user entry log. Each write appends
// one typed entry with a server-assigned created_at; reads return every entry
// of a type for one user in created_at order.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a user has no entries of a type.
var ErrNotFound = errors.New("not found")

// Entry types.
const (
	TypeMood          = "mood"
	TypeJournal       = "journal"
	TypeBreathing     = "breathing"
	TypeChatHighlight = "chat_highlight"
	TypeActivity      = "activity"
	TypePeriodStart   = "period_start"
	TypeProfile       = "profile"
)

// DayTypes are the entry types that carry day memory.
var DayTypes = []string{
	TypeMood, TypeJournal, TypeBreathing, TypeChatHighlight, TypeActivity, TypePeriodStart,
}

// Entry is one row of the log.
type Entry struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Type      string          `json:"entry_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// EntryLog is the remote collaborator, scoped per user.
type EntryLog interface {
	// Insert appends an entry under id. CreatedAt is assigned by the log.
	// Inserting an id that already exists is a no-op returning the stored
	// entry, so a retried write never lands twice.
	Insert(ctx context.Context, userID, id uuid.UUID, entryType string, payload json.RawMessage) (Entry, error)

	// QueryAll returns every entry of entryType for userID, oldest first.
	QueryAll(ctx context.Context, userID uuid.UUID, entryType string) ([]Entry, error)
}
