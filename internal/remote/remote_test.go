package remote

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseLog runs the same contract against any EntryLog.
func exerciseLog(t *testing.T, log EntryLog) {
	t.Helper()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	_, err := log.Insert(ctx, alice, uuid.New(), TypeMood, json.RawMessage(`{"value":"Good"}`))
	require.NoError(t, err)
	_, err = log.Insert(ctx, alice, uuid.New(), TypeMood, json.RawMessage(`{"value":"Low"}`))
	require.NoError(t, err)
	_, err = log.Insert(ctx, alice, uuid.New(), TypeJournal, json.RawMessage(`{"text":"hi"}`))
	require.NoError(t, err)
	_, err = log.Insert(ctx, bob, uuid.New(), TypeMood, json.RawMessage(`{"value":"Great"}`))
	require.NoError(t, err)

	moods, err := log.QueryAll(ctx, alice, TypeMood)
	require.NoError(t, err)
	require.Len(t, moods, 2)
	assert.JSONEq(t, `{"value":"Good"}`, string(moods[0].Payload))
	assert.JSONEq(t, `{"value":"Low"}`, string(moods[1].Payload))
	assert.False(t, moods[0].CreatedAt.IsZero())
	assert.False(t, moods[1].CreatedAt.Before(moods[0].CreatedAt))

	none, err := log.QueryAll(ctx, bob, TypeJournal)
	require.NoError(t, err)
	assert.Empty(t, none)

	id := uuid.New()
	first, err := log.Insert(ctx, bob, id, TypeJournal, json.RawMessage(`{"text":"once"}`))
	require.NoError(t, err)
	again, err := log.Insert(ctx, bob, id, TypeJournal, json.RawMessage(`{"text":"once"}`))
	require.NoError(t, err)
	assert.True(t, first.CreatedAt.Equal(again.CreatedAt))

	journal, err := log.QueryAll(ctx, bob, TypeJournal)
	require.NoError(t, err)
	assert.Len(t, journal, 1)
}

func TestMemoryLog(t *testing.T) {
	tick := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	m := NewMemory(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	})
	exerciseLog(t, m)
	assert.Equal(t, 5, m.Len())
}

func TestMemoryLogCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemory(nil).Insert(ctx, uuid.New(), uuid.New(), TypeMood, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPostgresLog(t *testing.T) {
	url := os.Getenv("CYCLE_JOURNAL_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CYCLE_JOURNAL_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	db, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(ctx, db, nil))

	exerciseLog(t, NewPostgres(db, nil))
}
