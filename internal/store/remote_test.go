package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/cycle-journal/internal/model"
	"github.com/rcliao/cycle-journal/internal/remote"
)

func TestRemoteLatestMoodWins(t *testing.T) {
	ctx := context.Background()
	f := newRemoteStore(t)

	_, err := f.store.SetMood(ctx, "Good", nil, nil)
	require.NoError(t, err)
	_, err = f.store.SetMood(ctx, "Low", intPtr(2), []string{"tired"})
	require.NoError(t, err)

	d, err := f.store.GetToday(ctx)
	require.NoError(t, err)
	require.NotNil(t, d.Mood)
	assert.Equal(t, "Low", d.Mood.Value)
	assert.Equal(t, []string{"tired"}, d.Mood.Tags)
	assert.Equal(t, 2, f.mem.Len(), "both moods stay in the log")
}

func TestRemoteAppendsAndToggles(t *testing.T) {
	ctx := context.Background()
	f := newRemoteStore(t)

	_, err := f.store.AddJournalEntry(ctx, "one")
	require.NoError(t, err)
	_, err = f.store.AddJournalEntry(ctx, "two")
	require.NoError(t, err)
	_, err = f.store.ToggleActivity(ctx, "2024-01-09")
	require.NoError(t, err)
	_, err = f.store.ToggleActivity(ctx, "2024-01-09")
	require.NoError(t, err)

	d, err := f.store.Lookup(ctx, "2024-01-10")
	require.NoError(t, err)
	require.Len(t, d.Journal, 2)
	assert.Equal(t, "one", d.Journal[0].Text)
	assert.Equal(t, "two", d.Journal[1].Text)

	activity, _, err := f.store.Sets(ctx)
	require.NoError(t, err)
	assert.False(t, activity["2024-01-09"])

	entries, err := f.mem.QueryAll(ctx, f.userID, remote.TypeActivity)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.JSONEq(t, `{"day":"2024-01-09","active":true}`, string(entries[0].Payload))
	assert.JSONEq(t, `{"day":"2024-01-09","active":false}`, string(entries[1].Payload))
}

func TestRemoteEmptyDayIsNotWritten(t *testing.T) {
	ctx := context.Background()
	f := newRemoteStore(t)

	d, err := f.store.GetToday(ctx)
	require.NoError(t, err)
	assert.True(t, d.IsEmpty())
	assert.Zero(t, f.mem.Len())
}

func TestRemoteWriteFailureIsQueued(t *testing.T) {
	ctx := context.Background()
	f := newRemoteStore(t)
	f.log.failInsert = true

	d, err := f.store.AddJournalEntry(ctx, "one")
	assert.ErrorIs(t, err, ErrRemoteWriteFailed)
	require.NotNil(t, d)
	_, err = f.store.AddJournalEntry(ctx, "two")
	assert.ErrorIs(t, err, ErrRemoteWriteFailed)

	pending, err := f.store.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, 2, pending[0].Attempts, "the head of the queue is retried first")
	assert.Zero(t, pending[1].Attempts, "second write did not jump the queue")

	d, err = f.store.GetToday(ctx)
	require.NoError(t, err)
	require.Len(t, d.Journal, 2, "queued writes are visible")
	assert.Equal(t, "one", d.Journal[0].Text)

	f.log.failInsert = false
	sent, err := f.store.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	sent, err = f.store.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, 2, f.mem.Len(), "no duplicates")

	d, err = f.store.GetToday(ctx)
	require.NoError(t, err)
	assert.Len(t, d.Journal, 2)
}

func TestRemoteOutboxSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	f := newRemoteStore(t)
	f.log.failInsert = true

	_, err := f.store.LogBreathing(ctx, "box")
	require.ErrorIs(t, err, ErrRemoteWriteFailed)

	f.log.failInsert = false
	restarted := New(NewRemoteBackend(f.log, f.userID, f.local, nil, WithNow(f.clock.Now)), WithClock(f.clock))
	pending, err := restarted.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	sent, err := restarted.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, f.mem.Len())
}

func TestRemoteResendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newRemoteStore(t)

	_, err := f.store.AddJournalEntry(ctx, "landed")
	require.NoError(t, err)
	entries, err := f.mem.QueryAll(ctx, f.userID, remote.TypeJournal)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// the insert landed but the outbox was not cleared
	raw, err := json.Marshal([]Op{{ID: entries[0].ID.String(), Type: entries[0].Type, Payload: entries[0].Payload}})
	require.NoError(t, err)
	require.NoError(t, f.local.Set(ctx, KeyOutbox, string(raw)))

	restarted := New(NewRemoteBackend(f.log, f.userID, f.local, nil, WithNow(f.clock.Now)), WithClock(f.clock))
	sent, err := restarted.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, f.mem.Len())
}

func TestRemoteRetriesExhausted(t *testing.T) {
	ctx := context.Background()
	f := newRemoteStore(t, WithMaxAttempts(2))
	f.log.failInsert = true

	_, err := f.store.AddJournalEntry(ctx, "stuck")
	require.ErrorIs(t, err, ErrRemoteWriteFailed)
	_, err = f.store.Sync(ctx)
	require.ErrorIs(t, err, ErrRemoteWriteFailed)
	assert.Equal(t, 2, f.log.inserts)

	f.log.failInsert = false
	_, err = f.store.Sync(ctx)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 2, f.log.inserts, "exhausted write is not tried")

	require.NoError(t, f.store.ResetRetries(ctx))
	sent, err := f.store.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	pending, err := f.store.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRemoteReadFailure(t *testing.T) {
	ctx := context.Background()
	f := newRemoteStore(t)

	_, err := f.store.AddJournalEntry(ctx, "before outage")
	require.NoError(t, err)

	f.log.failQuery = true
	_, err = f.store.GetToday(ctx)
	assert.ErrorIs(t, err, ErrRemoteReadFailed)

	fd := f.store.Feed(ctx)
	assert.True(t, fd.Unavailable)
	assert.Empty(t, fd.Items)

	f.log.failQuery = false
	fd = f.store.Feed(ctx)
	assert.False(t, fd.Unavailable)
	assert.Len(t, fd.Items, 1)
}

func TestRemoteDayFallsBackToCreatedAt(t *testing.T) {
	ctx := context.Background()
	f := newRemoteStore(t)

	_, err := f.mem.Insert(ctx, f.userID, uuid.New(), remote.TypeJournal, json.RawMessage(`{"id":"legacy","text":"from another client"}`))
	require.NoError(t, err)

	d, err := f.store.Lookup(ctx, "2024-01-10")
	require.NoError(t, err)
	require.NotNil(t, d)
	require.Len(t, d.Journal, 1)
	assert.Equal(t, "from another client", d.Journal[0].Text)
	assert.False(t, d.Journal[0].LoggedAt.IsZero())
}

func TestRemoteEntriesAreScopedToUser(t *testing.T) {
	ctx := context.Background()
	f := newRemoteStore(t)

	_, err := f.mem.Insert(ctx, uuid.New(), uuid.New(), remote.TypeMood, json.RawMessage(`{"day":"2024-01-10","value":"Other"}`))
	require.NoError(t, err)

	d, err := f.store.Lookup(ctx, "2024-01-10")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestRemoteConfig(t *testing.T) {
	ctx := context.Background()
	f := newRemoteStore(t)

	cfg, err := f.store.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", cfg.CycleStart)

	_, err = f.store.SaveConfig(ctx, model.CycleConfig{Name: "Ana", CycleStart: "2024-01-01", CycleLengthDays: 30, PeriodDurationDays: 4})
	require.NoError(t, err)

	f.log.failInsert = true
	_, err = f.store.SaveConfig(ctx, model.CycleConfig{Name: "Ana", CycleStart: "2024-01-03", CycleLengthDays: 30, PeriodDurationDays: 4})
	assert.ErrorIs(t, err, ErrRemoteWriteFailed)

	cfg, err = f.store.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03", cfg.CycleStart, "queued profile overrides the log")
	assert.Equal(t, 30, cfg.CycleLengthDays)

	f.log.failInsert = false
	_, err = f.store.LogPeriodStart(ctx, "2024-01-08")
	require.NoError(t, err)

	cfg, err = f.store.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", cfg.CycleStart)

	profiles, err := f.mem.QueryAll(ctx, f.userID, remote.TypeProfile)
	require.NoError(t, err)
	assert.Len(t, profiles, 4, "anchored default, two saves, one period start")
}

func TestRemoteQueueSurvivesUnreadableOutbox(t *testing.T) {
	ctx := context.Background()
	f := newRemoteStore(t)
	f.log.failInsert = true

	_, err := f.store.AddJournalEntry(ctx, "queued before restart")
	require.ErrorIs(t, err, ErrRemoteWriteFailed)

	f.log.failInsert = false
	restarted := New(NewRemoteBackend(f.log, f.userID, f.local, nil, WithLocation(time.UTC), WithNow(f.clock.Now)), WithClock(f.clock))

	f.local.failGet = true
	d, err := restarted.AddJournalEntry(ctx, "during outage")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Nil(t, d)
	_, err = restarted.GetToday(ctx)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	f.local.failGet = false
	_, err = restarted.AddJournalEntry(ctx, "after restart")
	require.NoError(t, err)

	d, err = restarted.GetToday(ctx)
	require.NoError(t, err)
	require.Len(t, d.Journal, 2)
	assert.Equal(t, "queued before restart", d.Journal[0].Text)
	assert.Equal(t, "after restart", d.Journal[1].Text)

	pending, err := restarted.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, 2, f.mem.Len())
}

func TestSendHoldsWritesWhenOutboxUnreadable(t *testing.T) {
	ctx := context.Background()
	f := newRemoteStore(t)
	f.log.failInsert = true

	_, err := f.store.AddJournalEntry(ctx, "first")
	require.ErrorIs(t, err, ErrRemoteWriteFailed)

	f.log.failInsert = false
	b := NewRemoteBackend(f.log, f.userID, f.local, nil, WithLocation(time.UTC), WithNow(f.clock.Now))
	f.local.failGet = true
	err = b.Commit(ctx, "2024-01-10", Patch{Journal: []model.TextEntry{{ID: "x", Text: "second"}}}, nil)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Zero(t, f.mem.Len(), "nothing jumps ahead of the unread queue")

	f.local.failGet = false
	sent, err := b.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	entries, err := f.mem.QueryAll(ctx, f.userID, remote.TypeJournal)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Contains(t, string(entries[0].Payload), `"first"`)
	assert.Contains(t, string(entries[1].Payload), `"second"`)
}

func TestOutboxSaveNeedsLoad(t *testing.T) {
	ctx := context.Background()
	local := newTestKV(t)
	require.NoError(t, local.Set(ctx, KeyOutbox, `[{"id":"a","entry_type":"journal"}]`))

	o := &outbox{kv: local}
	assert.ErrorIs(t, o.save(ctx, nil), ErrStorageUnavailable)

	raw, ok, err := local.Get(ctx, KeyOutbox)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"a"`, "persisted queue left alone")
}
