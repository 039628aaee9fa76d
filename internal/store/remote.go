package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rcliao/cycle-journal/internal/kv"
	"github.com/rcliao/cycle-journal/internal/model"
	"github.com/rcliao/cycle-journal/internal/remote"
)

// entryPayload is the JSON body of every remote entry type.
type entryPayload struct {
	Day       string     `json:"day,omitempty"`
	ID        string     `json:"id,omitempty"`
	Value     string     `json:"value,omitempty"`
	Intensity *int       `json:"intensity,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	Text      string     `json:"text,omitempty"`
	Kind      string     `json:"kind,omitempty"`
	Active    *bool      `json:"active,omitempty"`
	LoggedAt  *time.Time `json:"logged_at,omitempty"`
}

// RemoteBackend stores day memory as a per-user append log. Reads replay
// the log through the merge table; a day comes from the payload, or from
// the local date of created_at for entries that carry none. Writes that
// fail are queued in a local outbox and retried in order.
type RemoteBackend struct {
	log         remote.EntryLog
	userID      uuid.UUID
	outbox      *outbox
	maxAttempts int
	loc         *time.Location
	now         func() time.Time
	logger      *slog.Logger
}

// RemoteOption configures a RemoteBackend.
type RemoteOption func(*RemoteBackend)

// WithMaxAttempts bounds retries per queued write.
func WithMaxAttempts(n int) RemoteOption {
	return func(b *RemoteBackend) {
		if n > 0 {
			b.maxAttempts = n
		}
	}
}

// WithLocation sets the zone used to date entries by created_at.
func WithLocation(loc *time.Location) RemoteOption {
	return func(b *RemoteBackend) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// WithNow sets the clock used to stamp queued writes.
func WithNow(now func() time.Time) RemoteOption {
	return func(b *RemoteBackend) {
		if now != nil {
			b.now = now
		}
	}
}

// NewRemoteBackend returns a backend writing to log as userID, queuing
// failed writes in local. If logger is nil, slog.Default is used.
func NewRemoteBackend(log remote.EntryLog, userID uuid.UUID, local kv.KV, logger *slog.Logger, opts ...RemoteOption) *RemoteBackend {
	if logger == nil {
		logger = slog.Default()
	}
	b := &RemoteBackend{
		log:         log,
		userID:      userID,
		outbox:      &outbox{kv: local},
		maxAttempts: DefaultMaxAttempts,
		loc:         time.Local,
		now:         time.Now,
		logger: logger.With(
			slog.String("component", "remote_backend"),
			slog.String("user_id", userID.String())),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var (
	_ Backend = (*RemoteBackend)(nil)
	_ Syncer  = (*RemoteBackend)(nil)
)

func (b *RemoteBackend) Name() string { return BackendRemote }

func (b *RemoteBackend) Lookup(ctx context.Context, day string) (*model.DayMemory, error) {
	days, err := b.replay(ctx)
	if err != nil {
		return nil, err
	}
	return days[day], nil
}

func (b *RemoteBackend) Days(ctx context.Context) ([]*model.DayMemory, error) {
	days, err := b.replay(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.DayMemory, 0, len(days))
	for _, d := range days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// replay rebuilds every day from the remote log, then overlays writes
// still waiting in the outbox.
func (b *RemoteBackend) replay(ctx context.Context) (map[string]*model.DayMemory, error) {
	var entries []remote.Entry
	for _, typ := range remote.DayTypes {
		es, err := b.log.QueryAll(ctx, b.userID, typ)
		if err != nil {
			b.logger.Warn("failed to read remote entries",
				slog.String("error", err.Error()),
				slog.String("entry_type", typ))
			return nil, fmt.Errorf("%w: %v", ErrRemoteReadFailed, err)
		}
		entries = append(entries, es...)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	days := map[string]*model.DayMemory{}
	for _, e := range entries {
		if err := b.apply(days, e.Type, e.Payload, e.CreatedAt); err != nil {
			b.logger.Warn("skipping unreadable entry",
				slog.String("error", err.Error()),
				slog.String("entry_id", e.ID.String()))
		}
	}

	pending, err := b.outbox.load(ctx)
	if err != nil {
		b.logger.Warn("reading outbox", slog.String("error", err.Error()))
		return nil, err
	}
	for _, op := range pending {
		if op.Type == remote.TypeProfile {
			continue
		}
		if err := b.apply(days, op.Type, op.Payload, op.QueuedAt); err != nil {
			b.logger.Warn("skipping unreadable queued op",
				slog.String("error", err.Error()),
				slog.String("op_id", op.ID))
		}
	}
	return days, nil
}

func (b *RemoteBackend) apply(days map[string]*model.DayMemory, typ string, raw json.RawMessage, createdAt time.Time) error {
	var p entryPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	day := p.Day
	if day == "" {
		day = model.DayOf(createdAt.In(b.loc))
	}
	loggedAt := createdAt
	if p.LoggedAt != nil {
		loggedAt = *p.LoggedAt
	}

	var patch Patch
	switch typ {
	case remote.TypeMood:
		patch.Mood = &model.Mood{Value: p.Value, Intensity: p.Intensity, Tags: p.Tags, LoggedAt: loggedAt}
	case remote.TypeJournal:
		patch.Journal = []model.TextEntry{{ID: p.ID, Text: p.Text, LoggedAt: loggedAt}}
	case remote.TypeBreathing:
		patch.Breathing = []model.BreathingEntry{{ID: p.ID, Kind: p.Kind, LoggedAt: loggedAt}}
	case remote.TypeChatHighlight:
		patch.ChatHighlights = []model.TextEntry{{ID: p.ID, Text: p.Text, LoggedAt: loggedAt}}
	case remote.TypeActivity:
		patch.Activity = membershipOf(p.Active)
	case remote.TypePeriodStart:
		patch.PeriodStart = membershipOf(p.Active)
	default:
		return fmt.Errorf("unknown entry type %q", typ)
	}

	d, ok := days[day]
	if !ok {
		d = model.NewDayMemory(day)
	}
	days[day] = Merge(d, patch)
	return nil
}

func membershipOf(active *bool) Membership {
	if active != nil && !*active {
		return Remove
	}
	return Add
}

func (b *RemoteBackend) Commit(ctx context.Context, day string, p Patch, _ *model.DayMemory) error {
	ops, err := b.opsFor(day, p)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		return nil
	}
	_, err = b.send(ctx, ops)
	return err
}

// opsFor splits a patch into one entry per record, in merge-table order.
func (b *RemoteBackend) opsFor(day string, p Patch) ([]Op, error) {
	var payloads []struct {
		typ string
		p   entryPayload
	}
	add := func(typ string, ep entryPayload) {
		ep.Day = day
		payloads = append(payloads, struct {
			typ string
			p   entryPayload
		}{typ, ep})
	}

	if m := p.Mood; m != nil {
		at := m.LoggedAt
		add(remote.TypeMood, entryPayload{Value: m.Value, Intensity: m.Intensity, Tags: m.Tags, LoggedAt: &at})
	}
	for _, j := range p.Journal {
		at := j.LoggedAt
		add(remote.TypeJournal, entryPayload{ID: j.ID, Text: j.Text, LoggedAt: &at})
	}
	for _, br := range p.Breathing {
		at := br.LoggedAt
		add(remote.TypeBreathing, entryPayload{ID: br.ID, Kind: br.Kind, LoggedAt: &at})
	}
	for _, h := range p.ChatHighlights {
		at := h.LoggedAt
		add(remote.TypeChatHighlight, entryPayload{ID: h.ID, Text: h.Text, LoggedAt: &at})
	}
	if p.Activity != Keep {
		active := p.Activity == Add
		add(remote.TypeActivity, entryPayload{Active: &active})
	}
	if p.PeriodStart != Keep {
		active := p.PeriodStart == Add
		add(remote.TypePeriodStart, entryPayload{Active: &active})
	}

	ops := make([]Op, 0, len(payloads))
	for _, pl := range payloads {
		raw, err := json.Marshal(pl.p)
		if err != nil {
			return nil, fmt.Errorf("encode %s entry: %w", pl.typ, err)
		}
		ops = append(ops, b.newOp(pl.typ, raw))
	}
	return ops, nil
}

func (b *RemoteBackend) newOp(typ string, payload json.RawMessage) Op {
	return Op{
		ID:       uuid.NewString(),
		Type:     typ,
		Payload:  payload,
		QueuedAt: b.now().UTC(),
	}
}

// send queues ops behind any pending writes and flushes the queue in
// order. It returns how many queued ops reached the log.
func (b *RemoteBackend) send(ctx context.Context, ops []Op) (int, error) {
	pending, loadErr := b.outbox.load(ctx)
	if loadErr != nil {
		b.outbox.hold(ops)
		b.logger.Warn("reading outbox, holding writes in memory",
			slog.String("error", loadErr.Error()),
			slog.Int("held", len(ops)))
		return 0, loadErr
	}
	queue := append(pending, ops...)

	sent, flushErr := b.flush(ctx, queue)
	var saveErr error
	if sent > 0 || len(ops) > 0 || flushErr != nil {
		saveErr = b.outbox.save(ctx, queue[sent:])
	}
	if flushErr != nil {
		return sent, errors.Join(fmt.Errorf("%w: %w", ErrRemoteWriteFailed, flushErr), saveErr)
	}
	return sent, saveErr
}

func (b *RemoteBackend) flush(ctx context.Context, queue []Op) (int, error) {
	for i := range queue {
		op := &queue[i]
		if op.Attempts >= b.maxAttempts {
			return i, fmt.Errorf("%w: %s entry %s after %d attempts", ErrRetriesExhausted, op.Type, op.ID, op.Attempts)
		}
		id, err := uuid.Parse(op.ID)
		if err != nil {
			return i, fmt.Errorf("queued op id %q: %w", op.ID, err)
		}
		if _, err := b.log.Insert(ctx, b.userID, id, op.Type, op.Payload); err != nil {
			op.Attempts++
			b.logger.Warn("remote write failed, keeping it queued",
				slog.String("error", err.Error()),
				slog.String("entry_type", op.Type),
				slog.Int("attempts", op.Attempts),
				slog.Int("queued", len(queue)-i))
			return i, err
		}
	}
	return len(queue), nil
}

// Sync retries every queued write in order.
func (b *RemoteBackend) Sync(ctx context.Context) (int, error) {
	sent, err := b.send(ctx, nil)
	if sent > 0 {
		b.logger.Info("synced queued writes", slog.Int("sent", sent))
	}
	return sent, err
}

func (b *RemoteBackend) Pending(ctx context.Context) ([]Op, error) {
	return b.outbox.load(ctx)
}

func (b *RemoteBackend) ResetRetries(ctx context.Context) error {
	items, err := b.outbox.load(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Attempts = 0
	}
	return b.outbox.save(ctx, items)
}

func (b *RemoteBackend) LoadConfig(ctx context.Context) (*model.CycleConfig, error) {
	entries, err := b.log.QueryAll(ctx, b.userID, remote.TypeProfile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteReadFailed, err)
	}
	var latest json.RawMessage
	if len(entries) > 0 {
		latest = entries[len(entries)-1].Payload
	}
	pending, err := b.outbox.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, op := range pending {
		if op.Type == remote.TypeProfile {
			latest = op.Payload
		}
	}
	if latest == nil {
		return nil, nil
	}
	var cfg model.CycleConfig
	if err := json.Unmarshal(latest, &cfg); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &cfg, nil
}

func (b *RemoteBackend) SaveConfig(ctx context.Context, cfg model.CycleConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = b.send(ctx, []Op{b.newOp(remote.TypeProfile, raw)})
	return err
}
