package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/cycle-journal/internal/clock"
	"github.com/rcliao/cycle-journal/internal/cycle"
	"github.com/rcliao/cycle-journal/internal/feed"
	"github.com/rcliao/cycle-journal/internal/model"
)

// Store is the only writer of day memory. Operations are serialized, so
// writes from one session apply in the order they were issued.
type Store struct {
	mu      sync.Mutex
	backend Backend
	clock   clock.Clock
	logger  *slog.Logger
	entropy *rand.Rand
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the source of "today" and of entry timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns a Store bound to backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		clock:   clock.System{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "memory_store"), slog.String("backend", backend.Name()))
	s.entropy = rand.New(rand.NewSource(s.clock.Now().UnixNano()))
	return s
}

// Backend returns the active backend.
func (s *Store) Backend() Backend { return s.backend }

// Today returns the current local day key.
func (s *Store) Today() string {
	return model.DayOf(s.clock.Now())
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(s.clock.Now()), s.entropy).String()
}

// Lookup returns the record for day without creating it. It returns nil
// when nothing has been recorded.
func (s *Store) Lookup(ctx context.Context, day string) (*model.DayMemory, error) {
	if _, err := model.ParseDay(day); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Lookup(ctx, day)
}

// GetOrCreate returns the record for day, storing an empty one first if
// none exists.
func (s *Store) GetOrCreate(ctx context.Context, day string) (*model.DayMemory, error) {
	if _, err := model.ParseDay(day); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.backend.Lookup(ctx, day)
	if err != nil {
		return nil, err
	}
	if d != nil {
		return d, nil
	}
	d = model.NewDayMemory(day)
	if err := s.backend.Commit(ctx, day, Patch{}, d); err != nil {
		return d, err
	}
	return d, nil
}

// GetToday is GetOrCreate for the current day.
func (s *Store) GetToday(ctx context.Context) (*model.DayMemory, error) {
	return s.GetOrCreate(ctx, s.Today())
}

// Update merges p into the record for day. The merged record is returned
// even when the backend reports a recoverable error, because the write has
// been kept (in memory or in the outbox) and reads will reflect it.
func (s *Store) Update(ctx context.Context, day string, p Patch) (*model.DayMemory, error) {
	if _, err := model.ParseDay(day); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(ctx, day, p)
}

func (s *Store) update(ctx context.Context, day string, p Patch) (*model.DayMemory, error) {
	cur, err := s.backend.Lookup(ctx, day)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		cur = model.NewDayMemory(day)
	}

	p = s.stamp(p)
	p.Activity = p.Activity.resolve(cur.Activity)
	p.PeriodStart = p.PeriodStart.resolve(cur.PeriodStart)

	merged := Merge(cur, p)
	if err := s.backend.Commit(ctx, day, p, merged); err != nil {
		s.logger.Warn("update not fully persisted",
			slog.String("error", err.Error()),
			slog.String("day", day))
		return merged, err
	}
	s.logger.Debug("day updated", slog.String("day", day))
	return merged, nil
}

// stamp fills in missing ids and timestamps.
func (s *Store) stamp(p Patch) Patch {
	now := s.clock.Now()
	if p.Mood != nil {
		m := *p.Mood
		if m.LoggedAt.IsZero() {
			m.LoggedAt = now
		}
		p.Mood = &m
	}
	p.Journal = stampText(p.Journal, now, s.newID)
	p.ChatHighlights = stampText(p.ChatHighlights, now, s.newID)
	if len(p.Breathing) > 0 {
		out := make([]model.BreathingEntry, len(p.Breathing))
		for i, b := range p.Breathing {
			if b.ID == "" {
				b.ID = s.newID()
			}
			if b.LoggedAt.IsZero() {
				b.LoggedAt = now
			}
			if b.Kind == "" {
				b.Kind = model.DefaultBreathingKind
			}
			out[i] = b
		}
		p.Breathing = out
	}
	return p
}

func stampText(entries []model.TextEntry, now time.Time, newID func() string) []model.TextEntry {
	if len(entries) == 0 {
		return entries
	}
	out := make([]model.TextEntry, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			e.ID = newID()
		}
		if e.LoggedAt.IsZero() {
			e.LoggedAt = now
		}
		out[i] = e
	}
	return out
}

// SetMood replaces today's mood.
func (s *Store) SetMood(ctx context.Context, value string, intensity *int, tags []string) (*model.DayMemory, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("mood: %w", ErrEmptyEntry)
	}
	return s.Update(ctx, s.Today(), Patch{Mood: &model.Mood{Value: value, Intensity: intensity, Tags: tags}})
}

// AddJournalEntry appends a reflection to today.
func (s *Store) AddJournalEntry(ctx context.Context, text string) (*model.DayMemory, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("journal: %w", ErrEmptyEntry)
	}
	return s.Update(ctx, s.Today(), Patch{Journal: []model.TextEntry{{Text: text}}})
}

// LogBreathing records a completed breathing session today.
func (s *Store) LogBreathing(ctx context.Context, kind string) (*model.DayMemory, error) {
	return s.Update(ctx, s.Today(), Patch{Breathing: []model.BreathingEntry{{Kind: strings.TrimSpace(kind)}}})
}

// AddChatHighlight appends a companion-chat excerpt to today.
func (s *Store) AddChatHighlight(ctx context.Context, text string) (*model.DayMemory, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("highlight: %w", ErrEmptyEntry)
	}
	return s.Update(ctx, s.Today(), Patch{ChatHighlights: []model.TextEntry{{Text: text}}})
}

// ToggleActivity flips whether day is in the activity set.
func (s *Store) ToggleActivity(ctx context.Context, day string) (*model.DayMemory, error) {
	return s.Update(ctx, day, Patch{Activity: Toggle})
}

// LogPeriodStart adds day to the period-start set. When day is not before
// the configured cycle start it also becomes the new cycle start; with no
// saved configuration yet, it anchors the first one.
func (s *Store) LogPeriodStart(ctx context.Context, day string) (*model.DayMemory, error) {
	if _, err := model.ParseDay(day); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.update(ctx, day, Patch{PeriodStart: Add})
	if err != nil && (d == nil || !recoverable(err)) {
		return d, err
	}

	cfg, found, cfgErr := s.loadConfig(ctx)
	if cfgErr != nil {
		return d, errors.Join(err, cfgErr)
	}
	if !found || day >= cfg.CycleStart {
		cfg.CycleStart = day
		if saveErr := s.backend.SaveConfig(ctx, cfg); saveErr != nil {
			return d, errors.Join(err, saveErr)
		}
		s.logger.Info("cycle start moved", slog.String("cycle_start", day))
	}
	return d, err
}

// recoverable reports whether the write was kept for a later retry.
func recoverable(err error) bool {
	return errors.Is(err, ErrRemoteWriteFailed) || errors.Is(err, ErrStorageUnavailable)
}

// Days returns every stored day, ascending by date.
func (s *Store) Days(ctx context.Context) ([]*model.DayMemory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Days(ctx)
}

// Sets returns the logged activity and period-start days.
func (s *Store) Sets(ctx context.Context) (activity, periods cycle.DaySet, err error) {
	days, err := s.Days(ctx)
	if err != nil {
		return nil, nil, err
	}
	activity, periods = cycle.DaySet{}, cycle.DaySet{}
	for _, d := range days {
		if d.Activity {
			activity[d.Date] = true
		}
		if d.PeriodStart {
			periods[d.Date] = true
		}
	}
	return activity, periods, nil
}

// Feed aggregates every day into the journal feed. A failed read yields an
// empty feed flagged Unavailable.
func (s *Store) Feed(ctx context.Context) feed.Feed {
	days, err := s.Days(ctx)
	if err != nil {
		s.logger.Warn("journal feed unavailable", slog.String("error", err.Error()))
		return feed.Feed{Items: []feed.Item{}, Unavailable: true}
	}
	return feed.Feed{Items: feed.Build(days)}
}

// Sync retries queued remote writes. It is a no-op for backends that do
// not queue.
func (s *Store) Sync(ctx context.Context) (int, error) {
	syncer, ok := s.backend.(Syncer)
	if !ok {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return syncer.Sync(ctx)
}

// Pending returns queued remote writes.
func (s *Store) Pending(ctx context.Context) ([]Op, error) {
	syncer, ok := s.backend.(Syncer)
	if !ok {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return syncer.Pending(ctx)
}

// ResetRetries lets exhausted queued writes be tried again.
func (s *Store) ResetRetries(ctx context.Context) error {
	syncer, ok := s.backend.(Syncer)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return syncer.ResetRetries(ctx)
}
