package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/rcliao/cycle-journal/internal/kv"
	"github.com/rcliao/cycle-journal/internal/model"
)

// Fixed keys in the local KV.
const (
	KeyDayMemory   = "day_memory"
	KeyCycleConfig = "cycle_config"
	KeyOutbox      = "outbox"
)

// LocalBackend keeps the whole day map as one JSON document in a KV.
// The map is read once and then served from memory; a failed write leaves
// the in-memory map updated and reports ErrStorageUnavailable.
type LocalBackend struct {
	kv     kv.KV
	logger *slog.Logger
	days   map[string]*model.DayMemory
}

// NewLocalBackend returns a backend over store. If logger is nil,
// slog.Default is used.
func NewLocalBackend(store kv.KV, logger *slog.Logger) *LocalBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalBackend{
		kv:     store,
		logger: logger.With(slog.String("component", "local_backend")),
	}
}

var _ Backend = (*LocalBackend)(nil)

func (b *LocalBackend) Name() string { return BackendLocal }

func (b *LocalBackend) load(ctx context.Context) error {
	if b.days != nil {
		return nil
	}
	raw, ok, err := b.kv.Get(ctx, KeyDayMemory)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	days := map[string]*model.DayMemory{}
	if ok {
		if err := json.Unmarshal([]byte(raw), &days); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrStorageUnavailable, KeyDayMemory, err)
		}
	}
	for day, d := range days {
		d.Date = day
	}
	b.days = days
	return nil
}

func (b *LocalBackend) Lookup(ctx context.Context, day string) (*model.DayMemory, error) {
	if err := b.load(ctx); err != nil {
		return nil, err
	}
	d, ok := b.days[day]
	if !ok {
		return nil, nil
	}
	return d.Clone(), nil
}

func (b *LocalBackend) Days(ctx context.Context) ([]*model.DayMemory, error) {
	if err := b.load(ctx); err != nil {
		return nil, err
	}
	out := make([]*model.DayMemory, 0, len(b.days))
	for _, d := range b.days {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (b *LocalBackend) Commit(ctx context.Context, day string, _ Patch, merged *model.DayMemory) error {
	if err := b.load(ctx); err != nil {
		return err
	}
	b.days[day] = merged.Clone()

	raw, err := json.Marshal(b.days)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyDayMemory, err)
	}
	if err := b.kv.Set(ctx, KeyDayMemory, string(raw)); err != nil {
		b.logger.Error("failed to persist day memory",
			slog.String("error", err.Error()),
			slog.String("day", day))
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (b *LocalBackend) LoadConfig(ctx context.Context) (*model.CycleConfig, error) {
	raw, ok, err := b.kv.Get(ctx, KeyCycleConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if !ok {
		return nil, nil
	}
	var cfg model.CycleConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStorageUnavailable, KeyCycleConfig, err)
	}
	return &cfg, nil
}

func (b *LocalBackend) SaveConfig(ctx context.Context, cfg model.CycleConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyCycleConfig, err)
	}
	if err := b.kv.Set(ctx, KeyCycleConfig, string(raw)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
