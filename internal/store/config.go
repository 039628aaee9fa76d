package store

import (
	"context"
	"log/slog"

	"github.com/rcliao/cycle-journal/internal/cycle"
	"github.com/rcliao/cycle-journal/internal/model"
)

// Config returns the saved cycle configuration. On first use the defaults,
// anchored on today, are saved so the cycle start stays put as days pass.
func (s *Store) Config(ctx context.Context) (model.CycleConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config(ctx)
}

func (s *Store) config(ctx context.Context) (model.CycleConfig, error) {
	cfg, found, err := s.loadConfig(ctx)
	if err != nil || found {
		return cfg, err
	}
	return cfg, s.anchor(ctx, cfg)
}

// loadConfig returns the saved configuration, or the defaults anchored on
// today and found=false.
func (s *Store) loadConfig(ctx context.Context) (cfg model.CycleConfig, found bool, err error) {
	saved, err := s.backend.LoadConfig(ctx)
	if err != nil {
		return model.CycleConfig{}, false, err
	}
	if saved == nil {
		return model.DefaultCycleConfig(s.clock.Now()), false, nil
	}
	return *saved, true, nil
}

// anchor saves a first configuration. A write kept for retry still counts.
func (s *Store) anchor(ctx context.Context, cfg model.CycleConfig) error {
	err := s.backend.SaveConfig(ctx, cfg)
	if err == nil {
		s.logger.Info("cycle start anchored", slog.String("cycle_start", cfg.CycleStart))
		return nil
	}
	if recoverable(err) {
		s.logger.Warn("default config not persisted",
			slog.String("error", err.Error()),
			slog.String("cycle_start", cfg.CycleStart))
		return nil
	}
	return err
}

// SaveConfig validates and stores cfg. A period longer than the cycle is
// clamped; the stored value is returned.
func (s *Store) SaveConfig(ctx context.Context, cfg model.CycleConfig) (model.CycleConfig, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return cfg, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cfg, s.backend.SaveConfig(ctx, cfg)
}

// State computes today's cycle state from the saved configuration.
func (s *Store) State(ctx context.Context) (cycle.State, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return cycle.State{}, err
	}
	return cycle.Compute(cfg, s.clock.Now())
}
