package store

import (
	"context"
	"errors"

	"github.com/rcliao/cycle-journal/internal/model"
)

// Export is a full dump of the active backend.
type Export struct {
	Backend string             `json:"backend" yaml:"backend"`
	Config  model.CycleConfig  `json:"config" yaml:"config"`
	Days    []*model.DayMemory `json:"days" yaml:"days"`
}

// ExportAll returns the configuration and every non-empty day.
func (s *Store) ExportAll(ctx context.Context) (*Export, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	days, err := s.Days(ctx)
	if err != nil {
		return nil, err
	}
	out := &Export{Backend: s.backend.Name(), Config: cfg, Days: []*model.DayMemory{}}
	for _, d := range days {
		if !d.IsEmpty() {
			out.Days = append(out.Days, d)
		}
	}
	return out, nil
}

// Import replays exported days onto the active backend, one patch per day.
// Entries already present (same id) are skipped and an imported mood only
// replaces an older one, so importing twice is safe.
// It returns the number of entries written.
func (s *Store) Import(ctx context.Context, days []*model.DayMemory) (int, error) {
	imported := 0
	var errs []error
	for _, d := range days {
		if d == nil {
			continue
		}
		cur, err := s.Lookup(ctx, d.Date)
		if err != nil {
			return imported, err
		}
		p, n := importPatch(cur, d)
		if n == 0 {
			continue
		}
		if _, err := s.Update(ctx, d.Date, p); err != nil {
			if !recoverable(err) {
				return imported, err
			}
			errs = append(errs, err)
		}
		imported += n
	}
	return imported, errors.Join(errs...)
}

// importPatch returns the part of d that cur lacks.
func importPatch(cur, d *model.DayMemory) (Patch, int) {
	if cur == nil {
		cur = model.NewDayMemory(d.Date)
	}
	var p Patch
	n := 0
	if d.Mood != nil && (cur.Mood == nil || d.Mood.LoggedAt.After(cur.Mood.LoggedAt)) {
		p.Mood = d.Mood
		n++
	}
	seen := map[string]bool{}
	for _, e := range cur.Journal {
		seen[e.ID] = true
	}
	for _, e := range cur.ChatHighlights {
		seen[e.ID] = true
	}
	for _, e := range cur.Breathing {
		seen[e.ID] = true
	}
	for _, e := range d.Journal {
		if !seen[e.ID] {
			p.Journal = append(p.Journal, e)
			n++
		}
	}
	for _, e := range d.Breathing {
		if !seen[e.ID] {
			p.Breathing = append(p.Breathing, e)
			n++
		}
	}
	for _, e := range d.ChatHighlights {
		if !seen[e.ID] {
			p.ChatHighlights = append(p.ChatHighlights, e)
			n++
		}
	}
	if d.Activity && !cur.Activity {
		p.Activity = Add
		n++
	}
	if d.PeriodStart && !cur.PeriodStart {
		p.PeriodStart = Add
		n++
	}
	return p, n
}
