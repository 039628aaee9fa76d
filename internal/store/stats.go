package store

import (
	"context"
)

// Stats holds record counts for the active backend.
type Stats struct {
	Backend        string `json:"backend"`
	Days           int    `json:"days"`
	Moods          int    `json:"moods"`
	JournalEntries int    `json:"journal_entries"`
	Breathing      int    `json:"breathing_sessions"`
	ChatHighlights int    `json:"chat_highlights"`
	ActivityDays   int    `json:"activity_days"`
	PeriodStarts   int    `json:"period_starts"`
	Pending        int    `json:"pending_writes"`
	FirstDay       string `json:"first_day,omitempty"`
	LastDay        string `json:"last_day,omitempty"`
}

// Stats counts what has been recorded.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	days, err := s.Days(ctx)
	if err != nil {
		return nil, err
	}
	st := &Stats{Backend: s.backend.Name()}
	for _, d := range days {
		if d.IsEmpty() {
			continue
		}
		st.Days++
		if st.FirstDay == "" {
			st.FirstDay = d.Date
		}
		st.LastDay = d.Date
		if d.Mood != nil {
			st.Moods++
		}
		st.JournalEntries += len(d.Journal)
		st.Breathing += len(d.Breathing)
		st.ChatHighlights += len(d.ChatHighlights)
		if d.Activity {
			st.ActivityDays++
		}
		if d.PeriodStart {
			st.PeriodStarts++
		}
	}

	pending, err := s.Pending(ctx)
	if err != nil {
		return st, err
	}
	st.Pending = len(pending)
	return st, nil
}
