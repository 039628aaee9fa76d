// Package cycle maps a cycle configuration and a reference date to a phase,
// a countdown and calendar glyphs. Everything here is pure.
package cycle

import (
	"time"

	"github.com/rcliao/cycle-journal/internal/model"
)

// LookaheadDays bounds how far ahead a countdown is shown.
const LookaheadDays = 7

// Counter labels.
const (
	CounterOvulation = "Ovulation"
	CounterPeriod    = "Period"
)

// Counter is the displayed countdown to the nearer landmark.
type Counter struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// State is the derived cycle status for one reference date.
type State struct {
	Date                string      `json:"date"`
	CycleDay            int         `json:"cycle_day"`
	CycleLength         int         `json:"cycle_length"`
	OvulationDay        int         `json:"ovulation_day"`
	Phase               model.Phase `json:"phase"`
	DaysUntilOvulation  int         `json:"days_until_ovulation"`
	DaysUntilNextPeriod int         `json:"days_until_next_period"`
	Counter             *Counter    `json:"counter,omitempty"`
	PhaseLabel          string      `json:"phase_label,omitempty"`
	ShowLogPeriodPrompt bool        `json:"show_log_period_prompt"`
	Glyph               Glyph       `json:"glyph"`
	Window              []WindowDay `json:"window"`
}

// WindowDay is one slot of the seven-day strip around the reference date.
type WindowDay struct {
	Offset   int    `json:"offset"`
	Date     string `json:"date"`
	Label    string `json:"label"`
	CycleDay int    `json:"cycle_day"`
	Glyph    Glyph  `json:"glyph"`
	IsToday  bool   `json:"is_today"`
}

// Compute derives the cycle state of ref. It only fails when cfg is unusable.
func Compute(cfg model.CycleConfig, ref time.Time) (State, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return State{}, err
	}
	day, err := Day(cfg, ref)
	if err != nil {
		return State{}, err
	}

	length := cfg.CycleLengthDays
	ov := OvulationDay(cfg)
	phase := PhaseOf(cfg, day)

	toOvulation := ov - day
	toPeriod := length - day

	st := State{
		Date:                model.DayOf(ref),
		CycleDay:            day,
		CycleLength:         length,
		OvulationDay:        ov,
		Phase:               phase,
		DaysUntilOvulation:  toOvulation,
		DaysUntilNextPeriod: toPeriod,
		Glyph:               GlyphFor(cfg, day),
		Window:              Window(cfg, ref, day),
	}
	if st.DaysUntilOvulation < 0 {
		st.DaysUntilOvulation += length
	}

	switch {
	case phase == model.PhasePeriod:
		st.PhaseLabel = string(phase) + " phase"
	case toOvulation > 0 && toOvulation <= LookaheadDays:
		st.Counter = &Counter{Value: toOvulation, Label: CounterOvulation}
	case toPeriod > 0 && toPeriod <= LookaheadDays:
		st.Counter = &Counter{Value: toPeriod, Label: CounterPeriod}
	default:
		st.PhaseLabel = string(phase) + " phase"
	}

	st.ShowLogPeriodPrompt = st.DaysUntilNextPeriod <= 2 || phase == model.PhasePeriod
	return st, nil
}

// Day returns the 1-based position of date within the cycle. Dates before
// the cycle start wrap backwards into earlier cycles.
func Day(cfg model.CycleConfig, date time.Time) (int, error) {
	start, err := cfg.StartDate()
	if err != nil {
		return 0, err
	}
	return wrap(model.DaysBetween(start, date), cfg.CycleLengthDays) + 1, nil
}

// OvulationDay is the cycle day ovulation is assumed on.
func OvulationDay(cfg model.CycleConfig) int {
	return cfg.CycleLengthDays / 2
}

// PhaseOf classifies a cycle day.
func PhaseOf(cfg model.CycleConfig, day int) model.Phase {
	ov := OvulationDay(cfg)
	switch {
	case day <= cfg.PeriodDurationDays:
		return model.PhasePeriod
	case day < ov:
		return model.PhaseFollicular
	case day == ov:
		return model.PhaseOvulation
	default:
		return model.PhaseLuteal
	}
}

// Window returns the seven days centred on ref. day is ref's cycle day.
func Window(cfg model.CycleConfig, ref time.Time, day int) []WindowDay {
	out := make([]WindowDay, 0, 7)
	for offset := -3; offset <= 3; offset++ {
		date := ref.AddDate(0, 0, offset)
		d := wrap(day+offset-1, cfg.CycleLengthDays) + 1
		label := date.Weekday().String()[:3]
		if offset == 0 {
			label = "Today"
		}
		out = append(out, WindowDay{
			Offset:   offset,
			Date:     model.DayOf(date),
			Label:    label,
			CycleDay: d,
			Glyph:    GlyphFor(cfg, d),
			IsToday:  offset == 0,
		})
	}
	return out
}

// wrap reduces n into [0, l).
func wrap(n, l int) int {
	return ((n % l) + l) % l
}
