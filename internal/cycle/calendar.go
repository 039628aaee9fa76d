package cycle

import (
	"time"

	"github.com/rcliao/cycle-journal/internal/model"
)

// DaySet is a set of YYYY-MM-DD keys.
type DaySet map[string]bool

// Annotation is the calendar view of one date.
type Annotation struct {
	Date     string      `json:"date"`
	CycleDay int         `json:"cycle_day"`
	Phase    model.Phase `json:"phase"`
	Glyph    Glyph       `json:"glyph"`
	Activity bool        `json:"activity"`
	Period   bool        `json:"period"`
}

// Annotate positions date against the current configuration only; earlier
// configurations are not replayed. Activity and period flags come from the
// logged sets, and the period flag also covers the current period window.
func Annotate(cfg model.CycleConfig, date time.Time, activity, periods DaySet) (Annotation, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return Annotation{}, err
	}
	return annotate(cfg, date, activity, periods), nil
}

// Month annotates every day of the given month.
func Month(cfg model.CycleConfig, year int, month time.Month, activity, periods DaySet) ([]Annotation, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	var out []Annotation
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		out = append(out, annotate(cfg, d, activity, periods))
	}
	return out, nil
}

// cfg must already be normalized.
func annotate(cfg model.CycleConfig, date time.Time, activity, periods DaySet) Annotation {
	start, _ := cfg.StartDate()
	day := wrap(model.DaysBetween(start, date), cfg.CycleLengthDays) + 1
	key := model.DayOf(date)

	sinceStart := model.DaysBetween(start, date)
	inWindow := sinceStart >= 0 && sinceStart < cfg.PeriodDurationDays

	return Annotation{
		Date:     key,
		CycleDay: day,
		Phase:    PhaseOf(cfg, day),
		Glyph:    GlyphFor(cfg, day),
		Activity: activity[key],
		Period:   periods[key] || inWindow,
	}
}
