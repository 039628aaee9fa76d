package store

import "github.com/rcliao/cycle-journal/internal/model"

// Membership is a set operation on a day-level flag.
type Membership int

const (
	Keep Membership = iota
	Add
	Remove
	Toggle
)

func (m Membership) apply(cur bool) bool {
	switch m {
	case Add:
		return true
	case Remove:
		return false
	case Toggle:
		return !cur
	default:
		return cur
	}
}

// resolve turns a toggle into the explicit Add or Remove it amounts to.
func (m Membership) resolve(cur bool) Membership {
	if m != Toggle {
		return m
	}
	if cur {
		return Remove
	}
	return Add
}

// Patch is a change to one day record. Zero fields are left alone.
type Patch struct {
	Mood           *model.Mood            `json:"mood,omitempty"`
	Journal        []model.TextEntry      `json:"journal,omitempty"`
	Breathing      []model.BreathingEntry `json:"breathing,omitempty"`
	ChatHighlights []model.TextEntry      `json:"chat_highlights,omitempty"`
	Activity       Membership             `json:"activity,omitempty"`
	PeriodStart    Membership             `json:"period_start,omitempty"`
}

// IsZero reports whether p changes nothing.
func (p Patch) IsZero() bool {
	return p.Mood == nil && len(p.Journal) == 0 && len(p.Breathing) == 0 &&
		len(p.ChatHighlights) == 0 && p.Activity == Keep && p.PeriodStart == Keep
}

// Policy is how a field absorbs a patch.
type Policy string

const (
	// PolicyReplace keeps only the latest value (last write wins).
	PolicyReplace Policy = "replace"
	// PolicyAppend appends in write order.
	PolicyAppend Policy = "append"
	// PolicyMembership applies a set operation to a flag.
	PolicyMembership Policy = "membership"
)

type fieldRule struct {
	Field  string
	Policy Policy
	merge  func(d *model.DayMemory, p Patch)
}

// mergeRules is the per-field merge table. A new record kind adds a row.
var mergeRules = []fieldRule{
	{"mood", PolicyReplace, func(d *model.DayMemory, p Patch) { replace(&d.Mood, p.Mood) }},
	{"journal", PolicyAppend, func(d *model.DayMemory, p Patch) { appendAll(&d.Journal, p.Journal) }},
	{"breathing", PolicyAppend, func(d *model.DayMemory, p Patch) { appendAll(&d.Breathing, p.Breathing) }},
	{"chat_highlights", PolicyAppend, func(d *model.DayMemory, p Patch) { appendAll(&d.ChatHighlights, p.ChatHighlights) }},
	{"activity", PolicyMembership, func(d *model.DayMemory, p Patch) { d.Activity = p.Activity.apply(d.Activity) }},
	{"period_start", PolicyMembership, func(d *model.DayMemory, p Patch) { d.PeriodStart = p.PeriodStart.apply(d.PeriodStart) }},
}

// FieldPolicy returns the merge policy of a field.
func FieldPolicy(field string) (Policy, bool) {
	for _, r := range mergeRules {
		if r.Field == field {
			return r.Policy, true
		}
	}
	return "", false
}

// Merge applies p to a copy of d.
func Merge(d *model.DayMemory, p Patch) *model.DayMemory {
	out := d.Clone()
	for _, r := range mergeRules {
		r.merge(out, p)
	}
	return out
}

func replace[T any](dst **T, v *T) {
	if v != nil {
		c := *v
		*dst = &c
	}
}

func appendAll[T any](dst *[]T, v []T) {
	if len(v) > 0 {
		*dst = append(*dst, v...)
	}
}
