package model

import "time"

// Mood is the single mood record of a day.
type Mood struct {
	Value     string    `json:"value" yaml:"value"`
	Intensity *int      `json:"intensity,omitempty" yaml:"intensity,omitempty"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	LoggedAt  time.Time `json:"logged_at" yaml:"logged_at"`
}

// TextEntry is a journal reflection or a chat highlight.
type TextEntry struct {
	ID       string    `json:"id" yaml:"id"`
	Text     string    `json:"text" yaml:"text"`
	LoggedAt time.Time `json:"logged_at" yaml:"logged_at"`
}

// BreathingEntry marks one completed guided-breathing session.
type BreathingEntry struct {
	ID       string    `json:"id" yaml:"id"`
	Kind     string    `json:"kind" yaml:"kind"`
	LoggedAt time.Time `json:"logged_at" yaml:"logged_at"`
}

// DefaultBreathingKind is used when a session is logged without a kind.
const DefaultBreathingKind = "grounding"

// DayMemory is everything recorded against one calendar day.
type DayMemory struct {
	Date           string           `json:"date" yaml:"date"`
	Mood           *Mood            `json:"mood" yaml:"mood"`
	Journal        []TextEntry      `json:"journal" yaml:"journal"`
	Breathing      []BreathingEntry `json:"breathing" yaml:"breathing"`
	ChatHighlights []TextEntry      `json:"chat_highlights" yaml:"chat_highlights"`
	Activity       bool             `json:"activity,omitempty" yaml:"activity,omitempty"`
	PeriodStart    bool             `json:"period_start,omitempty" yaml:"period_start,omitempty"`
}

// NewDayMemory returns an empty record for day.
func NewDayMemory(day string) *DayMemory {
	return &DayMemory{
		Date:           day,
		Journal:        []TextEntry{},
		Breathing:      []BreathingEntry{},
		ChatHighlights: []TextEntry{},
	}
}

// Clone returns a deep copy.
func (d *DayMemory) Clone() *DayMemory {
	c := *d
	if d.Mood != nil {
		m := *d.Mood
		if d.Mood.Intensity != nil {
			i := *d.Mood.Intensity
			m.Intensity = &i
		}
		m.Tags = append([]string(nil), d.Mood.Tags...)
		c.Mood = &m
	}
	c.Journal = append([]TextEntry{}, d.Journal...)
	c.Breathing = append([]BreathingEntry{}, d.Breathing...)
	c.ChatHighlights = append([]TextEntry{}, d.ChatHighlights...)
	return &c
}

// IsEmpty reports whether nothing has been recorded on the day.
func (d *DayMemory) IsEmpty() bool {
	return d.Mood == nil && len(d.Journal) == 0 && len(d.Breathing) == 0 &&
		len(d.ChatHighlights) == 0 && !d.Activity && !d.PeriodStart
}
