// Package feed flattens day records into one reverse-chronological journal.
package feed

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rcliao/cycle-journal/internal/model"
)

// Kind is the display category of a feed item.
type Kind string

const (
	KindMood       Kind = "mood"
	KindReflection Kind = "reflection"
	KindRitual     Kind = "ritual"
)

// TagCompanion marks reflections that came from a companion chat.
const TagCompanion = "companion"

// Item is one normalized journal entry.
type Item struct {
	Date     string    `json:"date" yaml:"date"`
	Kind     Kind      `json:"kind" yaml:"kind"`
	Content  string    `json:"content" yaml:"content"`
	Tags     []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	LoggedAt time.Time `json:"logged_at" yaml:"logged_at"`
}

// Feed is the aggregated journal. Unavailable is set when the records could
// not be read, so an outage is distinguishable from an empty history.
type Feed struct {
	Items       []Item `json:"items" yaml:"items"`
	Unavailable bool   `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
}

// Build returns every entry of days, newest first. Days are ordered by date
// before flattening, so the output does not depend on the order of days.
// Entries with equal timestamps keep their order within the day.
func Build(days []*model.DayMemory) []Item {
	ordered := make([]*model.DayMemory, 0, len(days))
	for _, d := range days {
		if d != nil {
			ordered = append(ordered, d)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date < ordered[j].Date })

	items := []Item{}
	for _, d := range ordered {
		items = append(items, dayItems(d)...)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LoggedAt.After(items[j].LoggedAt)
	})
	return items
}

func dayItems(d *model.DayMemory) []Item {
	var items []Item
	if d.Mood != nil {
		tags := append([]string(nil), d.Mood.Tags...)
		if d.Mood.Intensity != nil {
			tags = append(tags, "intensity:"+strconv.Itoa(*d.Mood.Intensity))
		}
		items = append(items, Item{Date: d.Date, Kind: KindMood, Content: d.Mood.Value, Tags: tags, LoggedAt: d.Mood.LoggedAt})
	}
	for _, j := range d.Journal {
		items = append(items, Item{Date: d.Date, Kind: KindReflection, Content: j.Text, LoggedAt: j.LoggedAt})
	}
	for _, h := range d.ChatHighlights {
		items = append(items, Item{Date: d.Date, Kind: KindReflection, Content: h.Text, Tags: []string{TagCompanion}, LoggedAt: h.LoggedAt})
	}
	for _, b := range d.Breathing {
		items = append(items, Item{Date: d.Date, Kind: KindRitual, Content: b.Kind, LoggedAt: b.LoggedAt})
	}
	return items
}

// Search returns the items whose content or tags contain query, ignoring
// case. Order is kept; an empty query matches everything.
func Search(items []Item, query string) []Item {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []Item{}
	for _, it := range items {
		if q == "" || strings.Contains(strings.ToLower(it.Content), q) || tagMatch(it.Tags, q) {
			out = append(out, it)
		}
	}
	return out
}

func tagMatch(tags []string, q string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}
