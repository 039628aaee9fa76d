package cycle

import "github.com/rcliao/cycle-journal/internal/model"

// Glyph is one of eight moon icons used to draw the cycle.
type Glyph string

const (
	GlyphNew            Glyph = "🌑"
	GlyphWaxingCrescent Glyph = "🌒"
	GlyphFirstQuarter   Glyph = "🌓"
	GlyphWaxingGibbous  Glyph = "🌔"
	GlyphFull           Glyph = "🌕"
	GlyphWaningGibbous  Glyph = "🌖"
	GlyphLastQuarter    Glyph = "🌗"
	GlyphWaningCrescent Glyph = "🌘"
)

// Glyphs lists every glyph in moon order.
var Glyphs = []Glyph{
	GlyphNew, GlyphWaxingCrescent, GlyphFirstQuarter, GlyphWaxingGibbous,
	GlyphFull, GlyphWaningGibbous, GlyphLastQuarter, GlyphWaningCrescent,
}

// GlyphFor maps a cycle day to its band: period, waxing, pre-ovulation,
// ovulation, waning, late luteal.
func GlyphFor(cfg model.CycleConfig, day int) Glyph {
	ov := OvulationDay(cfg)
	switch {
	case day <= cfg.PeriodDurationDays:
		return GlyphNew
	case day < ov-3:
		return GlyphWaxingCrescent
	case day < ov:
		return GlyphFirstQuarter
	case day == ov:
		return GlyphFull
	case day < ov+4:
		return GlyphWaningGibbous
	case day < cfg.CycleLengthDays-2:
		return GlyphLastQuarter
	default:
		return GlyphWaningCrescent
	}
}
