package cycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/cycle-journal/internal/model"
)

func TestMonth(t *testing.T) {
	activity := DaySet{"2024-01-10": true}
	periods := DaySet{"2024-01-20": true}

	days, err := Month(testConfig(), 2024, time.January, activity, periods)
	require.NoError(t, err)
	require.Len(t, days, 31)

	for _, a := range days[:5] {
		assert.True(t, a.Period, a.Date)
		assert.Equal(t, GlyphNew, a.Glyph)
	}
	assert.False(t, days[5].Period)

	assert.True(t, days[9].Activity)
	assert.False(t, days[10].Activity)

	assert.True(t, days[19].Period, "logged period start overlays")
	assert.Equal(t, 20, days[19].CycleDay)

	// second cycle of the month is not inside the current window
	assert.Equal(t, 1, days[28].CycleDay)
	assert.False(t, days[28].Period)
	assert.Equal(t, GlyphNew, days[28].Glyph)
}

func TestAnnotateBeforeStart(t *testing.T) {
	a, err := Annotate(testConfig(), date(t, "2023-11-15"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "2023-11-15", a.Date)
	assert.GreaterOrEqual(t, a.CycleDay, 1)
	assert.LessOrEqual(t, a.CycleDay, 28)
	assert.False(t, a.Period)
}

func TestAnnotateBadConfig(t *testing.T) {
	cfg := model.CycleConfig{CycleStart: "2024-01-01"}
	_, err := Annotate(cfg, date(t, "2024-01-01"), nil, nil)
	assert.ErrorIs(t, err, model.ErrConfigInvalid)

	_, err = Month(cfg, 2024, time.January, nil, nil)
	assert.ErrorIs(t, err, model.ErrConfigInvalid)
}
