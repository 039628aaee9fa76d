package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/cycle-journal/internal/clock"
	"github.com/rcliao/cycle-journal/internal/cycle"
	"github.com/rcliao/cycle-journal/internal/feed"
	"github.com/rcliao/cycle-journal/internal/model"
	"github.com/rcliao/cycle-journal/internal/store"
)

// run executes the root command against a fresh local store in dir.
func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })

	base := []string{
		"--config", filepath.Join(dir, "absent.yaml"),
		"--db", filepath.Join(dir, "journal.db"),
		"--backend", "local",
		"--now", "2024-01-10",
		"--format", "json",
	}
	RootCmd.SetArgs(append(base, args...))
	require.NoError(t, RootCmd.Execute())
	return buf.String()
}

func TestNewClock(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	c, err := newClock("2024-03-31", berlin)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-31", model.DayOf(c.Now()))

	c, err = newClock("2024-03-31T23:30:00Z", berlin)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", model.DayOf(c.Now()), "day follows the configured zone")

	c, err = newClock("", berlin)
	require.NoError(t, err)
	assert.IsType(t, clock.System{}, c)

	_, err = newClock("yesterday", berlin)
	assert.Error(t, err)
}

func TestParseExport(t *testing.T) {
	exp, err := parseExport([]byte(`{"backend":"local","config":{"cycle_start":"2024-01-01","cycle_length_days":28,"period_duration_days":5},"days":[{"date":"2024-01-02","journal":[{"id":"a","text":"hi"}]}]}`))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", exp.Config.CycleStart)
	require.Len(t, exp.Days, 1)

	exp, err = parseExport([]byte(`[{"date":"2024-01-02","activity":true}]`))
	require.NoError(t, err)
	require.Len(t, exp.Days, 1)
	assert.True(t, exp.Days[0].Activity)

	exp, err = parseExport([]byte("backend: local\ndays:\n  - date: \"2024-01-03\"\n    period_start: true\n"))
	require.NoError(t, err)
	require.Len(t, exp.Days, 1)
	assert.True(t, exp.Days[0].PeriodStart)

	_, err = parseExport([]byte("[unclosed"))
	assert.Error(t, err)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"calm", "rested"}, splitTags(" calm, ,rested "))
	assert.Nil(t, splitTags(""))
}

func TestOutputFormats(t *testing.T) {
	var buf bytes.Buffer
	prev, prevFormat := stdout, formatFlag
	stdout = &buf
	t.Cleanup(func() { stdout, formatFlag = prev, prevFormat })

	v := syncResult{Sent: 2, Pending: 1}

	formatFlag = "yaml"
	output(v, nil)
	assert.Equal(t, "sent: 2\npending: 1\n", buf.String())

	buf.Reset()
	formatFlag = "text"
	output(v, nil)
	assert.JSONEq(t, `{"sent":2,"pending":1}`, buf.String(), "text without a renderer falls back to JSON")
}

func TestCommandsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	run(t, dir, "config", "set", "--start", "2024-01-01", "--length", "28", "--duration", "5", "--name", "Maya")
	run(t, dir, "mood", "Calm", "--intensity", "3", "--tags", "rested")
	run(t, dir, "journal", "slow morning")
	run(t, dir, "breathe", "--kind", "box")

	var st cycle.State
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "status")), &st))
	assert.Equal(t, 10, st.CycleDay)
	assert.Equal(t, model.PhaseFollicular, st.Phase)
	require.NotNil(t, st.Counter)
	assert.Equal(t, cycle.Counter{Value: 4, Label: cycle.CounterOvulation}, *st.Counter)

	var f feed.Feed
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "feed")), &f))
	require.Len(t, f.Items, 3)
	assert.False(t, f.Unavailable)

	var stats store.Stats
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "stats")), &stats))
	assert.Equal(t, 1, stats.Moods)
	assert.Equal(t, 1, stats.JournalEntries)
	assert.Equal(t, 1, stats.Breathing)

	var day model.DayMemory
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "day", "2024-01-10")), &day))
	assert.Equal(t, "Calm", day.Mood.Value)
}

func TestChatKeepsExchangeAsHistory(t *testing.T) {
	dir := t.TempDir()

	var first chatResult
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "chat", "rough day", "--highlight")), &first))
	assert.Empty(t, first.Request.History)
	assert.Contains(t, first.Response.Reply, "Period phase")

	var second chatResult
	require.NoError(t, json.Unmarshal([]byte(run(t, dir, "chat", "still here", "--highlight")), &second))
	require.Len(t, second.Request.History, 2)
	assert.Equal(t, "rough day", second.Request.History[0].Text)
	assert.Equal(t, first.Response.Reply, second.Request.History[1].Text)
}
