package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/cycle-journal/internal/cycle"
	"github.com/rcliao/cycle-journal/internal/model"
)

func init() {
	status := &cobra.Command{
		Use:   "status",
		Short: "Show the cycle phase, countdown and seven-day strip",
		Run:   runStatus,
	}
	status.Flags().String("date", "", "Reference date YYYY-MM-DD (default: today)")

	calendar := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month annotated with cycle days, glyphs and logs",
		Run:   runCalendar,
	}
	calendar.Flags().String("month", "", "Month YYYY-MM (default: this month)")

	RootCmd.AddCommand(status, calendar)
}

func runStatus(cmd *cobra.Command, args []string) {
	svc := mustOpen(cmd)
	defer svc.Close()

	cfg, err := svc.store.Config(cmd.Context())
	if err != nil {
		exitErr("load config", err)
	}
	ref := svc.clock.Now()
	if d, _ := cmd.Flags().GetString("date"); d != "" {
		if ref, err = model.ParseDay(d); err != nil {
			exitErr("date", err)
		}
	}

	st, err := cycle.Compute(cfg, ref)
	if err != nil {
		exitErr("status", err)
	}
	output(st, func(w io.Writer) { writeStatus(w, cfg, st) })
}

func writeStatus(w io.Writer, cfg model.CycleConfig, st cycle.State) {
	if cfg.Name != "" {
		fmt.Fprintf(w, "Hi %s\n", cfg.Name)
	}
	fmt.Fprintf(w, "%s  Day %d of %d\n", st.Glyph, st.CycleDay, st.CycleLength)
	if st.Counter != nil {
		fmt.Fprintf(w, "%d days until %s\n", st.Counter.Value, st.Counter.Label)
	} else {
		fmt.Fprintln(w, st.PhaseLabel)
	}
	if st.ShowLogPeriodPrompt {
		fmt.Fprintln(w, "Did your period start? Log it with: cycle-journal period")
	}
	var strip []string
	for _, d := range st.Window {
		cell := fmt.Sprintf("%s %s %d", d.Label, d.Glyph, d.CycleDay)
		if d.IsToday {
			cell = "[" + cell + "]"
		}
		strip = append(strip, cell)
	}
	fmt.Fprintln(w, strings.Join(strip, "  "))
}

func runCalendar(cmd *cobra.Command, args []string) {
	svc := mustOpen(cmd)
	defer svc.Close()

	now := svc.clock.Now()
	year, month := now.Year(), now.Month()
	if m, _ := cmd.Flags().GetString("month"); m != "" {
		t, err := time.Parse("2006-01", m)
		if err != nil {
			exitErr("month", fmt.Errorf("want YYYY-MM, got %q", m))
		}
		year, month = t.Year(), t.Month()
	}

	ctx := cmd.Context()
	cfg, err := svc.store.Config(ctx)
	if err != nil {
		exitErr("load config", err)
	}
	activity, periods, err := svc.store.Sets(ctx)
	if err != nil {
		exitErr("load logs", err)
	}
	days, err := cycle.Month(cfg, year, month, activity, periods)
	if err != nil {
		exitErr("calendar", err)
	}

	output(days, func(w io.Writer) {
		for _, d := range days {
			var marks []string
			if d.Period {
				marks = append(marks, "period")
			}
			if d.Activity {
				marks = append(marks, "activity")
			}
			fmt.Fprintf(w, "%s  %s  day %2d  %-10s %s\n", d.Date, d.Glyph, d.CycleDay, d.Phase, strings.Join(marks, ","))
		}
	})
}
