package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/cycle-journal/internal/model"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Show today's record, creating it if needed",
		Run:   runToday,
	})

	RootCmd.AddCommand(&cobra.Command{
		Use:   "day <date>",
		Short: "Show the record of a day (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		Run:   runDay,
	})
}

func runToday(cmd *cobra.Command, args []string) {
	svc := mustOpen(cmd)
	defer svc.Close()

	d, err := svc.store.GetToday(cmd.Context())
	if d == nil {
		exitErr("today", err)
	}
	checkWrite("today", err)
	output(d, func(w io.Writer) { writeDay(w, d) })
}

func runDay(cmd *cobra.Command, args []string) {
	svc := mustOpen(cmd)
	defer svc.Close()

	d, err := svc.store.Lookup(cmd.Context(), args[0])
	if err != nil {
		exitErr("day", err)
	}
	if d == nil {
		exitErr("day", fmt.Errorf("nothing recorded on %s", args[0]))
	}
	output(d, func(w io.Writer) { writeDay(w, d) })
}

func writeDay(w io.Writer, d *model.DayMemory) {
	fmt.Fprintln(w, d.Date)
	if d.Mood != nil {
		line := "  mood: " + d.Mood.Value
		if d.Mood.Intensity != nil {
			line += fmt.Sprintf(" (%d)", *d.Mood.Intensity)
		}
		if len(d.Mood.Tags) > 0 {
			line += " [" + strings.Join(d.Mood.Tags, ", ") + "]"
		}
		fmt.Fprintln(w, line)
	}
	for _, j := range d.Journal {
		fmt.Fprintf(w, "  journal %s: %s\n", j.LoggedAt.Format("15:04"), j.Text)
	}
	for _, h := range d.ChatHighlights {
		fmt.Fprintf(w, "  highlight %s: %s\n", h.LoggedAt.Format("15:04"), h.Text)
	}
	for _, b := range d.Breathing {
		fmt.Fprintf(w, "  breathing %s: %s\n", b.LoggedAt.Format("15:04"), b.Kind)
	}
	if d.Activity {
		fmt.Fprintln(w, "  activity logged")
	}
	if d.PeriodStart {
		fmt.Fprintln(w, "  period started")
	}
	if d.IsEmpty() {
		fmt.Fprintln(w, "  nothing recorded yet")
	}
}
