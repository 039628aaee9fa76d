package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	svc := mustOpen(cmd)
	defer svc.Close()

	stats, err := svc.store.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	output(stats, func(w io.Writer) {
		fmt.Fprintf(w, "backend:         %s\n", stats.Backend)
		fmt.Fprintf(w, "days:            %d", stats.Days)
		if stats.FirstDay != "" {
			fmt.Fprintf(w, " (%s to %s)", stats.FirstDay, stats.LastDay)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "moods:           %d\n", stats.Moods)
		fmt.Fprintf(w, "reflections:     %d\n", stats.JournalEntries)
		fmt.Fprintf(w, "chat highlights: %d\n", stats.ChatHighlights)
		fmt.Fprintf(w, "breathing:       %d\n", stats.Breathing)
		fmt.Fprintf(w, "activity days:   %d\n", stats.ActivityDays)
		fmt.Fprintf(w, "period starts:   %d\n", stats.PeriodStarts)
		if stats.Pending > 0 {
			fmt.Fprintf(w, "pending writes:  %d\n", stats.Pending)
		}
	})
}
