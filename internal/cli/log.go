package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/cycle-journal/internal/model"
	"github.com/rcliao/cycle-journal/internal/store"
)

func init() {
	mood := &cobra.Command{
		Use:   "mood <value>",
		Short: "Set today's mood (replaces any earlier mood)",
		Args:  cobra.MinimumNArgs(1),
		Run:   runMood,
	}
	mood.Flags().IntP("intensity", "i", 0, "Intensity 1-5 (0 = unset)")
	mood.Flags().StringP("tags", "t", "", "Comma-separated tags")

	journal := &cobra.Command{
		Use:   "journal [text]",
		Short: "Add a reflection to today",
		Long:  "Add a reflection to today. Text can be a positional arg or piped via stdin.",
		Run:   runJournal,
	}

	breathe := &cobra.Command{
		Use:   "breathe",
		Short: "Record a completed breathing session",
		Run:   runBreathe,
	}
	breathe.Flags().StringP("kind", "k", model.DefaultBreathingKind, "Kind of session")

	highlight := &cobra.Command{
		Use:   "highlight [text]",
		Short: "Save a companion chat excerpt to today",
		Run:   runHighlight,
	}

	activity := &cobra.Command{
		Use:   "activity",
		Short: "Toggle the activity log for a day",
		Run:   runActivity,
	}
	activity.Flags().String("date", "", "Day YYYY-MM-DD (default: today)")

	period := &cobra.Command{
		Use:   "period",
		Short: "Log a period start; a current or later date also resets the cycle start",
		Run:   runPeriod,
	}
	period.Flags().String("date", "", "Day YYYY-MM-DD (default: today)")

	RootCmd.AddCommand(mood, journal, breathe, highlight, activity, period)
}

// runWrite opens the store, applies write and prints the resulting day.
func runWrite(cmd *cobra.Command, name string, write func(ctx context.Context, s *store.Store, svc *service) (*model.DayMemory, error)) {
	svc := mustOpen(cmd)
	defer svc.Close()

	d, err := write(cmd.Context(), svc.store, svc)
	if d == nil {
		exitErr(name, err)
	}
	checkWrite(name, err)
	output(d, func(w io.Writer) { writeDay(w, d) })
}

func runMood(cmd *cobra.Command, args []string) {
	value := textArg(args)
	intensity, _ := cmd.Flags().GetInt("intensity")
	tags, _ := cmd.Flags().GetString("tags")

	var level *int
	if intensity != 0 {
		if intensity < 1 || intensity > 5 {
			exitErr("mood", fmt.Errorf("intensity must be 1-5, got %d", intensity))
		}
		level = &intensity
	}
	runWrite(cmd, "mood", func(ctx context.Context, s *store.Store, _ *service) (*model.DayMemory, error) {
		return s.SetMood(ctx, value, level, splitTags(tags))
	})
}

func runJournal(cmd *cobra.Command, args []string) {
	text := textArg(args)
	runWrite(cmd, "journal", func(ctx context.Context, s *store.Store, _ *service) (*model.DayMemory, error) {
		return s.AddJournalEntry(ctx, text)
	})
}

func runBreathe(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	runWrite(cmd, "breathe", func(ctx context.Context, s *store.Store, _ *service) (*model.DayMemory, error) {
		return s.LogBreathing(ctx, kind)
	})
}

func runHighlight(cmd *cobra.Command, args []string) {
	text := textArg(args)
	runWrite(cmd, "highlight", func(ctx context.Context, s *store.Store, _ *service) (*model.DayMemory, error) {
		return s.AddChatHighlight(ctx, text)
	})
}

func runActivity(cmd *cobra.Command, args []string) {
	runWrite(cmd, "activity", func(ctx context.Context, s *store.Store, svc *service) (*model.DayMemory, error) {
		return s.ToggleActivity(ctx, dayFlag(cmd, svc))
	})
}

func runPeriod(cmd *cobra.Command, args []string) {
	runWrite(cmd, "period", func(ctx context.Context, s *store.Store, svc *service) (*model.DayMemory, error) {
		return s.LogPeriodStart(ctx, dayFlag(cmd, svc))
	})
}
