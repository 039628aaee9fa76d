package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/cycle-journal/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the cycle configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cycle configuration",
		Run:   runConfigShow,
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Change the cycle configuration; unset flags keep their value",
		Run:   runConfigSet,
	}
	set.Flags().String("name", "", "Your name")
	set.Flags().String("start", "", "First day of the current cycle, YYYY-MM-DD")
	set.Flags().Int("length", 0, "Cycle length in days")
	set.Flags().Int("duration", 0, "Period duration in days")

	cmd.AddCommand(show, set)
	RootCmd.AddCommand(cmd)
}

func writeConfig(w io.Writer, cfg model.CycleConfig) {
	if cfg.Name != "" {
		fmt.Fprintf(w, "name:            %s\n", cfg.Name)
	}
	fmt.Fprintf(w, "cycle start:     %s\n", cfg.CycleStart)
	fmt.Fprintf(w, "cycle length:    %d days\n", cfg.CycleLengthDays)
	fmt.Fprintf(w, "period duration: %d days\n", cfg.PeriodDurationDays)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	svc := mustOpen(cmd)
	defer svc.Close()

	cfg, err := svc.store.Config(cmd.Context())
	if err != nil {
		exitErr("load config", err)
	}
	output(cfg, func(w io.Writer) { writeConfig(w, cfg) })
}

func runConfigSet(cmd *cobra.Command, args []string) {
	svc := mustOpen(cmd)
	defer svc.Close()

	ctx := cmd.Context()
	cfg, err := svc.store.Config(ctx)
	if err != nil {
		exitErr("load config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		cfg.Name, _ = flags.GetString("name")
	}
	if flags.Changed("start") {
		cfg.CycleStart, _ = flags.GetString("start")
	}
	if flags.Changed("length") {
		cfg.CycleLengthDays, _ = flags.GetInt("length")
	}
	if flags.Changed("duration") {
		cfg.PeriodDurationDays, _ = flags.GetInt("duration")
	}

	saved, err := svc.store.SaveConfig(ctx, cfg)
	if err != nil {
		checkWrite("save config", err)
	}
	output(saved, func(w io.Writer) { writeConfig(w, saved) })
}
