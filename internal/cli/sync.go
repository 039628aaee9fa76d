package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Retry remote writes queued while the database was unreachable",
		Run:   runSync,
	}
	cmd.Flags().Bool("reset", false, "Clear attempt counters first, so exhausted writes are retried")

	RootCmd.AddCommand(cmd)
}

type syncResult struct {
	Sent    int    `json:"sent" yaml:"sent"`
	Pending int    `json:"pending" yaml:"pending"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runSync(cmd *cobra.Command, args []string) {
	reset, _ := cmd.Flags().GetBool("reset")

	svc := mustOpen(cmd)
	defer svc.Close()

	ctx := cmd.Context()
	if reset {
		if err := svc.store.ResetRetries(ctx); err != nil {
			exitErr("reset retries", err)
		}
	}

	var res syncResult
	sent, syncErr := svc.store.Sync(ctx)
	res.Sent = sent
	if syncErr != nil {
		res.Error = syncErr.Error()
	}
	pending, err := svc.store.Pending(ctx)
	if err != nil {
		exitErr("sync", err)
	}
	res.Pending = len(pending)

	output(res, func(w io.Writer) {
		fmt.Fprintf(w, "sent %d, %d still queued\n", res.Sent, res.Pending)
		if res.Error != "" {
			fmt.Fprintf(w, "last error: %s\n", res.Error)
		}
	})
	if syncErr != nil {
		exitErr("sync", syncErr)
	}
}
