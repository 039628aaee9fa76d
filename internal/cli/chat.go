package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/cycle-journal/internal/companion"
	"github.com/rcliao/cycle-journal/internal/cycle"
)

// replier answers chat messages; tests swap it.
var replier companion.Replier = companion.Canned{}

func init() {
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Talk to the companion",
		Args:  cobra.MinimumNArgs(1),
		Run:   runChat,
	}
	cmd.Flags().Bool("highlight", false, "Save the message and reply to today as a chat highlight")

	RootCmd.AddCommand(cmd)
}

type chatResult struct {
	Request  companion.Request  `json:"request" yaml:"request"`
	Response companion.Response `json:"response" yaml:"response"`
}

func runChat(cmd *cobra.Command, args []string) {
	highlight, _ := cmd.Flags().GetBool("highlight")

	svc := mustOpen(cmd)
	defer svc.Close()

	ctx := cmd.Context()
	cfg, err := svc.store.Config(ctx)
	if err != nil {
		exitErr("load config", err)
	}
	st, err := cycle.Compute(cfg, svc.clock.Now())
	if err != nil {
		exitErr("chat", err)
	}
	today, err := svc.store.GetToday(ctx)
	if today == nil {
		exitErr("chat", err)
	}

	req, err := companion.NewRequest(textArg(args), st.Phase, companion.HistoryOf(today), companion.ContextOf(today))
	if err != nil {
		exitErr("chat", err)
	}
	resp, err := replier.Reply(ctx, req)
	if err != nil {
		exitErr("chat", err)
	}

	if highlight {
		_, err := svc.store.AddChatHighlight(ctx, companion.Exchange(req.Message, resp.Reply))
		checkWrite("save highlight", err)
	}

	output(chatResult{Request: req, Response: resp}, func(w io.Writer) {
		fmt.Fprintln(w, resp.Reply)
	})
}
