package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/cycle-journal/internal/feed"
)

func init() {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show every mood, reflection and ritual, newest first",
		Run:   runFeed,
	}
	cmd.Flags().IntP("limit", "l", 0, "Max items (0 = all)")
	cmd.Flags().String("kind", "", "Filter by kind: mood, reflection or ritual")
	cmd.Flags().StringP("search", "s", "", "Only items whose text or tags contain this")

	RootCmd.AddCommand(cmd)
}

func runFeed(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	kind, _ := cmd.Flags().GetString("kind")
	query, _ := cmd.Flags().GetString("search")

	svc := mustOpen(cmd)
	defer svc.Close()

	f := svc.store.Feed(cmd.Context())
	if f.Unavailable {
		fmt.Fprintln(os.Stderr, "warning: journal history is unavailable right now")
	}
	if kind != "" {
		kept := []feed.Item{}
		for _, it := range f.Items {
			if string(it.Kind) == kind {
				kept = append(kept, it)
			}
		}
		f.Items = kept
	}
	f.Items = feed.Search(f.Items, query)
	if limit > 0 && len(f.Items) > limit {
		f.Items = f.Items[:limit]
	}

	output(f, func(w io.Writer) {
		if len(f.Items) == 0 && !f.Unavailable {
			fmt.Fprintln(w, "No entries yet.")
		}
		for _, it := range f.Items {
			line := fmt.Sprintf("%s %s  %-10s %s", it.Date, it.LoggedAt.Format("15:04"), it.Kind, it.Content)
			if len(it.Tags) > 0 {
				line += "  #" + strings.Join(it.Tags, " #")
			}
			fmt.Fprintln(w, line)
		}
	})
}
