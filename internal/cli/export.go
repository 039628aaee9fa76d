package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the configuration and every day",
		Long:  "Export the configuration and every recorded day as JSON (default) or YAML (--format yaml).",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	svc := mustOpen(cmd)
	defer svc.Close()

	exp, err := svc.store.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}
	output(exp, nil)
}
