package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/cycle-journal/internal/model"
	"github.com/rcliao/cycle-journal/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import days from an export",
		Long:  "Import days from JSON or YAML (stdin or --file). Expects the format produced by export; entries already present are skipped.",
		Run:   runImport,
	}
	cmd.Flags().String("file", "", "Read from this file instead of stdin")
	cmd.Flags().Bool("with-config", false, "Also replace the cycle configuration")

	RootCmd.AddCommand(cmd)
}

type importResult struct {
	OK       bool `json:"ok" yaml:"ok"`
	Imported int  `json:"imported" yaml:"imported"`
}

// parseExport accepts an export document or a bare list of days, in JSON
// or YAML.
func parseExport(data []byte) (*store.Export, error) {
	var exp store.Export
	if err := json.Unmarshal(data, &exp); err == nil {
		return &exp, nil
	}
	var days []*model.DayMemory
	if err := json.Unmarshal(data, &days); err == nil {
		return &store.Export{Days: days}, nil
	}
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("not a JSON or YAML export: %w", err)
	}
	return &exp, nil
}

func runImport(cmd *cobra.Command, args []string) {
	file, _ := cmd.Flags().GetString("file")
	withConfig, _ := cmd.Flags().GetBool("with-config")

	var (
		data []byte
		err  error
	)
	if file != "" {
		data, err = os.ReadFile(file)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	exp, err := parseExport(data)
	if err != nil {
		exitErr("parse", err)
	}

	svc := mustOpen(cmd)
	defer svc.Close()

	ctx := cmd.Context()
	if withConfig && exp.Config.CycleStart != "" {
		if _, err := svc.store.SaveConfig(ctx, exp.Config); err != nil {
			checkWrite("import config", err)
		}
	}

	imported, err := svc.store.Import(ctx, exp.Days)
	checkWrite("import", err)

	res := importResult{OK: true, Imported: imported}
	output(res, func(w io.Writer) { fmt.Fprintf(w, "imported %d entries\n", imported) })
}
