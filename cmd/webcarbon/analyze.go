package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Kevdacosta07/CarbWeb/internal/analyzer"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		strategy string
		visitors int
		output   string
	)

	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze one page and print its carbon report.",
		Example: `  webcarbon analyze greenpages.dev
  webcarbon analyze https://greenpages.dev/pricing --strategy desktop --visitors 20000 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputTable && output != outputJSON {
				return fmt.Errorf("invalid output format %q: must be %s or %s", output, outputTable, outputJSON)
			}

			an, err := buildAnalyzer(a.cfg, a.logger, nil)
			if err != nil {
				return err
			}

			res, err := an.Analyze(cmd.Context(), analyzer.Request{
				URL:             args[0],
				Strategy:        strategy,
				MonthlyVisitors: visitors,
			})
			if err != nil {
				return err
			}

			if output == outputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return writeResultTable(cmd.OutOrStdout(), res, !color.NoColor)
		},
	}

	f := cmd.Flags()
	f.StringVar(&strategy, "strategy", "mobile", "Audit device profile: mobile or desktop")
	f.IntVar(&visitors, "visitors", 0, "Monthly visitors for the annual projection (100 to 100000; 0 skips it)")
	f.StringVarP(&output, "output", "o", outputTable, "Output format: table or json")
	return cmd
}
