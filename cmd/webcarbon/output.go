package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Kevdacosta07/CarbWeb/internal/analyzer"
	"github.com/Kevdacosta07/CarbWeb/internal/carbon"
)

var printer = message.NewPrinter(language.English)

// gradeColor picks the display color of an environmental grade.
func gradeColor(g carbon.Grade) *color.Color {
	switch g {
	case carbon.GradeAPlus, carbon.GradeA:
		return color.New(color.FgGreen, color.Bold)
	case carbon.GradeB, carbon.GradeC:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// writeResultTable prints the report as a summary table followed by the
// equivalences, the suggestions and the optional projection.
func writeResultTable(w io.Writer, res *analyzer.Result, useColor bool) error {
	grade := string(res.Grade)
	if useColor {
		grade = gradeColor(res.Grade).Sprint(grade)
	}

	hosting := yesNo(res.Hosting.IsGreen)
	switch {
	case !res.HostingChecked:
		hosting = "unknown"
	case res.Hosting.ProviderName != "":
		hosting += " (" + res.Hosting.ProviderName + ")"
	}

	summary := tablewriter.NewWriter(w)
	summary.Header([]string{"Metric", "Value"})
	summary.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	rows := [][]string{
		{"URL", res.URL},
		{"Strategy", res.StrategyDescription},
		{"Grade", grade},
		{"Environmental score", printer.Sprintf("%d/100", res.EnvironmentalScore)},
		{"CO2 per visit", printer.Sprintf("%.3f g", res.CO2PerVisitGrams)},
		{"Estimated visitors/month", printer.Sprintf("%d", res.EstimatedMonthlyVisitors)},
		{"Annual CO2 (estimated)", printer.Sprintf("%.2f kg", res.AnnualCO2Kg)},
		{"Page weight", printer.Sprintf("%.2f MB", res.TotalSizeMB)},
		{"Requests", printer.Sprintf("%d", res.Resources.RequestCount)},
		{"Performance score", printer.Sprintf("%d/100", res.PerformanceScore)},
		{"Green hosting", hosting},
		{"Web median", res.Comparison.VsMedianStatement},
	}
	if err := summary.Bulk(rows); err != nil {
		return err
	}
	if err := summary.Render(); err != nil {
		return err
	}

	if len(res.Equivalences) > 0 {
		if _, err := fmt.Fprintln(w, "\nEquivalent to"); err != nil {
			return err
		}
		eq := tablewriter.NewWriter(w)
		eq.Header([]string{"", "Value", "Label"})
		data := make([][]string, 0, len(res.Equivalences))
		for _, item := range res.Equivalences {
			data = append(data, []string{item.Icon, item.FormattedValue, item.Label})
		}
		if err := eq.Bulk(data); err != nil {
			return err
		}
		if err := eq.Render(); err != nil {
			return err
		}
	}

	if len(res.Suggestions) > 0 {
		if _, err := fmt.Fprintln(w, "\nSuggestions"); err != nil {
			return err
		}
		for _, s := range res.Suggestions {
			if _, err := fmt.Fprintf(w, "  - %s\n", s); err != nil {
				return err
			}
		}
	}

	if res.Projection != nil {
		if _, err := fmt.Fprintf(w, "\nProjection\n  %s\n", res.Projection.Summary); err != nil {
			return err
		}
	}
	return nil
}
