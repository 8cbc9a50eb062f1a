package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"pixbatch/internal/batch"
)

type summaryRow struct {
	Label string
	Value string
}

func renderSummary(rows []summaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		lines = append(lines, fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value)))
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatBytes renders n with a binary unit
func formatBytes(n int64) string {
	const unit = 1024
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	if n < unit {
		return fmt.Sprintf("%s%d B", sign, n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%s%.1f %ciB", sign, float64(n)/float64(div), "KMGTPE"[exp])
}

func printBatchSummary(w io.Writer, summary batch.Summary, outputDir string) {
	outcome := string(summary.Outcome())
	rows := []summaryRow{
		{Label: "Operation", Value: summary.Operation},
		{Label: "Outcome", Value: outcome},
		{Label: "Processed", Value: fmt.Sprintf("%d of %d", summary.Completed, summary.Total)},
		{Label: "Failed", Value: fmt.Sprintf("%d", summary.Failed)},
		{Label: "Cancelled", Value: fmt.Sprintf("%d", summary.Cancelled)},
		{Label: "Space saved", Value: formatBytes(summary.SavedBytes())},
		{Label: "Duration", Value: summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond).String()},
	}
	fmt.Fprintln(w, renderSummary(rows))
	fmt.Fprintln(w, outcomeStyle(outcome).Render(summary.Message()))

	for _, r := range summary.Results {
		if r.Success || r.Cancelled {
			continue
		}
		fmt.Fprintf(w, "  %s %s %s\n", bulletStyle.Render("-"), fileStyle.Render(r.InputPath), errorStyle.Render(r.Error))
	}
	if summary.Completed > 0 {
		fmt.Fprintf(w, "Output written to: %s\n", outputDir)
	}
}

func printSingleResult(w io.Writer, result batch.SingleResult) error {
	for _, msg := range result.Errors {
		fmt.Fprintf(w, "  %s %s\n", bulletStyle.Render("-"), errorStyle.Render(msg))
	}
	if !result.Success {
		return fmt.Errorf("operation failed")
	}
	if result.OutputPath != "" {
		fmt.Fprintf(w, "%s %s\n", outcomeStyle("success").Render("Written:"), result.OutputPath)
	}
	for _, f := range result.OutputFiles {
		if f != result.OutputPath {
			fmt.Fprintf(w, "  %s %s\n", bulletStyle.Render("-"), f)
		}
	}
	return nil
}
