// Package report renders analysis results and batch summaries for the
// terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jdgilhuly/go_text_analyzer/pkg/result"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// StatusLabel returns a colored status string for terminal display.
func StatusLabel(cr result.CaseResult) string {
	if cr.Error != "" {
		return colorRed + "ERROR" + colorReset
	}
	if cr.Pass {
		return colorGreen + "PASS" + colorReset
	}
	return colorRed + "FAIL" + colorReset
}

// StatusLabelPlain returns an uncolored status string.
func StatusLabelPlain(cr result.CaseResult) string {
	if cr.Error != "" {
		return "ERROR"
	}
	if cr.Pass {
		return "PASS"
	}
	return "FAIL"
}

// FormatDuration formats a duration for table display.
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// PrintSummaryTable writes a formatted summary table of a batch run.
func PrintSummaryTable(w io.Writer, summary *result.RunSummary, color bool) {
	sep := strings.Repeat("-", 78)
	fmt.Fprintf(w, "%s\n", sep)
	fmt.Fprintf(w, "  %s · %s · %s\n", summary.SuiteName, summary.Provider, summary.Capability)
	fmt.Fprintf(w, "%s\n", sep)
	fmt.Fprintf(w, "  %-30s  %-7s  %-20s  %8s\n", "CASE", "STATUS", "DOMINANT", "LATENCY")
	fmt.Fprintf(w, "%s\n", sep)

	for _, cr := range summary.Results {
		// Pad before coloring so escape codes don't break alignment.
		status := fmt.Sprintf("%-7s", StatusLabelPlain(cr))
		if color {
			status = strings.Replace(status, StatusLabelPlain(cr), StatusLabel(cr), 1)
		}
		dominant := cr.Dominant
		if cr.ExpectDominant != "" && !cr.Pass && cr.Error == "" {
			dominant = fmt.Sprintf("%s (want %s)", cr.Dominant, cr.ExpectDominant)
		}
		fmt.Fprintf(w, "  %-30s  %s  %-20s  %8s\n",
			truncate(cr.CaseName, 30), status, truncate(dominant, 20), FormatDuration(cr.Duration))
	}

	fmt.Fprintf(w, "%s\n", sep)
	s := summary.Stats
	if color {
		fmt.Fprintf(w, "  %s%d passed%s  %s%d failed%s  %s%d errored%s  | %s total\n",
			colorGreen, s.PassedCases, colorReset,
			colorRed, s.FailedCases, colorReset,
			colorYellow, s.ErroredCases, colorReset,
			FormatDuration(summary.Duration))
	} else {
		fmt.Fprintf(w, "  %d passed  %d failed  %d errored  | %s total\n",
			s.PassedCases, s.FailedCases, s.ErroredCases,
			FormatDuration(summary.Duration))
	}
	fmt.Fprintf(w, "  p50 %s | p95 %s | tokens: %d in / %d out | est. $%.4f\n",
		FormatDuration(s.LatencyP50), FormatDuration(s.LatencyP95),
		s.TotalInputTokens, s.TotalOutputTokens, s.EstimatedCost)
	fmt.Fprintf(w, "%s\n", sep)
}

// PrintVerbose writes the summary table followed by per-case details.
func PrintVerbose(w io.Writer, summary *result.RunSummary, color bool) {
	PrintSummaryTable(w, summary, color)

	fmt.Fprintf(w, "\n--- Detailed Results ---\n\n")

	for _, cr := range summary.Results {
		status := StatusLabelPlain(cr)
		if color {
			status = StatusLabel(cr)
		}

		fmt.Fprintf(w, "Case: %s [%s]\n", cr.CaseName, status)
		fmt.Fprintf(w, "  ID:       %s\n", cr.CaseID)
		fmt.Fprintf(w, "  Model:    %s\n", cr.Model)
		fmt.Fprintf(w, "  Latency:  %s\n", FormatDuration(cr.Duration))
		fmt.Fprintf(w, "  Tokens:   %d in / %d out\n", cr.InputTokens, cr.OutputTokens)
		if cr.Dominant != "" {
			fmt.Fprintf(w, "  Dominant: %s\n", cr.Dominant)
		}
		if cr.Error != "" {
			fmt.Fprintf(w, "  Error:    %s\n", cr.Error)
		}
		fmt.Fprintf(w, "  Text:\n")
		for _, line := range strings.Split(cr.Text, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
		fmt.Fprintln(w)
	}
}

// PrintJSON writes v as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
