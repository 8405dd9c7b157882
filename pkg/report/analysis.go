package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
	"github.com/jdgilhuly/go_text_analyzer/pkg/result"
)

// barWidth is the number of cells a 100% sentiment bar spans.
const barWidth = 40

// PrintResult writes one analysis result in human-readable form.
func PrintResult(w io.Writer, providerName string, c analysis.Capability, r analysis.Result, color bool) {
	p := painter(color)
	fmt.Fprintf(w, "%s\n", p(colorBold, fmt.Sprintf("%s · %s", providerName, c)))

	if !r.OK() {
		fmt.Fprintf(w, "  %s %s\n", p(colorRed, "Error:"), r.Error)
		return
	}

	switch c {
	case analysis.Sentiment:
		printSentiment(w, r, p)
	case analysis.NER:
		printEntities(w, r)
	case analysis.Classification:
		printCategories(w, r, p)
	}

	if r.Model != "" {
		fmt.Fprintf(w, "  %s\n", p(colorDim, fmt.Sprintf("model %s · %s", r.Model, r.Timestamp)))
	}
}

// PrintRecord writes a saved record: its header, input text and result.
func PrintRecord(w io.Writer, rec *result.Record, color bool) {
	p := painter(color)
	fmt.Fprintf(w, "%s\n", p(colorDim, fmt.Sprintf("record %s · saved %s", rec.ID, rec.SavedAt.Format("2006-01-02 15:04:05"))))
	fmt.Fprintf(w, "Text: %s\n\n", rec.Text)

	c, err := analysis.ParseCapability(rec.Capability)
	if err != nil {
		fmt.Fprintf(w, "  %s %v\n", p(colorRed, "Error:"), err)
		return
	}
	PrintResult(w, rec.Provider, c, rec.Result, color)
}

func printSentiment(w io.Writer, r analysis.Result, p func(string, string) string) {
	s := r.Sentiment
	if s == nil {
		return
	}
	rows := []struct {
		label string
		value float64
		color string
	}{
		{"Positive", s.Positive, colorGreen},
		{"Neutral", s.Neutral, colorYellow},
		{"Negative", s.Negative, colorRed},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-9s %6.2f%%  %s\n", row.label, row.value, p(row.color, bar(row.value)))
	}
	fmt.Fprintf(w, "  Dominant: %s\n", p(colorBold, s.Dominant()))
	if r.Explanation != "" {
		fmt.Fprintf(w, "  Explanation: %s\n", r.Explanation)
	}
}

func printEntities(w io.Writer, r analysis.Result) {
	if len(r.Entities) == 0 {
		fmt.Fprintf(w, "  No entities found.\n")
	} else {
		fmt.Fprintf(w, "  %-30s  %-14s  %s\n", "ENTITY", "CATEGORY", "SPAN")
		for _, e := range r.Entities {
			fmt.Fprintf(w, "  %-30s  %-14s  %d-%d\n", truncate(e.Text, 30), e.Category, e.Start, e.End)
		}
	}
	if r.Summary != "" {
		fmt.Fprintf(w, "  Summary: %s\n", r.Summary)
	}
}

func printCategories(w io.Writer, r analysis.Result, p func(string, string) string) {
	if len(r.Categories) == 0 {
		fmt.Fprintf(w, "  No categories returned.\n")
	} else {
		fmt.Fprintf(w, "  %-24s  %10s  %s\n", "CATEGORY", "CONFIDENCE", "EXPLANATION")
		for _, c := range r.Categories {
			fmt.Fprintf(w, "  %-24s  %10.2f  %s\n", truncate(c.Name, 24), c.Confidence, c.Explanation)
		}
	}
	if r.DominantCategory != "" {
		fmt.Fprintf(w, "  Dominant: %s\n", p(colorBold, r.DominantCategory))
	}
	if r.Summary != "" {
		fmt.Fprintf(w, "  Summary: %s\n", r.Summary)
	}
}

func bar(pct float64) string {
	n := int(pct/100*barWidth + 0.5)
	if n < 0 {
		n = 0
	}
	if n > barWidth {
		n = barWidth
	}
	return strings.Repeat("█", n)
}

// painter returns a function wrapping text in an ANSI code, or a no-op when
// color is off.
func painter(color bool) func(code, s string) string {
	if !color {
		return func(_, s string) string { return s }
	}
	return func(code, s string) string { return code + s + colorReset }
}
