// Package diff compares two saved batch runs case by case, typically the
// same suite run against two providers.
package diff

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jdgilhuly/go_text_analyzer/pkg/result"
)

// Category classifies a case comparison.
type Category string

const (
	Improved  Category = "improved"
	Regressed Category = "regressed"
	Unchanged Category = "unchanged"
	New       Category = "new"
	Removed   Category = "removed"
)

// CaseDiff represents the comparison of a single case between two runs.
type CaseDiff struct {
	CaseName  string   `json:"case_name"`
	Category  Category `json:"category"`
	StatusA   string   `json:"status_a,omitempty"`
	StatusB   string   `json:"status_b,omitempty"`
	DominantA string   `json:"dominant_a,omitempty"`
	DominantB string   `json:"dominant_b,omitempty"`
	Agree     bool     `json:"agree"`
}

// DiffResult holds the full comparison between two runs.
type DiffResult struct {
	RunA      string     `json:"run_a"`
	RunB      string     `json:"run_b"`
	ProviderA string     `json:"provider_a"`
	ProviderB string     `json:"provider_b"`
	Cases     []CaseDiff `json:"cases"`
	Summary
}

// Summary holds counts by category. Agreed counts matched cases whose
// dominant labels are equal.
type Summary struct {
	Improved  int `json:"improved"`
	Regressed int `json:"regressed"`
	Unchanged int `json:"unchanged"`
	New       int `json:"new"`
	Removed   int `json:"removed"`
	Agreed    int `json:"agreed"`
}

// Compare produces a diff between two run summaries. Cases are matched by
// case_name. A case improves when its status moves up the order
// error < fail < pass, and regresses when it moves down.
func Compare(a, b *result.RunSummary) *DiffResult {
	dr := &DiffResult{
		RunA:      a.RunID,
		RunB:      b.RunID,
		ProviderA: a.Provider,
		ProviderB: b.Provider,
	}

	aMap := make(map[string]result.CaseResult, len(a.Results))
	for _, cr := range a.Results {
		aMap[cr.CaseName] = cr
	}

	seen := make(map[string]bool, len(b.Results))
	for _, crB := range b.Results {
		seen[crB.CaseName] = true

		crA, inA := aMap[crB.CaseName]
		cd := CaseDiff{
			CaseName:  crB.CaseName,
			StatusB:   statusStr(crB),
			DominantB: crB.Dominant,
		}

		if !inA {
			cd.Category = New
			dr.Summary.New++
			dr.Cases = append(dr.Cases, cd)
			continue
		}

		cd.StatusA = statusStr(crA)
		cd.DominantA = crA.Dominant
		cd.Agree = crA.Dominant != "" && strings.EqualFold(crA.Dominant, crB.Dominant)
		if cd.Agree {
			dr.Summary.Agreed++
		}

		switch delta := rank(crB) - rank(crA); {
		case delta > 0:
			cd.Category = Improved
			dr.Summary.Improved++
		case delta < 0:
			cd.Category = Regressed
			dr.Summary.Regressed++
		default:
			cd.Category = Unchanged
			dr.Summary.Unchanged++
		}
		dr.Cases = append(dr.Cases, cd)
	}

	// Cases in A but not in B are removed.
	for _, crA := range a.Results {
		if !seen[crA.CaseName] {
			dr.Cases = append(dr.Cases, CaseDiff{
				CaseName:  crA.CaseName,
				Category:  Removed,
				StatusA:   statusStr(crA),
				DominantA: crA.Dominant,
			})
			dr.Summary.Removed++
		}
	}

	return dr
}

// Filter returns a new DiffResult with only cases matching the given
// categories. Pass nil to include all.
func (dr *DiffResult) Filter(categories []Category) *DiffResult {
	if len(categories) == 0 {
		return dr
	}

	catSet := make(map[Category]bool, len(categories))
	for _, c := range categories {
		catSet[c] = true
	}

	filtered := &DiffResult{
		RunA:      dr.RunA,
		RunB:      dr.RunB,
		ProviderA: dr.ProviderA,
		ProviderB: dr.ProviderB,
	}
	for _, cd := range dr.Cases {
		if catSet[cd.Category] {
			filtered.Cases = append(filtered.Cases, cd)
		}
	}
	filtered.Summary = dr.Summary
	return filtered
}

// JSON serializes the diff result.
func (dr *DiffResult) JSON() ([]byte, error) {
	return json.MarshalIndent(dr, "", "  ")
}

// PrintTable writes a formatted diff table.
func (dr *DiffResult) PrintTable(w io.Writer) {
	sep := strings.Repeat("-", 86)
	fmt.Fprintf(w, "%s\n", sep)
	fmt.Fprintf(w, "  A: %s (%s)   B: %s (%s)\n", dr.ProviderA, dr.RunA, dr.ProviderB, dr.RunB)
	fmt.Fprintf(w, "%s\n", sep)
	fmt.Fprintf(w, "  %-25s  %-10s  %-6s  %-6s  %-14s  %-14s\n", "CASE", "CHANGE", "A", "B", "DOMINANT A", "DOMINANT B")
	fmt.Fprintf(w, "%s\n", sep)

	for _, cd := range dr.Cases {
		name := cd.CaseName
		if len(name) > 25 {
			name = name[:22] + "..."
		}
		domB := cd.DominantB
		if cd.Category != New && cd.Category != Removed && !cd.Agree {
			domB += " *"
		}
		fmt.Fprintf(w, "  %-25s  %-10s  %-6s  %-6s  %-14s  %-14s\n",
			name, string(cd.Category), dash(cd.StatusA), dash(cd.StatusB), dash(cd.DominantA), dash(domB))
	}

	fmt.Fprintf(w, "%s\n", sep)
	fmt.Fprintf(w, "  %d improved  %d regressed  %d unchanged  %d new  %d removed  | %d agree\n",
		dr.Summary.Improved, dr.Summary.Regressed, dr.Summary.Unchanged,
		dr.Summary.New, dr.Summary.Removed, dr.Summary.Agreed)
	fmt.Fprintf(w, "%s\n", sep)
}

func rank(cr result.CaseResult) int {
	switch {
	case cr.Error != "":
		return 0
	case !cr.Pass:
		return 1
	default:
		return 2
	}
}

func statusStr(cr result.CaseResult) string {
	if cr.Error != "" {
		return "error"
	}
	if cr.Pass {
		return "pass"
	}
	return "fail"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
