package diff

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jdgilhuly/go_text_analyzer/pkg/result"
)

func runA() *result.RunSummary {
	return &result.RunSummary{
		RunID:     "run-a",
		SuiteName: "headlines",
		Provider:  "Claude",
		Results: []result.CaseResult{
			{CaseName: "stable", Dominant: "positive", Pass: true},
			{CaseName: "improved", Dominant: "neutral", ExpectDominant: "negative"},
			{CaseName: "regressed", Dominant: "positive", Pass: true},
			{CaseName: "removed-case", Dominant: "neutral", Pass: true},
		},
	}
}

func runB() *result.RunSummary {
	return &result.RunSummary{
		RunID:     "run-b",
		SuiteName: "headlines",
		Provider:  "xAI",
		Results: []result.CaseResult{
			{CaseName: "stable", Dominant: "positive", Pass: true},
			{CaseName: "improved", Dominant: "negative", ExpectDominant: "negative", Pass: true},
			{CaseName: "regressed", Error: "xAI request failed (500 Internal Server Error): boom"},
			{CaseName: "new-case", Dominant: "negative", Pass: true},
		},
	}
}

func TestCompare(t *testing.T) {
	dr := Compare(runA(), runB())

	if dr.RunA != "run-a" || dr.RunB != "run-b" {
		t.Errorf("RunA=%q RunB=%q", dr.RunA, dr.RunB)
	}
	if dr.ProviderA != "Claude" || dr.ProviderB != "xAI" {
		t.Errorf("ProviderA=%q ProviderB=%q", dr.ProviderA, dr.ProviderB)
	}
	if len(dr.Cases) != 5 {
		t.Fatalf("len(Cases) = %d, want 5", len(dr.Cases))
	}

	categories := map[string]Category{}
	for _, cd := range dr.Cases {
		categories[cd.CaseName] = cd.Category
	}

	want := map[string]Category{
		"stable":       Unchanged,
		"improved":     Improved,
		"regressed":    Regressed,
		"new-case":     New,
		"removed-case": Removed,
	}
	for name, cat := range want {
		if categories[name] != cat {
			t.Errorf("%s = %q, want %q", name, categories[name], cat)
		}
	}

	s := dr.Summary
	if s.Improved != 1 || s.Regressed != 1 || s.Unchanged != 1 || s.New != 1 || s.Removed != 1 {
		t.Errorf("Summary = %+v, want one of each", s)
	}
	if s.Agreed != 1 {
		t.Errorf("Agreed = %d, want 1", s.Agreed)
	}
}

func TestCompare_Agreement(t *testing.T) {
	dr := Compare(runA(), runB())

	agree := map[string]bool{}
	status := map[string][2]string{}
	for _, cd := range dr.Cases {
		agree[cd.CaseName] = cd.Agree
		status[cd.CaseName] = [2]string{cd.StatusA, cd.StatusB}
	}

	if !agree["stable"] {
		t.Error("stable should agree")
	}
	if agree["improved"] {
		t.Error("improved should disagree (neutral vs negative)")
	}
	if agree["regressed"] {
		t.Error("an errored case cannot agree")
	}
	if got := status["regressed"]; got != [2]string{"pass", "error"} {
		t.Errorf("regressed status = %v", got)
	}
	if got := status["improved"]; got != [2]string{"fail", "pass"} {
		t.Errorf("improved status = %v", got)
	}
}

func TestCompare_Empty(t *testing.T) {
	a := &result.RunSummary{RunID: "a"}
	b := &result.RunSummary{RunID: "b"}
	dr := Compare(a, b)
	if len(dr.Cases) != 0 {
		t.Errorf("len(Cases) = %d, want 0", len(dr.Cases))
	}
}

func TestFilter(t *testing.T) {
	dr := Compare(runA(), runB())

	filtered := dr.Filter([]Category{Improved, Regressed})
	if len(filtered.Cases) != 2 {
		t.Fatalf("filtered len(Cases) = %d, want 2", len(filtered.Cases))
	}
	for _, cd := range filtered.Cases {
		if cd.Category != Improved && cd.Category != Regressed {
			t.Errorf("unexpected category %q in filtered results", cd.Category)
		}
	}
	if filtered.ProviderB != "xAI" {
		t.Errorf("filtered ProviderB = %q", filtered.ProviderB)
	}
}

func TestFilter_Nil(t *testing.T) {
	dr := Compare(runA(), runB())
	filtered := dr.Filter(nil)
	if len(filtered.Cases) != len(dr.Cases) {
		t.Errorf("nil filter returned %d cases, want %d", len(filtered.Cases), len(dr.Cases))
	}
}

func TestJSON(t *testing.T) {
	dr := Compare(runA(), runB())
	data, err := dr.JSON()
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	for _, want := range []string{`"improved"`, `"provider_b": "xAI"`, `"agreed": 1`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON output missing %s", want)
		}
	}
}

func TestPrintTable(t *testing.T) {
	dr := Compare(runA(), runB())

	var buf bytes.Buffer
	dr.PrintTable(&buf)
	output := buf.String()

	for _, want := range []string{
		"A: Claude (run-a)", "B: xAI (run-b)",
		"CASE", "CHANGE", "DOMINANT A", "DOMINANT B",
		"stable", "improved", "regressed", "new-case", "removed-case",
		"negative *",
		"1 improved", "1 regressed", "1 unchanged", "1 new", "1 removed", "1 agree",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("table output missing %q", want)
		}
	}
}
