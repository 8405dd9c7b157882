// Package result persists analysis records and batch run summaries as JSON.
package result

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jdgilhuly/go_text_analyzer/pkg/provider"
	"github.com/jdgilhuly/go_text_analyzer/pkg/runner"
)

// RunSummary is the top-level structure persisted to JSON for each batch run.
type RunSummary struct {
	RunID      string        `json:"run_id"`
	SuiteName  string        `json:"suite_name"`
	Provider   string        `json:"provider"`
	Capability string        `json:"capability"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Duration   time.Duration `json:"duration"`
	Stats      Stats         `json:"stats"`
	Results    []CaseResult  `json:"results"`
}

// Stats holds aggregate statistics for the run.
type Stats struct {
	TotalCases        int           `json:"total_cases"`
	PassedCases       int           `json:"passed_cases"`
	FailedCases       int           `json:"failed_cases"`
	ErroredCases      int           `json:"errored_cases"`
	PassRate          float64       `json:"pass_rate"`
	LatencyP50        time.Duration `json:"latency_p50"`
	LatencyP95        time.Duration `json:"latency_p95"`
	TotalInputTokens  int           `json:"total_input_tokens"`
	TotalOutputTokens int           `json:"total_output_tokens"`
	EstimatedCost     float64       `json:"estimated_cost_usd"`
}

// CaseResult is the per-case result stored in the JSON output. FailedCases
// counts expectation mismatches; ErroredCases counts failed calls.
type CaseResult struct {
	CaseID         string        `json:"case_id"`
	CaseName       string        `json:"case_name"`
	Text           string        `json:"text"`
	Model          string        `json:"model,omitempty"`
	Dominant       string        `json:"dominant,omitempty"`
	ExpectDominant string        `json:"expect_dominant,omitempty"`
	Pass           bool          `json:"pass"`
	Error          string        `json:"error,omitempty"`
	Duration       time.Duration `json:"duration"`
	InputTokens    int           `json:"input_tokens"`
	OutputTokens   int           `json:"output_tokens"`
	Cost           float64       `json:"cost_usd"`
}

// FromRunResult converts a runner.RunResult into a RunSummary and computes
// its statistics.
func FromRunResult(rr *runner.RunResult) *RunSummary {
	summary := &RunSummary{
		RunID:      rr.RunID,
		SuiteName:  rr.SuiteName,
		Provider:   rr.Provider,
		Capability: rr.Capability,
		StartTime:  rr.StartTime,
		EndTime:    rr.EndTime,
		Duration:   rr.Duration,
	}

	for _, cr := range rr.Cases {
		caseResult := CaseResult{
			CaseID:         cr.CaseID,
			CaseName:       cr.CaseName,
			Text:           cr.Text,
			Model:          cr.Result.Model,
			Dominant:       cr.Dominant,
			ExpectDominant: cr.ExpectDominant,
			Pass:           cr.Pass,
			Error:          cr.Result.Error,
			Duration:       cr.Duration,
		}
		if u := cr.Result.Usage; u != nil {
			caseResult.InputTokens = u.InputTokens
			caseResult.OutputTokens = u.OutputTokens
			caseResult.Cost = provider.EstimateCost(caseResult.Model, provider.Usage{
				InputTokens:  u.InputTokens,
				OutputTokens: u.OutputTokens,
			})
		}
		summary.Results = append(summary.Results, caseResult)
	}

	summary.Stats = ComputeStats(summary.Results)
	return summary
}

// ComputeStats calculates aggregate statistics from a slice of CaseResults.
func ComputeStats(results []CaseResult) Stats {
	s := Stats{TotalCases: len(results)}
	if len(results) == 0 {
		return s
	}

	var durations []time.Duration

	for _, r := range results {
		if r.Error != "" {
			s.ErroredCases++
		} else if r.Pass {
			s.PassedCases++
		} else {
			s.FailedCases++
		}
		durations = append(durations, r.Duration)
		s.TotalInputTokens += r.InputTokens
		s.TotalOutputTokens += r.OutputTokens
		s.EstimatedCost += r.Cost
	}

	nonErrored := s.TotalCases - s.ErroredCases
	if nonErrored > 0 {
		s.PassRate = float64(s.PassedCases) / float64(nonErrored)
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	s.LatencyP50 = percentile(durations, 0.5)
	s.LatencyP95 = percentile(durations, 0.95)

	return s
}

// percentile returns the value at the given percentile (0.0-1.0) from a
// sorted slice of durations.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := p * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return time.Duration(float64(sorted[lower])*(1-frac) + float64(sorted[upper])*frac)
}

// DefaultPath returns the default output file path for a run summary.
func DefaultPath(outputDir, suiteName string, startTime time.Time) string {
	filename := fmt.Sprintf("%s-batch-%s.json", startTime.Format("20060102-150405"), slug(suiteName))
	return filepath.Join(outputDir, filename)
}

// Save writes the RunSummary as pretty-printed JSON to the given path.
// Parent directories are created automatically.
func (s *RunSummary) Save(path string) error {
	return writeJSON(path, s)
}

// LoadSummary reads a RunSummary from a JSON file.
func LoadSummary(path string) (*RunSummary, error) {
	var s RunSummary
	if err := readJSON(path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating result directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing result to %s: %w", path, err)
	}

	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading result file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing result file %s: %w", path, err)
	}
	return nil
}
