// Package runner executes batch suites through the analyzer, one case at a
// time.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
	"github.com/jdgilhuly/go_text_analyzer/pkg/logging"
	"github.com/jdgilhuly/go_text_analyzer/pkg/suite"
)

// Analyzer runs one analysis call. *registry.Registry satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, providerName, capability, text string) analysis.Result
}

// CaseResult holds the outcome of a single case.
type CaseResult struct {
	CaseID         string          `json:"case_id"`
	CaseName       string          `json:"case_name"`
	Text           string          `json:"text"`
	ExpectDominant string          `json:"expect_dominant,omitempty"`
	Dominant       string          `json:"dominant,omitempty"`
	Pass           bool            `json:"pass"`
	Result         analysis.Result `json:"result"`
	Duration       time.Duration   `json:"duration"`
}

// Errored reports whether the analysis call itself failed.
func (c CaseResult) Errored() bool { return !c.Result.OK() }

// RunResult holds the output from an entire suite run.
type RunResult struct {
	RunID      string        `json:"run_id"`
	SuiteName  string        `json:"suite_name"`
	Provider   string        `json:"provider"`
	Capability string        `json:"capability"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Duration   time.Duration `json:"duration"`
	Cases      []CaseResult  `json:"cases"`
}

// ProgressFunc is called after each case completes. Index is 0-based,
// total is the number of cases.
type ProgressFunc func(index, total int, caseName string, elapsed time.Duration, err error)

// Runner runs suites sequentially against an Analyzer.
type Runner struct {
	analyzer Analyzer
	logger   *zap.Logger
}

// New creates a Runner. A nil logger discards log output.
func New(a Analyzer, logger *zap.Logger) *Runner {
	return &Runner{analyzer: a, logger: logging.OrNop(logger)}
}

// Run analyzes every case in s in order, with one request in flight. The
// suite must already be validated. If ctx is cancelled, Run stops before
// the next case and returns the partial result along with ctx.Err().
func (r *Runner) Run(ctx context.Context, s *suite.Suite, progress ProgressFunc) (*RunResult, error) {
	c, err := analysis.ParseCapability(s.Capability)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:      uuid.NewString(),
		SuiteName:  s.Name,
		Provider:   s.Provider,
		Capability: c.String(),
		StartTime:  time.Now(),
		Cases:      make([]CaseResult, 0, len(s.Cases)),
	}
	log := r.logger.With(zap.String("run_id", result.RunID), zap.String("suite", s.Name))
	log.Info("batch started",
		zap.String("provider", s.Provider),
		zap.String("capability", c.Slug()),
		zap.Int("cases", len(s.Cases)))

	var runErr error
	for i, tc := range s.Cases {
		if err := ctx.Err(); err != nil {
			runErr = err
			log.Warn("batch cancelled", zap.Int("completed", i))
			break
		}

		cr := r.runCase(ctx, s.Provider, c, tc)
		result.Cases = append(result.Cases, cr)

		if progress != nil {
			var caseErr error
			switch {
			case cr.Errored():
				caseErr = errors.New(cr.Result.Error)
			case !cr.Pass:
				caseErr = fmt.Errorf("expected dominant %q, got %q", cr.ExpectDominant, cr.Dominant)
			}
			progress(i, len(s.Cases), tc.Name, time.Since(result.StartTime), caseErr)
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	log.Info("batch finished", zap.Duration("duration", result.Duration))
	return result, runErr
}

func (r *Runner) runCase(ctx context.Context, providerName string, c analysis.Capability, tc suite.Case) CaseResult {
	start := time.Now()
	res := r.analyzer.Analyze(ctx, providerName, c.String(), tc.Text)

	cr := CaseResult{
		CaseID:         tc.ID,
		CaseName:       tc.Name,
		Text:           tc.Text,
		ExpectDominant: tc.ExpectDominant,
		Dominant:       Dominant(c, res),
		Result:         res,
		Duration:       time.Since(start),
	}
	cr.Pass = res.OK() && (tc.ExpectDominant == "" || strings.EqualFold(cr.Dominant, tc.ExpectDominant))
	return cr
}

// Dominant returns the headline label of a successful result: the largest
// sentiment share, or the dominant category. NER results have none.
func Dominant(c analysis.Capability, r analysis.Result) string {
	if !r.OK() {
		return ""
	}
	switch c {
	case analysis.Sentiment:
		if r.Sentiment != nil {
			return r.Sentiment.Dominant()
		}
	case analysis.Classification:
		if r.DominantCategory != "" {
			return r.DominantCategory
		}
		best := -1.0
		var name string
		for _, cat := range r.Categories {
			if cat.Confidence > best {
				best, name = cat.Confidence, cat.Name
			}
		}
		return name
	}
	return ""
}
