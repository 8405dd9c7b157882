package analysistest

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
)

// Analyzer is anything that runs one analysis call and never fails past its
// boundary. *registry.Registry satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, providerName, capability, text string) analysis.Result
}

// Option configures a Harness.
type Option func(*Harness)

// WithAnalyzer sets the analyzer every case calls. It is required.
func WithAnalyzer(a Analyzer) Option {
	return func(h *Harness) {
		h.analyzer = a
	}
}

// WithProvider sets the provider name used by TestCase.Analyze. Defaults to
// "Claude".
func WithProvider(name string) Option {
	return func(h *Harness) {
		h.provider = name
	}
}

// WithTimeout sets the per-call timeout. Defaults to 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(h *Harness) {
		h.timeout = d
	}
}

// WithResultFile configures the harness to write case results to a JSON
// file when all cases are complete.
func WithResultFile(path string) Option {
	return func(h *Harness) {
		h.resultFile = path
	}
}

// CaseResult captures the outcome of a single case.
type CaseResult struct {
	Name       string          `json:"name"`
	Provider   string          `json:"provider"`
	Capability string          `json:"capability"`
	Result     analysis.Result `json:"result"`
	Duration   time.Duration   `json:"duration"`
}

// Harness runs analysis cases as standard Go subtests against a shared
// analyzer.
type Harness struct {
	t          *testing.T
	analyzer   Analyzer
	provider   string
	timeout    time.Duration
	resultFile string
	results    []CaseResult
}

// New creates a Harness bound to t.
func New(t *testing.T, opts ...Option) *Harness {
	t.Helper()
	h := &Harness{
		t:        t,
		provider: "Claude",
		timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.analyzer == nil {
		t.Fatal("analysistest: no analyzer configured, use WithAnalyzer")
	}
	if h.resultFile != "" {
		t.Cleanup(func() {
			h.writeResults()
		})
	}
	return h
}

// Run executes a named case as a subtest.
func (h *Harness) Run(name string, fn func(tc *TestCase)) {
	h.t.Helper()
	h.t.Run(name, func(t *testing.T) {
		t.Helper()
		fn(&TestCase{t: t, harness: h, name: name, provider: h.provider})
	})
}

// Results returns the results recorded so far.
func (h *Harness) Results() []CaseResult {
	return h.results
}

func (h *Harness) writeResults() {
	data, err := json.MarshalIndent(h.results, "", "  ")
	if err != nil {
		h.t.Errorf("analysistest: failed to marshal results: %v", err)
		return
	}
	if err := os.WriteFile(h.resultFile, data, 0o644); err != nil {
		h.t.Errorf("analysistest: failed to write results to %s: %v", h.resultFile, err)
	}
}

// TestCase runs and asserts one analysis call.
type TestCase struct {
	t          *testing.T
	harness    *Harness
	name       string
	provider   string
	capability analysis.Capability
	result     analysis.Result
	executed   bool
}

// UseProvider switches this case to another provider.
func (tc *TestCase) UseProvider(name string) {
	tc.provider = name
}

// Analyze runs capability against text with the case's provider and
// returns the result. Unknown capability names are passed through so that
// their error result can be asserted.
func (tc *TestCase) Analyze(capability, text string) analysis.Result {
	tc.t.Helper()

	h := tc.harness
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	tc.capability, _ = analysis.ParseCapability(capability)

	start := time.Now()
	tc.result = h.analyzer.Analyze(ctx, tc.provider, capability, text)
	tc.executed = true

	h.results = append(h.results, CaseResult{
		Name:       tc.name,
		Provider:   tc.provider,
		Capability: capability,
		Result:     tc.result,
		Duration:   time.Since(start),
	})
	return tc.result
}

// Result returns the last result.
func (tc *TestCase) Result() analysis.Result {
	tc.t.Helper()
	if !tc.executed {
		tc.t.Error("Result() called before Analyze()")
	}
	return tc.result
}
