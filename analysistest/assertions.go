package analysistest

import (
	"strings"
	"time"

	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
)

// sentimentTolerance is how far a successful sentiment breakdown may sum
// from 100.
const sentimentTolerance = 0.5

// AssertOK asserts that the result carries no error.
func (tc *TestCase) AssertOK() {
	tc.t.Helper()
	if !tc.ready("AssertOK") {
		return
	}
	if !tc.result.OK() {
		tc.t.Errorf("result has error: %s", tc.result.Error)
	}
}

// AssertErrorContains asserts that the result failed with a message
// containing substr.
func (tc *TestCase) AssertErrorContains(substr string) {
	tc.t.Helper()
	if !tc.ready("AssertErrorContains") {
		return
	}
	if tc.result.OK() {
		tc.t.Errorf("result has no error, want one containing %q", substr)
		return
	}
	if !strings.Contains(tc.result.Error, substr) {
		tc.t.Errorf("error %q does not contain %q", tc.result.Error, substr)
	}
}

// AssertSentiment asserts that the named sentiment share (positive, neutral
// or negative) satisfies m.
func (tc *TestCase) AssertSentiment(label string, m ValueMatcher) {
	tc.t.Helper()
	if !tc.ready("AssertSentiment") {
		return
	}
	s := tc.result.Sentiment
	if s == nil {
		tc.t.Error("result has no sentiment")
		return
	}

	var v float64
	switch label {
	case "positive":
		v = s.Positive
	case "neutral":
		v = s.Neutral
	case "negative":
		v = s.Negative
	default:
		tc.t.Errorf("unknown sentiment label %q", label)
		return
	}
	if !m.Match(v) {
		tc.t.Errorf("%s sentiment %.2f does not satisfy %s", label, v, m)
	}
}

// AssertDominant asserts the dominant label: the highest sentiment share
// for sentiment results, or dominant_category for classification.
func (tc *TestCase) AssertDominant(want string) {
	tc.t.Helper()
	if !tc.ready("AssertDominant") {
		return
	}

	var got string
	switch {
	case tc.result.Sentiment != nil:
		got = tc.result.Sentiment.Dominant()
	case tc.result.Categories != nil:
		got = tc.result.DominantCategory
	default:
		tc.t.Error("result has neither sentiment nor categories")
		return
	}
	if !strings.EqualFold(got, want) {
		tc.t.Errorf("dominant = %q, want %q", got, want)
	}
}

// AssertSentimentSum asserts that a successful sentiment result sums to
// 100 within tolerance.
func (tc *TestCase) AssertSentimentSum() {
	tc.t.Helper()
	if !tc.ready("AssertSentimentSum") {
		return
	}
	s := tc.result.Sentiment
	if s == nil {
		tc.t.Error("result has no sentiment")
		return
	}
	if !Within(100, sentimentTolerance).Match(s.Sum()) {
		tc.t.Errorf("sentiment sums to %.2f, want 100 ± %.1f", s.Sum(), sentimentTolerance)
	}
}

// AssertEntity asserts that an entity with the given text and category was
// found. An empty category matches any.
func (tc *TestCase) AssertEntity(text, category string) {
	tc.t.Helper()
	if !tc.ready("AssertEntity") {
		return
	}
	for _, e := range tc.result.Entities {
		if e.Text == text && (category == "" || strings.EqualFold(e.Category, category)) {
			return
		}
	}
	tc.t.Errorf("entity %q (%s) not found in %v", text, category, tc.result.Entities)
}

// AssertCategory asserts that the named category is present with a
// confidence satisfying m. A nil m only checks presence.
func (tc *TestCase) AssertCategory(name string, m ValueMatcher) {
	tc.t.Helper()
	if !tc.ready("AssertCategory") {
		return
	}
	for _, c := range tc.result.Categories {
		if !strings.EqualFold(c.Name, name) {
			continue
		}
		if m != nil && !m.Match(c.Confidence) {
			tc.t.Errorf("category %q confidence %.2f does not satisfy %s", name, c.Confidence, m)
		}
		return
	}
	tc.t.Errorf("category %q not found", name)
}

// AssertTimestamp asserts that the result carries an RFC 3339 timestamp.
func (tc *TestCase) AssertTimestamp() {
	tc.t.Helper()
	if !tc.ready("AssertTimestamp") {
		return
	}
	if _, err := time.Parse(time.RFC3339, tc.result.Timestamp); err != nil {
		tc.t.Errorf("timestamp %q is not RFC 3339: %v", tc.result.Timestamp, err)
	}
}

// AssertPopulated asserts the general contract of a call: either the
// capability's fields are populated (sentiment summing to 100) or the
// result carries an error.
func (tc *TestCase) AssertPopulated() {
	tc.t.Helper()
	if !tc.ready("AssertPopulated") {
		return
	}
	r := tc.result
	if !r.OK() {
		return
	}
	switch tc.capability {
	case analysis.Sentiment:
		tc.AssertSentimentSum()
	case analysis.NER:
		if r.Entities == nil {
			tc.t.Error("NER result has nil entities")
		}
	case analysis.Classification:
		if r.Categories == nil {
			tc.t.Error("classification result has nil categories")
		}
	default:
		tc.t.Errorf("successful result for unknown capability")
	}
}

func (tc *TestCase) ready(method string) bool {
	tc.t.Helper()
	if !tc.executed {
		tc.t.Errorf("%s called before Analyze()", method)
		return false
	}
	return true
}
