package analysistest

import "fmt"

// ValueMatcher matches a percentage or confidence value.
type ValueMatcher interface {
	Match(v float64) bool
	String() string
}

type above struct {
	threshold float64
}

// Above returns a matcher that passes when the value is strictly greater
// than threshold.
func Above(threshold float64) ValueMatcher {
	return above{threshold: threshold}
}

func (m above) Match(v float64) bool { return v > m.threshold }

func (m above) String() string { return fmt.Sprintf("> %.2f", m.threshold) }

type below struct {
	threshold float64
}

// Below returns a matcher that passes when the value is strictly less than
// threshold.
func Below(threshold float64) ValueMatcher {
	return below{threshold: threshold}
}

func (m below) Match(v float64) bool { return v < m.threshold }

func (m below) String() string { return fmt.Sprintf("< %.2f", m.threshold) }

// within matches values inside a tolerance of an expected value.
type within struct {
	expected, tolerance float64
}

// Within returns a matcher that passes when the value is within tolerance
// of expected.
func Within(expected, tolerance float64) ValueMatcher {
	return within{expected: expected, tolerance: tolerance}
}

func (m within) Match(v float64) bool {
	diff := v - m.expected
	if diff < 0 {
		diff = -diff
	}
	return diff <= m.tolerance
}

func (m within) String() string {
	return fmt.Sprintf("== %.2f ± %.2f", m.expected, m.tolerance)
}
