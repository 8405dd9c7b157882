package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// sentimentTolerance is how far from 100 a sentiment breakdown may sum
// before it is rescaled.
const sentimentTolerance = 0.5

// maxErrorContent bounds how much of a bad reply is kept on a ParseError.
const maxErrorContent = 200

// Decode turns a model reply into a Result for capability c. The reply is
// stripped of code fences and parsed; if that fails it is cleaned once
// (outer braces extracted, newlines and backslashes dropped, quotes
// unwrapped) and parsed again. The document must then match the
// capability's schema. Decode does not set Timestamp.
func Decode(c Capability, content string) (Result, error) {
	doc, err := ExtractJSON(content)
	if err != nil {
		return Result{}, &ParseError{Content: truncate(content, maxErrorContent), Err: err}
	}

	if err := validateSchema(c, doc); err != nil {
		return Result{}, &ParseError{Content: truncate(doc, maxErrorContent), Err: err}
	}

	var r Result
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return Result{}, &ParseError{Content: truncate(doc, maxErrorContent), Err: fmt.Errorf("decoding result: %w", err)}
	}
	// A model-supplied error field is not ours to report.
	r.Error = ""
	r.Timestamp = ""
	r.Model, r.Usage = "", nil

	switch c {
	case Sentiment:
		if err := normalizeSentiment(r.Sentiment); err != nil {
			return Result{}, &ParseError{Content: truncate(doc, maxErrorContent), Err: err}
		}
		r.Entities, r.Categories = nil, nil
	case NER:
		r.Sentiment, r.Categories = nil, nil
		if r.Entities == nil {
			r.Entities = []Entity{}
		}
	case Classification:
		r.Sentiment, r.Entities = nil, nil
		if r.Categories == nil {
			r.Categories = []Category{}
		}
	}
	return r, nil
}

// ExtractJSON returns the JSON object contained in a model reply, applying
// at most one cleanup pass after fence stripping.
func ExtractJSON(content string) (string, error) {
	s := StripFences(content)
	if isObject(s) {
		return s, nil
	}

	cleaned := cleanup(s)
	if isObject(cleaned) {
		return cleaned, nil
	}

	if cleaned == "" {
		return "", errors.New("empty response")
	}
	return "", fmt.Errorf("response is not a JSON object: %s", truncate(cleaned, 80))
}

// StripFences removes a surrounding markdown code fence such as
// "```json\n...\n```" and trims whitespace.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func cleanup(s string) string {
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, `\`, "")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

func isObject(s string) bool {
	return strings.HasPrefix(s, "{") && json.Valid([]byte(s))
}

// normalizeSentiment rescales a breakdown whose sum is off by more than the
// tolerance (including 0-1 fractions) so it sums to 100.
func normalizeSentiment(s *SentimentScores) error {
	if s == nil {
		return errors.New("missing sentiment")
	}
	sum := s.Sum()
	if sum <= 0 {
		return errors.New("sentiment percentages sum to zero")
	}
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		return errors.New("sentiment percentages are out of range")
	}
	if math.Abs(sum-100) <= sentimentTolerance {
		return nil
	}
	scale := 100 / sum
	s.Positive = round2(s.Positive * scale)
	s.Neutral = round2(s.Neutral * scale)
	s.Negative = round2(s.Negative * scale)
	return nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// truncate shortens s to at most max bytes, cutting on a rune boundary.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
