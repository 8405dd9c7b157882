package analysis

import (
	"time"
)

// SentimentScores is a percentage breakdown that sums to roughly 100.
type SentimentScores struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Sum returns the total of the three percentages.
func (s SentimentScores) Sum() float64 {
	return s.Positive + s.Neutral + s.Negative
}

// Dominant returns the label with the highest share. Ties resolve in the
// order positive, neutral, negative.
func (s SentimentScores) Dominant() string {
	label, best := "positive", s.Positive
	if s.Neutral > best {
		label, best = "neutral", s.Neutral
	}
	if s.Negative > best {
		label = "negative"
	}
	return label
}

// Entity is a single named entity found in the input text.
type Entity struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

// Category is one classification label with the model's confidence.
type Category struct {
	Name        string  `json:"name"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation,omitempty"`
}

// Result is the normalized answer for one analysis call. Which fields are
// populated depends on the capability; a non-empty Error means the call
// failed and the capability fields hold empty defaults.
type Result struct {
	Sentiment        *SentimentScores `json:"sentiment,omitempty"`
	Entities         []Entity         `json:"entities,omitzero"`
	Categories       []Category       `json:"categories,omitzero"`
	DominantCategory string           `json:"dominant_category,omitempty"`
	Summary          string           `json:"summary,omitempty"`
	Explanation      string           `json:"explanation,omitempty"`
	Timestamp        string           `json:"timestamp,omitempty"`
	Error            string           `json:"error,omitempty"`

	// Model and Usage describe the call that produced the result. They are
	// empty when no reply was received.
	Model string `json:"model,omitempty"`
	Usage *Usage `json:"usage,omitempty"`
}

// Usage is the token count reported by the provider.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// OK reports whether the result carries no error.
func (r Result) OK() bool { return r.Error == "" }

// Stamp sets Timestamp to t in RFC 3339 form.
func (r *Result) Stamp(t time.Time) {
	r.Timestamp = t.Format(time.RFC3339Nano)
}

// Failure builds the error result for capability c: the error message plus
// the capability's zero-valued default.
func Failure(c Capability, err error) Result {
	r := Result{Error: err.Error()}
	switch c {
	case Sentiment:
		r.Sentiment = &SentimentScores{}
	case NER:
		r.Entities = []Entity{}
	case Classification:
		r.Categories = []Category{}
	}
	return r
}
