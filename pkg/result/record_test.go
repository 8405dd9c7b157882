package result

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
)

func teslaResult() analysis.Result {
	r := analysis.Result{
		Sentiment:   &analysis.SentimentScores{Positive: 85, Neutral: 10, Negative: 5},
		Explanation: "Record earnings.",
		Model:       "claude-3-5-sonnet-20240620",
		Usage:       &analysis.Usage{InputTokens: 120, OutputTokens: 40},
	}
	r.Stamp(time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC))
	return r
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("Claude", analysis.Sentiment, "Tesla Reports Record Q4 Earnings", teslaResult())

	if _, err := uuid.Parse(rec.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", rec.ID, err)
	}
	if rec.Capability != "Sentiment Analysis" {
		t.Errorf("Capability = %q, want Sentiment Analysis", rec.Capability)
	}
	if rec.Model != "claude-3-5-sonnet-20240620" {
		t.Errorf("Model = %q", rec.Model)
	}
	if rec.SavedAt.IsZero() {
		t.Error("SavedAt is zero")
	}

	other := NewRecord("Claude", analysis.Sentiment, "x", teslaResult())
	if other.ID == rec.ID {
		t.Error("two records share an ID")
	}
}

func TestRecord_SaveAndLoad(t *testing.T) {
	rec := NewRecord("xAI", analysis.Sentiment, "Tesla Reports Record Q4 Earnings", teslaResult())
	path := DefaultRecordPath(filepath.Join(t.TempDir(), "results"), rec)

	if err := rec.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := LoadRecord(path)
	if err != nil {
		t.Fatalf("LoadRecord() error: %v", err)
	}
	if loaded.ID != rec.ID || loaded.Provider != "xAI" || loaded.Text != rec.Text {
		t.Errorf("loaded = %+v, want %+v", loaded, rec)
	}
	if loaded.Result.Sentiment == nil || *loaded.Result.Sentiment != *rec.Result.Sentiment {
		t.Errorf("Sentiment = %v, want %v", loaded.Result.Sentiment, rec.Result.Sentiment)
	}
	if loaded.Result.Timestamp != rec.Result.Timestamp {
		t.Errorf("Timestamp = %q, want %q", loaded.Result.Timestamp, rec.Result.Timestamp)
	}
	if !loaded.SavedAt.Equal(rec.SavedAt) {
		t.Errorf("SavedAt = %v, want %v", loaded.SavedAt, rec.SavedAt)
	}
}

func TestDefaultRecordPath(t *testing.T) {
	rec := &Record{
		Provider:   "ChatGPT",
		Capability: "Named Entity Recognition",
		SavedAt:    time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
	}
	got := DefaultRecordPath("out", rec)
	want := filepath.Join("out", "20250304-050607-chatgpt-ner.json")
	if got != want {
		t.Errorf("DefaultRecordPath = %q, want %q", got, want)
	}
}

func TestLoadRecord_Errors(t *testing.T) {
	dir := t.TempDir()

	summary := filepath.Join(dir, "summary.json")
	if err := (&RunSummary{RunID: "r"}).Save(summary); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRecord(summary); err == nil {
		t.Error("LoadRecord() on a run summary expected error")
	}

	badID := filepath.Join(dir, "bad-id.json")
	if err := os.WriteFile(badID, []byte(`{"id":"not-a-uuid"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRecord(badID); err == nil {
		t.Error("LoadRecord() with invalid id expected error")
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Claude":             "claude",
		"My Headlines":       "my-headlines",
		"  Q4 -- earnings!! ": "q4-earnings",
		"xAI":                "xai",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Errorf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}
