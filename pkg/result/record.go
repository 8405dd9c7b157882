package result

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
)

// Record is one saved analysis: what was asked, of whom, and the answer.
type Record struct {
	ID         string          `json:"id"`
	Provider   string          `json:"provider"`
	Capability string          `json:"capability"`
	Text       string          `json:"text"`
	Model      string          `json:"model,omitempty"`
	Result     analysis.Result `json:"result"`
	SavedAt    time.Time       `json:"saved_at"`
}

// NewRecord wraps a result for saving, with a fresh ID.
func NewRecord(providerName string, c analysis.Capability, text string, r analysis.Result) *Record {
	return &Record{
		ID:         uuid.NewString(),
		Provider:   providerName,
		Capability: c.String(),
		Text:       text,
		Model:      r.Model,
		Result:     r,
		SavedAt:    time.Now().UTC(),
	}
}

// DefaultRecordPath returns <dir>/<timestamp>-<provider>-<capability>.json.
func DefaultRecordPath(outputDir string, rec *Record) string {
	capSlug := slug(rec.Capability)
	if c, err := analysis.ParseCapability(rec.Capability); err == nil {
		capSlug = c.Slug()
	}
	filename := fmt.Sprintf("%s-%s-%s.json", rec.SavedAt.Format("20060102-150405"), slug(rec.Provider), capSlug)
	return filepath.Join(outputDir, filename)
}

// Save writes the record as indented JSON, creating parent directories.
func (r *Record) Save(path string) error {
	return writeJSON(path, r)
}

// LoadRecord reads a Record from a JSON file.
func LoadRecord(path string) (*Record, error) {
	var r Record
	if err := readJSON(path, &r); err != nil {
		return nil, err
	}
	if r.ID == "" {
		return nil, fmt.Errorf("result file %s is not an analysis record", path)
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		return nil, fmt.Errorf("result file %s: invalid record id: %w", path, err)
	}
	return &r, nil
}

// slug lowercases s and replaces anything outside [a-z0-9] with '-'.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
