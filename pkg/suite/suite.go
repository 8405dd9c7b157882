// Package suite loads batch files: a list of texts to analyze with one
// provider and capability.
package suite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
)

// Suite is a named collection of texts analyzed in one batch run.
type Suite struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Provider    string `yaml:"provider"`
	Capability  string `yaml:"capability"`
	Cases       []Case `yaml:"cases"`
}

// Case is a single text within a suite. ExpectDominant, when set, is the
// sentiment label (positive, neutral, negative) or the category name the
// result must report as dominant.
type Case struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Text           string   `yaml:"text"`
	ExpectDominant string   `yaml:"expect_dominant"`
	Tags           []string `yaml:"tags"`
}

// Load reads a single Suite from a YAML file. Cases without an ID are
// numbered in file order.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite file %s: %w", path, err)
	}

	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing suite file %s: %w", path, err)
	}

	s.applyDefaults()
	return &s, nil
}

// LoadDir loads all .yaml and .yml files from dir as Suites.
func LoadDir(dir string) ([]*Suite, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading suite directory %s: %w", dir, err)
	}

	var suites []*Suite
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		s, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}

	return suites, nil
}

// Override replaces the suite's provider and capability with any non-empty
// argument, as given on the command line.
func (s *Suite) Override(provider, capability string) {
	if provider != "" {
		s.Provider = provider
	}
	if capability != "" {
		s.Capability = capability
	}
}

// Validate checks that the suite can be run: it names a provider and a
// known capability, and every case has a name and non-empty text.
func (s *Suite) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("suite name is required")
	}

	var errs []error
	if s.Provider == "" {
		errs = append(errs, fmt.Errorf("suite %q: provider is required", s.Name))
	}
	c, err := analysis.ParseCapability(s.Capability)
	if err != nil {
		errs = append(errs, fmt.Errorf("suite %q: %w", s.Name, err))
	}
	if len(s.Cases) == 0 {
		errs = append(errs, fmt.Errorf("suite %q must have at least one case", s.Name))
	}
	for i, tc := range s.Cases {
		if tc.Name == "" {
			errs = append(errs, fmt.Errorf("suite %q: case %d has no name", s.Name, i))
		}
		if strings.TrimSpace(tc.Text) == "" {
			errs = append(errs, fmt.Errorf("suite %q: case %q has no text", s.Name, tc.Name))
		}
		if tc.ExpectDominant != "" && c == analysis.NER {
			errs = append(errs, fmt.Errorf("suite %q: case %q: expect_dominant does not apply to %s", s.Name, tc.Name, c))
		}
		if tc.ExpectDominant != "" && c == analysis.Sentiment && !isSentimentLabel(tc.ExpectDominant) {
			errs = append(errs, fmt.Errorf("suite %q: case %q: expect_dominant must be positive, neutral or negative, got %q", s.Name, tc.Name, tc.ExpectDominant))
		}
	}
	return errors.Join(errs...)
}

// FilterByTag returns a new suite containing only cases that have at least
// one of the specified tags. An empty tag list returns all cases.
func (s *Suite) FilterByTag(tags []string) *Suite {
	if len(tags) == 0 {
		return s
	}

	tagSet := make(map[string]bool, len(tags))
	for _, t := range tags {
		tagSet[t] = true
	}

	filtered := &Suite{
		Name:        s.Name,
		Description: s.Description,
		Provider:    s.Provider,
		Capability:  s.Capability,
	}

	for _, c := range s.Cases {
		for _, t := range c.Tags {
			if tagSet[t] {
				filtered.Cases = append(filtered.Cases, c)
				break
			}
		}
	}

	return filtered
}

func (s *Suite) applyDefaults() {
	for i := range s.Cases {
		if s.Cases[i].ID == "" {
			s.Cases[i].ID = fmt.Sprintf("case-%d", i+1)
		}
	}
}

func isSentimentLabel(s string) bool {
	switch strings.ToLower(s) {
	case "positive", "neutral", "negative":
		return true
	}
	return false
}
