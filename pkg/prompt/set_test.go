package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
)

func TestDefaults_CoverAllCapabilities(t *testing.T) {
	s, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults() error: %v", err)
	}

	wantField := map[analysis.Capability]string{
		analysis.Sentiment:      `"sentiment"`,
		analysis.NER:            `"entities"`,
		analysis.Classification: `"categories"`,
	}
	for _, c := range analysis.All() {
		p, ok := s.Get(c)
		if !ok {
			t.Fatalf("no default prompt for %s", c)
		}
		if !strings.Contains(p.System, wantField[c]) {
			t.Errorf("%s system prompt does not mention %s", c, wantField[c])
		}
		if !strings.Contains(p.User, "{{.text}}") {
			t.Errorf("%s user prompt = %q, want {{.text}} placeholder", c, p.User)
		}
	}
}

func TestSet_Render(t *testing.T) {
	s, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults() error: %v", err)
	}

	headline := "Tesla Reports Record Q4 Earnings, Beating Analyst Expectations"
	system, user, err := s.Render(analysis.Sentiment, headline)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if !strings.HasPrefix(system, "You are a financial sentiment analyzer.") {
		t.Errorf("system = %q, want financial sentiment analyzer prompt", system)
	}
	if user != "Analyze the sentiment of this text: "+headline {
		t.Errorf("user = %q", user)
	}

	_, user, err = s.Render(analysis.NER, headline)
	if err != nil {
		t.Fatalf("Render(NER) error: %v", err)
	}
	if user != "Perform NER analysis on this text: "+headline {
		t.Errorf("NER user = %q", user)
	}
}

func TestSet_RenderUnknownCapability(t *testing.T) {
	s, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults() error: %v", err)
	}
	if _, _, err := s.Render(analysis.Capability(99), "x"); err == nil {
		t.Fatal("Render() expected error for unregistered capability, got nil")
	}
}

func TestLoadSet_Override(t *testing.T) {
	dir := t.TempDir()
	override := "name: terse-ner\ncapability: Named Entity Recognition\nsystem: List entities as JSON.\nuser: \"{{.text}}\"\n"
	if err := os.WriteFile(filepath.Join(dir, "ner.yaml"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSet(dir)
	if err != nil {
		t.Fatalf("LoadSet() error: %v", err)
	}

	p, _ := s.Get(analysis.NER)
	if p.Name != "terse-ner" {
		t.Errorf("NER prompt = %q, want override", p.Name)
	}
	p, _ = s.Get(analysis.Sentiment)
	if p.Name != "financial-sentiment" {
		t.Errorf("sentiment prompt = %q, want built-in default", p.Name)
	}
}

func TestLoadSet_EmptyDirUsesDefaults(t *testing.T) {
	s, err := LoadSet("")
	if err != nil {
		t.Fatalf("LoadSet() error: %v", err)
	}
	if _, ok := s.Get(analysis.Classification); !ok {
		t.Error("classification prompt missing")
	}
}

func TestLoadSet_InvalidOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: bad\nsystem: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSet(dir); err == nil {
		t.Fatal("LoadSet() expected error for prompt without capability, got nil")
	}
}

func TestLoadSet_OverrideFields(t *testing.T) {
	dir := t.TempDir()
	override := `name: short-sentiment
description: One-line sentiment
capability: Sentiment Analysis
system: Reply with sentiment JSON only.
user: "Headline: {{.text}}"
`
	if err := os.WriteFile(filepath.Join(dir, "sentiment.yml"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSet(dir)
	if err != nil {
		t.Fatalf("LoadSet() error: %v", err)
	}

	p, ok := s.Get(analysis.Sentiment)
	if !ok {
		t.Fatal("sentiment prompt missing")
	}
	if p.Name != "short-sentiment" {
		t.Errorf("Name = %q, want %q", p.Name, "short-sentiment")
	}
	if p.Description != "One-line sentiment" {
		t.Errorf("Description = %q, want %q", p.Description, "One-line sentiment")
	}
	if p.System != "Reply with sentiment JSON only." {
		t.Errorf("System = %q", p.System)
	}

	_, user, err := s.Render(analysis.Sentiment, "Oil prices fall")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if user != "Headline: Oil prices fall" {
		t.Errorf("user = %q, want %q", user, "Headline: Oil prices fall")
	}
}

func TestLoadSet_SkipsOtherEntries(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a prompt"), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "drafts.yaml")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "ner.yaml"), []byte("name: nested\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSet(dir)
	if err != nil {
		t.Fatalf("LoadSet() error: %v", err)
	}
	p, _ := s.Get(analysis.NER)
	if p.Name == "nested" {
		t.Error("LoadSet() read a prompt from a subdirectory")
	}
}

func TestLoadSet_DirNotFound(t *testing.T) {
	_, err := LoadSet(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("LoadSet() expected error for missing directory, got nil")
	}
}

func TestLoadSet_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ner.yaml"), []byte("name: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadSet(dir)
	if err == nil {
		t.Fatal("LoadSet() expected error for invalid YAML, got nil")
	}
	if !strings.Contains(err.Error(), "ner.yaml") {
		t.Errorf("LoadSet() error = %q, want it to name the file", err)
	}
}
