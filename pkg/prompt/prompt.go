// Package prompt holds the system and user prompts sent for each analysis
// capability.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
)

// Variant is a system+user prompt pair for one capability. User (and
// optionally System) may reference the input as {{.text}}.
type Variant struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Capability  string `yaml:"capability"`
	System      string `yaml:"system"`
	User        string `yaml:"user"`
}

// Validate checks that v names itself, a known capability and at least one
// prompt.
func (v *Variant) Validate() error {
	if v.Name == "" {
		return errors.New("prompt name is required")
	}
	if v.System == "" && v.User == "" {
		return fmt.Errorf("prompt %q must have a system or user prompt", v.Name)
	}
	if _, err := v.capability(); err != nil {
		return fmt.Errorf("prompt %q: %w", v.Name, err)
	}
	return nil
}

func (v *Variant) capability() (analysis.Capability, error) {
	return analysis.ParseCapability(v.Capability)
}

// Render fills {{.text}} in both prompts. Any other template field is an
// error, and text is inserted literally even if it looks like a template.
func (v *Variant) Render(text string) (system, user string, err error) {
	data := map[string]string{"text": text}
	if system, err = execute(v.Name+".system", v.System, data); err != nil {
		return "", "", fmt.Errorf("rendering system prompt %q: %w", v.Name, err)
	}
	if user, err = execute(v.Name+".user", v.User, data); err != nil {
		return "", "", fmt.Errorf("rendering user prompt %q: %w", v.Name, err)
	}
	return system, user, nil
}

func execute(name, src string, data map[string]string) (string, error) {
	if src == "" {
		return "", nil
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
