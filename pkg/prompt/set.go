package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
)

//go:embed defaults/*.yaml
var defaultFS embed.FS

// Set holds one Variant per capability.
type Set struct {
	variants map[analysis.Capability]*Variant
}

// Defaults returns the built-in prompt set.
func Defaults() (*Set, error) {
	s := &Set{variants: make(map[analysis.Capability]*Variant)}
	if err := s.putAll(defaultFS, "defaults"); err != nil {
		return nil, fmt.Errorf("loading built-in prompts: %w", err)
	}
	for _, c := range analysis.All() {
		if _, ok := s.variants[c]; !ok {
			return nil, fmt.Errorf("no built-in prompt for %s", c)
		}
	}
	return s, nil
}

// LoadSet returns the built-in prompts with every .yaml/.yml variant found
// in dir replacing the default for its capability. Subdirectories and other
// files are ignored. An empty dir yields the defaults unchanged.
func LoadSet(dir string) (*Set, error) {
	s, err := Defaults()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return s, nil
	}
	if err := s.putAll(os.DirFS(dir), "."); err != nil {
		return nil, fmt.Errorf("loading prompts from %s: %w", dir, err)
	}
	return s, nil
}

// putAll reads every YAML file directly under root in fsys into s.
func (s *Set) putAll(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		ext := strings.ToLower(path.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		name := path.Join(root, entry.Name())
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		var v Variant
		if err := yaml.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		if err := s.Put(&v); err != nil {
			return fmt.Errorf("%s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Put validates v and registers it for its capability, replacing any
// existing variant.
func (s *Set) Put(v *Variant) error {
	if err := v.Validate(); err != nil {
		return err
	}
	c, _ := v.capability()
	s.variants[c] = v
	return nil
}

// Get returns the variant registered for c.
func (s *Set) Get(c analysis.Capability) (*Variant, bool) {
	v, ok := s.variants[c]
	return v, ok
}

// Render returns the system and user prompts for c with text substituted
// for {{.text}}.
func (s *Set) Render(c analysis.Capability, text string) (system, user string, err error) {
	v, ok := s.variants[c]
	if !ok {
		return "", "", fmt.Errorf("no prompt registered for %s", c)
	}
	return v.Render(text)
}
