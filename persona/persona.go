// Package persona stores the assistant's mission principles: named text
// sections that compose, in a stable order, into the system prompt sent with
// every generation request. Sections can be declared in code or loaded from a
// directory of text files, where the filename (sans extension) names the
// section and lexical file order fixes the composition order.
package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Persona is an ordered collection of principle sections. It is built once at
// startup and read afterwards; it is not safe for concurrent mutation.
type Persona struct {
	sections *orderedmap.OrderedMap[string, string]
}

// New creates an empty persona.
func New() *Persona {
	return &Persona{sections: orderedmap.New[string, string]()}
}

// Default returns the built-in persona used when no persona directory is
// configured.
func Default() *Persona {
	p := New()
	p.Set("role", "You are a helpful personal assistant. Answer concisely and truthfully.")
	p.Set("formatting", "Format answers as plain Markdown. Prefer short paragraphs over lists unless the user asks for a list.")
	return p
}

// Load reads every .md and .txt file in dir, in lexical filename order, into
// a persona. The section name is the filename without its extension.
func Load(dir string) (*Persona, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona directory %q: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".md", ".txt":
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)

	p := New()
	for _, name := range names {
		text, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read persona section %q: %w", name, err)
		}
		section := strings.TrimSuffix(name, filepath.Ext(name))
		p.Set(section, strings.TrimSpace(string(text)))
	}
	return p, nil
}

// Set adds or replaces a section. New sections keep insertion order; replaced
// sections keep their original position.
func (p *Persona) Set(name, text string) {
	p.sections.Set(name, text)
}

// Get returns the text of the named section.
func (p *Persona) Get(name string) (string, bool) {
	return p.sections.Get(name)
}

// Names returns the section names in composition order.
func (p *Persona) Names() []string {
	names := make([]string, 0, p.sections.Len())
	for pair := p.sections.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Len returns the number of sections.
func (p *Persona) Len() int {
	return p.sections.Len()
}

// System composes the sections, in order, into one system prompt. Empty
// sections are skipped.
func (p *Persona) System() string {
	var sb strings.Builder
	for pair := p.sections.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(pair.Value)
	}
	return sb.String()
}
