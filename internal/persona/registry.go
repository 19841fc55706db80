// Package persona loads the named analyst personas (a system prompt plus
// expertise metadata) the Analyst worker runs in multi-specialist mode: six
// specialists plus a lead who synthesizes their reports.
package persona

import (
	"embed"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed prompts/*.toml
var embeddedPrompts embed.FS

// Metadata identifies a persona and its place in the registry.
type Metadata struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Category string `toml:"category"`
	Enabled bool   `toml:"enabled"`
	Role    string `toml:"role"`
}

// Expertise describes what a persona is best suited to look at.
type Expertise struct {
	Domains       []string `toml:"domains"`
	ArtifactTypes []string `toml:"artifact_types"`
}

// Prompt carries the persona's system prompt.
type Prompt struct {
	System string `toml:"system"`
}

// Output describes the persona's expected response shape.
type Output struct {
	Format    string `toml:"format"`
	MaxTokens int    `toml:"max_tokens"`
}

// Persona is one named analyst definition loaded from TOML.
type Persona struct {
	Persona   Metadata  `toml:"persona"`
	Expertise Expertise `toml:"expertise"`
	Prompt    Prompt    `toml:"prompt"`
	Output    Output    `toml:"output"`
}

// SystemPrompt returns the persona's system prompt text.
func (p Persona) SystemPrompt() string { return strings.TrimSpace(p.Prompt.System) }

// HandlesArtifact reports whether this persona's expertise covers the given
// artifact type (or declares "all").
func (p Persona) HandlesArtifact(artifactType string) bool {
	for _, t := range p.Expertise.ArtifactTypes {
		if t == artifactType || t == "all" {
			return true
		}
	}
	return false
}

// Registry holds every loaded persona, keyed by id.
type Registry struct {
	personas map[string]Persona
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{personas: make(map[string]Persona)}
}

// LoadEmbedded parses every persona TOML file embedded in this package and
// registers the enabled ones — the Analyst worker's default source.
func LoadEmbedded() (*Registry, error) {
	entries, err := embeddedPrompts.ReadDir("prompts")
	if err != nil {
		return nil, err
	}

	r := New()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		body, err := embeddedPrompts.ReadFile("prompts/" + entry.Name())
		if err != nil {
			return nil, err
		}
		var p Persona
		if _, err := toml.Decode(string(body), &p); err != nil {
			return nil, err
		}
		if p.Persona.Enabled {
			r.Register(p)
		}
	}
	return r, nil
}

// Register adds or replaces a persona by its id.
func (r *Registry) Register(p Persona) {
	r.personas[p.Persona.ID] = p
}

// Get looks up a persona by id.
func (r *Registry) Get(id string) (Persona, bool) {
	p, ok := r.personas[id]
	return p, ok
}

// SpecialistAnalysts returns every analyst-category persona whose role is
// "specialist" (i.e. everything but the lead).
func (r *Registry) SpecialistAnalysts() []Persona {
	var out []Persona
	for _, p := range r.personas {
		if p.Persona.Category == "analyst" && p.Persona.Role == "specialist" {
			out = append(out, p)
		}
	}
	return out
}

// LeadAnalyst returns the analyst-category persona whose role is
// "orchestrator", if one is registered.
func (r *Registry) LeadAnalyst() (Persona, bool) {
	for _, p := range r.personas {
		if p.Persona.Category == "analyst" && p.Persona.Role == "orchestrator" {
			return p, true
		}
	}
	return Persona{}, false
}

// Len is the number of registered personas.
func (r *Registry) Len() int { return len(r.personas) }
