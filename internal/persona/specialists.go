package persona

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/duskline/robin-smesh/internal/llm"
)

// SpecialistReport is one specialist analyst's take on the investigation
// context.
type SpecialistReport struct {
	AnalystID   string
	AnalystName string
	Analysis    string
}

// SpecialistSystem runs every specialist persona concurrently against a
// shared LLM backend, then asks the lead persona to synthesize their
// reports into the final summary.
type SpecialistSystem struct {
	backend  llm.Backend
	registry *Registry
}

// NewSpecialistSystem loads the embedded persona set and pairs it with a
// backend.
func NewSpecialistSystem(backend llm.Backend) (*SpecialistSystem, error) {
	registry, err := LoadEmbedded()
	if err != nil {
		return nil, err
	}
	return &SpecialistSystem{backend: backend, registry: registry}, nil
}

// ListSpecialists returns the display names of every registered specialist.
func (s *SpecialistSystem) ListSpecialists() []string {
	var names []string
	for _, p := range s.registry.SpecialistAnalysts() {
		names = append(names, p.Persona.Name)
	}
	return names
}

// AnalyzeWithSpecialists runs every specialist persona against the shared
// context in parallel and returns whichever reports succeeded.
func (s *SpecialistSystem) AnalyzeWithSpecialists(ctx context.Context, query, content, artifacts string) []SpecialistReport {
	specialists := s.registry.SpecialistAnalysts()
	investigationContext := fmt.Sprintf("Original Query: %s\n\n## Scraped Content\n%s\n\n## Extracted Artifacts\n%s",
		query, content, artifacts)

	reports := make([]SpecialistReport, len(specialists))
	var wg sync.WaitGroup
	for i, p := range specialists {
		wg.Add(1)
		go func(i int, p Persona) {
			defer wg.Done()
			analysis, err := s.backend.Generate(ctx, p.SystemPrompt(), investigationContext)
			if err != nil {
				return
			}
			reports[i] = SpecialistReport{
				AnalystID:   p.Persona.ID,
				AnalystName: p.Persona.Name,
				Analysis:    analysis,
			}
		}(i, p)
	}
	wg.Wait()

	var out []SpecialistReport
	for _, r := range reports {
		if r.AnalystID != "" {
			out = append(out, r)
		}
	}
	return out
}

// Synthesize asks the lead analyst persona to merge the specialist reports
// into one final report.
func (s *SpecialistSystem) Synthesize(ctx context.Context, query, content, artifacts string, reports []SpecialistReport) (string, error) {
	lead, ok := s.registry.LeadAnalyst()
	if !ok {
		return "", fmt.Errorf("persona: no lead analyst registered")
	}

	var sections []string
	for _, r := range reports {
		sections = append(sections, fmt.Sprintf("### %s Report\n%s\n", r.AnalystName, r.Analysis))
	}

	synthesisContext := fmt.Sprintf(
		"# Investigation Context\n\n## Original Query\n%s\n\n## Raw Content Summary\n%s\n\n## Extracted Artifacts\n%s\n\n# Specialist Analyst Reports\n\n%s",
		query, truncate(content, 4000), artifacts, strings.Join(sections, "\n---\n\n"),
	)

	return s.backend.Generate(ctx, lead.SystemPrompt(), synthesisContext)
}

// Registry exposes the underlying persona registry.
func (s *SpecialistSystem) Registry() *Registry { return s.registry }

func truncate(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}
	truncated := content[:maxChars]
	if idx := strings.LastIndexFunc(truncated, func(r rune) bool { return r == ' ' || r == '\n' || r == '\t' }); idx >= 0 {
		return content[:idx]
	}
	return truncated
}
