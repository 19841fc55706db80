package workers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/llm"
	"github.com/duskline/robin-smesh/internal/persona"
	"github.com/duskline/robin-smesh/internal/signal"
	"github.com/duskline/robin-smesh/pkg/models"
)

const (
	minScrapedForAnalysis = 3
	maxAnalystPages       = 10
	maxAnalystPageChars   = 1500
	maxAnalystArtifacts   = 50
)

const analystFallbackPrompt = `You are a senior OSINT analyst producing the final report for an authorized investigation. Write a Markdown report with five sections: Executive Summary, Key Findings, Indicators of Compromise, Risk Assessment, and Recommendations. Base every claim strictly on the supplied content and artifacts.`

// Analyst synthesizes everything the swarm has gathered into a single
// terminal Summary report, once enough raw material exists. It emits
// exactly one Summary per investigation; once it has, it is done — any
// later activation simply returns ErrNoWork, not an error to retry.
type Analyst struct {
	cfg            agent.Config
	backend        llm.Backend
	specialists    *persona.SpecialistSystem
	useSpecialists bool
	summaryDone    bool
}

// NewAnalyst constructs an Analyst in single-pass mode (the lead persona
// runs alone against the full context).
func NewAnalyst(cfg agent.Config, backend llm.Backend) *Analyst {
	return &Analyst{cfg: cfg, backend: backend}
}

// WithSpecialists switches the Analyst into multi-specialist mode: every
// specialist persona analyzes the context in parallel and the lead persona
// synthesizes their reports.
func (a *Analyst) WithSpecialists(specialists *persona.SpecialistSystem) *Analyst {
	a.specialists = specialists
	a.useSpecialists = true
	return a
}

func (a *Analyst) ID() string        { return a.cfg.ID }
func (a *Analyst) AgentType() string { return string(models.AgentAnalyst) }

// Sense reports whether enough ScrapedContent exists to run an analysis —
// it returns a single synthetic marker hash rather than per-signal hashes,
// since the Analyst operates on the aggregate, not any one signal.
func (a *Analyst) Sense(f *field.Field) []string {
	if a.summaryDone {
		return nil
	}
	scraped := f.SenseWhere(matchesPayload[signal.ScrapedContent])
	if len(scraped) < minScrapedForAnalysis {
		return nil
	}
	return []string{"ready"}
}

func (a *Analyst) Process(ctx context.Context, f *field.Field) ([]string, error) {
	if a.summaryDone {
		return nil, agent.ErrNoWork
	}

	scraped := f.SenseWhere(matchesPayload[signal.ScrapedContent])
	if len(scraped) < minScrapedForAnalysis {
		return nil, agent.NotReady(fmt.Sprintf("need %d scraped pages, have %d", minScrapedForAnalysis, len(scraped)))
	}

	query := latestQuery(f)
	content := buildContentSection(scraped)
	artifactsText, artifactCount := buildArtifactsSection(f)

	var report string
	var err error
	var insightHashes []string
	if a.useSpecialists && a.specialists != nil {
		reports := a.specialists.AnalyzeWithSpecialists(ctx, query, content, artifactsText)
		insightHashes = emitSpecialistInsights(f, a.cfg.ID, reports, scraped)
		report, err = a.specialists.Synthesize(ctx, query, content, artifactsText, reports)
	} else {
		report, err = a.backend.Generate(ctx, personaSystem("analyst_lead", analystFallbackPrompt), fmt.Sprintf(
			"# Investigation Context\n\n## Original Query\n%s\n\n## Scraped Content\n%s\n\n## Extracted Artifacts\n%s",
			query, content, artifactsText))
	}
	if err != nil {
		return nil, agent.Llm(err.Error())
	}
	report = strings.TrimSpace(report)
	if report == "" {
		return nil, agent.Llm("empty summary from backend")
	}

	a.summaryDone = true

	out := signal.NewBuilder(signal.Summary{
		Markdown:      report,
		ArtifactCount: artifactCount,
		SourceCount:   len(scraped),
	}).Origin(a.cfg.ID).Confidence(0.95).TTL(300).Build()

	return append(insightHashes, f.Emit(out)), nil
}

// emitSpecialistInsights drops each specialist's raw analysis onto the field
// as a standalone Insight signal, independent of the lead's synthesized
// Summary — so a downstream consumer (or the dashboard) can see a crypto or
// malware specialist's take even before the report is finalized.
func emitSpecialistInsights(f *field.Field, originID string, reports []persona.SpecialistReport, scraped []*signal.Signal) []string {
	var sources []string
	for _, s := range scraped {
		sources = append(sources, s.Payload.(signal.ScrapedContent).URL)
	}

	hashes := make([]string, 0, len(reports))
	for _, r := range reports {
		analysis := strings.TrimSpace(r.Analysis)
		if analysis == "" {
			continue
		}
		out := signal.NewBuilder(signal.Insight{
			Category:   insightCategoryFor(r.AnalystID),
			Content:    fmt.Sprintf("[%s] %s", r.AnalystName, analysis),
			Sources:    sources,
			Confidence: 0.75,
		}).Origin(originID).Confidence(0.75).TTL(300).Build()
		hashes = append(hashes, f.Emit(out))
	}
	return hashes
}

func insightCategoryFor(specialistID string) models.InsightCategory {
	switch specialistID {
	case "analyst_crypto":
		return models.InsightCategoryFinancial
	case "analyst_threat", "analyst_malware":
		return models.InsightCategoryActor
	case "analyst_network", "analyst_forensic":
		return models.InsightCategoryInfrastructure
	default:
		return models.InsightCategoryGeneral
	}
}

func latestQuery(f *field.Field) string {
	refined := f.SenseWhere(matchesPayload[signal.RefinedQuery])
	var latest *signal.Signal
	for _, s := range refined {
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest != nil {
		// The report is framed around the question the user actually asked,
		// not the search-engine-shaped refinement.
		return latest.Payload.(signal.RefinedQuery).Original
	}
	queries := f.SenseWhere(matchesPayload[signal.UserQuery])
	if len(queries) > 0 {
		return queries[0].Payload.(signal.UserQuery).Query
	}
	return ""
}

// buildContentSection concatenates up to maxAnalystPages scraped pages,
// each truncated to maxAnalystPageChars, most-recent first.
func buildContentSection(scraped []*signal.Signal) string {
	sort.Slice(scraped, func(i, j int) bool { return scraped[i].CreatedAt.After(scraped[j].CreatedAt) })

	var b strings.Builder
	for i, s := range scraped {
		if i >= maxAnalystPages {
			break
		}
		sc := s.Payload.(signal.ScrapedContent)
		text := sc.Text
		if len(text) > maxAnalystPageChars {
			text = text[:maxAnalystPageChars] + "...(truncated)"
		}
		fmt.Fprintf(&b, "### %s (%s)\n%s\n\n", sc.Title, sc.URL, text)
	}
	return b.String()
}

// buildArtifactsSection dedupes and lists up to maxAnalystArtifacts
// extracted artifacts, grouped by type.
func buildArtifactsSection(f *field.Field) (string, int) {
	seen := make(map[string]struct{})
	var artifacts []models.Artifact
	for _, s := range f.SenseWhere(matchesPayload[signal.ExtractedArtifacts]) {
		ea := s.Payload.(signal.ExtractedArtifacts)
		for _, a := range ea.Artifacts {
			if _, ok := seen[a.DedupKey()]; ok {
				continue
			}
			seen[a.DedupKey()] = struct{}{}
			artifacts = append(artifacts, a)
		}
	}

	total := len(artifacts)
	if len(artifacts) > maxAnalystArtifacts {
		artifacts = artifacts[:maxAnalystArtifacts]
	}

	grouped := make(map[models.ArtifactType][]string)
	for _, a := range artifacts {
		grouped[a.Type] = append(grouped[a.Type], a.Value)
	}

	var types []models.ArtifactType
	for t := range grouped {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	var b strings.Builder
	for _, t := range types {
		fmt.Fprintf(&b, "- %s: %s\n", t, strings.Join(grouped[t], ", "))
	}
	return b.String(), total
}

func (a *Analyst) Heartbeat(f *field.Field) {
	capacity := 1.0
	if a.summaryDone {
		capacity = 0.0
	}
	emitHeartbeat(f, a.cfg.ID, models.AgentAnalyst, capacity, 10)
}
