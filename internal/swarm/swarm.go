// Package swarm wires the nine-agent OSINT roster to a shared Field and
// drives them through a tick loop until an investigation's Summary lands or
// the run times out.
package swarm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/api"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/llm"
	"github.com/duskline/robin-smesh/internal/persona"
	"github.com/duskline/robin-smesh/internal/signal"
	"github.com/duskline/robin-smesh/internal/tor"
	"github.com/duskline/robin-smesh/internal/workers"
	"github.com/duskline/robin-smesh/pkg/models"
)

// Config controls the size and composition of the worker roster, and how
// long a single investigation is allowed to run.
type Config struct {
	TickInterval     time.Duration
	MaxRuntime       time.Duration
	NumCrawlers      int
	NumScrapers      int
	UseSpecialists   bool
	EnableEnrichment bool
	EnableBlockchain bool
	EnablePastes     bool

	// OnTick, when set, observes a stats snapshot at the end of every tick —
	// the live-dashboard hook.
	OnTick func(Stats)

	TorConfig tor.Config

	GitHubToken     string
	BraveAPIKey     string
	EtherscanAPIKey string
}

// DefaultConfig is a 500ms tick, a 5-minute ceiling, two crawlers, and
// three scrapers.
func DefaultConfig() Config {
	return Config{
		TickInterval: 500 * time.Millisecond,
		MaxRuntime:   300 * time.Second,
		NumCrawlers:  2,
		NumScrapers:  3,
		TorConfig:    tor.DefaultConfig(),
	}
}

// Stats is a point-in-time snapshot of the swarm's progress.
type Stats struct {
	Tick         int
	Elapsed      time.Duration
	FieldStats   field.Stats
	SummaryFound bool
}

// Swarm owns the Field and every worker, and runs the cooperative tick
// loop: on each tick every agent emits its Heartbeat and then runs Process
// (which does its own sensing) in roster order, and the field's own clock advances by exactly
// one tick interval. Workers never run concurrently with each other — only
// within a single agent's own Process call (the crawler's per-engine
// fan-out, for instance) is there any concurrency.
type Swarm struct {
	cfg     Config
	f       *field.Field
	roster  []agent.OsintAgent
	tick    int
	started time.Time
}

// New builds the full worker roster — refiner, crawlers, filter, scrapers,
// extractor, then the optional enricher/blockchain-analyst/paste-monitor
// trio, and finally the analyst — and binds them all to a fresh Field. The
// roster order matters: it is the order workers run within a tick, so on
// the happy path each stage sees the previous stage's emissions in the same
// tick.
func New(cfg Config, backend llm.Backend) (*Swarm, error) {
	f := field.New()

	torClient, err := tor.NewClient(cfg.TorConfig)
	if err != nil {
		return nil, fmt.Errorf("swarm: building tor client: %w", err)
	}

	s := &Swarm{cfg: cfg, f: f}

	s.roster = append(s.roster, workers.NewRefiner(agent.DefaultConfig().WithID("refiner-1"), backend))

	for i := 0; i < cfg.NumCrawlers; i++ {
		id := fmt.Sprintf("crawler-%d", i+1)
		s.roster = append(s.roster, workers.NewCrawler(agent.DefaultConfig().WithID(id), torClient, 3))
	}

	s.roster = append(s.roster, workers.NewFilter(agent.DefaultConfig().WithID("filter-1"), backend))

	for i := 0; i < cfg.NumScrapers; i++ {
		id := fmt.Sprintf("scraper-%d", i+1)
		s.roster = append(s.roster, workers.NewScraper(agent.DefaultConfig().WithID(id), torClient))
	}

	s.roster = append(s.roster, workers.NewExtractor(agent.DefaultConfig().WithID("extractor-1")))

	if cfg.EnableEnrichment {
		econf := workers.DefaultEnrichmentConfig(cfg.GitHubToken, cfg.BraveAPIKey)
		s.roster = append(s.roster, workers.NewEnricher(agent.DefaultConfig().WithID("enricher-1"), econf))
	}
	if cfg.EnableBlockchain {
		bconf := workers.DefaultBlockchainConfig(cfg.EtherscanAPIKey)
		s.roster = append(s.roster, workers.NewBlockchainAnalyst(agent.DefaultConfig().WithID("blockchain-1"), bconf))
	}
	if cfg.EnablePastes {
		s.roster = append(s.roster, workers.NewPasteMonitor(agent.DefaultConfig().WithID("paste-1"), workers.DefaultPasteMonitorConfig()))
	}

	analyst := workers.NewAnalyst(agent.DefaultConfig().WithID("analyst-1"), backend)
	if cfg.UseSpecialists {
		specialists, err := persona.NewSpecialistSystem(backend)
		if err != nil {
			return nil, fmt.Errorf("swarm: loading specialist personas: %w", err)
		}
		analyst = analyst.WithSpecialists(specialists)
	}
	s.roster = append(s.roster, analyst)

	return s, nil
}

// Field exposes the underlying field, for dashboard/CLI reporting.
func (s *Swarm) Field() *field.Field { return s.f }

// SubmitQuery emits the UserQuery signal that kicks off an investigation.
func (s *Swarm) SubmitQuery(query string, priority float64) string {
	sig := signal.NewBuilder(signal.UserQuery{Query: query, Priority: priority}).
		Origin("cli").Confidence(priority).TTL(300).Build()
	return s.f.Emit(sig)
}

// Run drives the tick loop until a Summary lands on the field, the
// configured max runtime elapses, or ctx is canceled. It returns the
// Summary's markdown report on success.
func (s *Swarm) Run(ctx context.Context) (string, error) {
	s.started = time.Now()
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			if time.Since(s.started) >= s.cfg.MaxRuntime {
				return "", fmt.Errorf("swarm: investigation timed out after %s", s.cfg.MaxRuntime)
			}
			if report, done := s.runTick(ctx); done {
				return report, nil
			}
		}
	}
}

// runTick advances the field's clock, lets every agent heartbeat and then
// process in roster order, and reports whether a Summary has landed.
func (s *Swarm) runTick(ctx context.Context) (string, bool) {
	s.tick++
	s.f.Tick(s.cfg.TickInterval.Seconds())

	for _, w := range s.roster {
		w.Heartbeat(s.f)
		emitted, err := w.Process(ctx, s.f)
		logAgentResult(w, emitted, err)
	}

	if s.cfg.OnTick != nil {
		s.cfg.OnTick(s.Stats())
	}

	summaries := s.f.SenseWhere(func(sig *signal.Signal) bool {
		_, ok := sig.Payload.(signal.Summary)
		return ok
	})
	if len(summaries) == 0 {
		return "", false
	}
	return summaries[0].Payload.(signal.Summary).Markdown, true
}

func logAgentResult(w agent.OsintAgent, emitted []string, err error) {
	if err == nil {
		log.Debug().Str("agent", w.ID()).Int("emitted", len(emitted)).Msg("agent processed work")
		return
	}
	kind, ok := agent.KindOf(err)
	if !ok {
		log.Warn().Str("agent", w.ID()).Err(err).Msg("agent returned unclassified error")
		return
	}
	switch kind {
	case agent.KindNoWork, agent.KindNotReady:
		// Normal — nothing matched this tick, or preconditions aren't met yet.
	default:
		event := log.Warn()
		if kind == agent.KindLlm || kind == agent.KindNetwork {
			event = log.Info()
		}
		event.Str("agent", w.ID()).Str("kind", kindName(kind)).Err(err).Msg("agent step failed")
	}
}

func kindName(k agent.Kind) string {
	switch k {
	case agent.KindLlm:
		return "llm"
	case agent.KindNetwork:
		return "network"
	case agent.KindParse:
		return "parse"
	case agent.KindNoWork:
		return "no_work"
	case agent.KindNotReady:
		return "not_ready"
	default:
		return "unknown"
	}
}

// Stats returns a point-in-time snapshot of the run.
func (s *Swarm) Stats() Stats {
	summaries := s.f.SenseWhere(func(sig *signal.Signal) bool {
		_, ok := sig.Payload.(signal.Summary)
		return ok
	})
	return Stats{
		Tick:         s.tick,
		Elapsed:      time.Since(s.started),
		FieldStats:   s.f.Stats(),
		SummaryFound: len(summaries) > 0,
	}
}

// ArtifactsSeen returns every distinct artifact currently live on the field,
// for archival once an investigation finishes.
func (s *Swarm) ArtifactsSeen() []models.Artifact {
	seen := make(map[string]struct{})
	var out []models.Artifact
	for _, sig := range s.f.SenseWhere(func(sig *signal.Signal) bool {
		_, ok := sig.Payload.(signal.ExtractedArtifacts)
		return ok
	}) {
		ea := sig.Payload.(signal.ExtractedArtifacts)
		for _, a := range ea.Artifacts {
			if _, ok := seen[a.DedupKey()]; ok {
				continue
			}
			seen[a.DedupKey()] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

// SourcesSeen returns the number of distinct pages scraped so far.
func (s *Swarm) SourcesSeen() int {
	urls := make(map[string]struct{})
	for _, sig := range s.f.SenseWhere(func(sig *signal.Signal) bool {
		_, ok := sig.Payload.(signal.ScrapedContent)
		return ok
	}) {
		urls[sig.Payload.(signal.ScrapedContent).URL] = struct{}{}
	}
	return len(urls)
}

// DashboardStats adapts Stats to the shape internal/api's dashboard router
// expects, keeping internal/api free of a dependency on this package.
func (s *Swarm) DashboardStats() api.SwarmStats {
	stats := s.Stats()
	return api.SwarmStats{
		Tick:             stats.Tick,
		ElapsedSeconds:   stats.Elapsed.Seconds(),
		ActiveSignals:    stats.FieldStats.ActiveSignals,
		TotalIntensity:   stats.FieldStats.TotalIntensity,
		AverageIntensity: stats.FieldStats.AverageIntensity,
		HistorySize:      stats.FieldStats.HistorySize,
		SummaryFound:     stats.SummaryFound,
	}
}
