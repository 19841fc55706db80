package workers

import (
	"context"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/artifactscan"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/signal"
	"github.com/duskline/robin-smesh/pkg/models"
)

// Extractor scans ScrapedContent for intelligence artifacts (IOCs) and
// emits an ExtractedArtifacts signal per page that yields at least one hit.
type Extractor struct {
	cfg  agent.Config
	done map[string]struct{}
}

// NewExtractor constructs an Extractor.
func NewExtractor(cfg agent.Config) *Extractor {
	return &Extractor{cfg: cfg, done: make(map[string]struct{})}
}

func (e *Extractor) ID() string        { return e.cfg.ID }
func (e *Extractor) AgentType() string { return string(models.AgentExtractor) }

// Sense returns the origin hashes of ScrapedContent signals whose URL has
// not yet been scanned for artifacts.
func (e *Extractor) Sense(f *field.Field) []string {
	var hashes []string
	for _, s := range f.SenseWhere(matchesPayload[signal.ScrapedContent]) {
		sc := s.Payload.(signal.ScrapedContent)
		if _, seen := e.done[sc.URL]; seen {
			continue
		}
		hashes = append(hashes, s.OriginHash)
	}
	return hashes
}

func (e *Extractor) Process(ctx context.Context, f *field.Field) ([]string, error) {
	targets := e.Sense(f)
	if len(targets) == 0 {
		return nil, agent.ErrNoWork
	}

	hash := targets[0]
	sig, ok := f.Get(hash)
	if !ok {
		return nil, agent.ErrNoWork
	}
	sc, ok := sig.Payload.(signal.ScrapedContent)
	if !ok {
		return nil, agent.ErrNoWork
	}

	e.done[sc.URL] = struct{}{}

	artifacts := artifactscan.Extract(sc.Text, sc.URL)
	if len(artifacts) == 0 {
		return nil, agent.ErrNoWork
	}

	out := signal.NewBuilder(signal.ExtractedArtifacts{
		SourceURL: sc.URL,
		Artifacts: artifacts,
	}).Origin(e.cfg.ID).Confidence(0.85).TTL(180).Build()

	return []string{f.Emit(out)}, nil
}

func (e *Extractor) Heartbeat(f *field.Field) {
	emitHeartbeat(f, e.cfg.ID, models.AgentExtractor, 1.0, 10)
}
