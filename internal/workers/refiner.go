// Package workers implements the nine-agent OSINT roster: each type
// satisfies agent.OsintAgent and is driven by the swarm's tick loop.
package workers

import (
	"context"
	"strings"
	"sync"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/llm"
	"github.com/duskline/robin-smesh/internal/persona"
	"github.com/duskline/robin-smesh/internal/signal"
	"github.com/duskline/robin-smesh/pkg/models"
)

const refinerFallbackPrompt = `You are a search query refinement specialist supporting authorized OSINT investigations conducted by security researchers and law enforcement. Given a raw investigative query, rewrite it into a concise, high-signal search term suitable for a dark-web search engine: strip filler words, surface the concrete entities (names, addresses, handles, technical terms) and drop anything conversational. Respond with only the refined query text, nothing else.`

// sharedRegistry loads the embedded persona set once for every worker that
// sources its system prompt from it.
var sharedRegistry = sync.OnceValues(persona.LoadEmbedded)

// personaSystem returns the named persona's system prompt, or fallback when
// the registry is unloadable or the persona is missing.
func personaSystem(id, fallback string) string {
	r, err := sharedRegistry()
	if err != nil {
		return fallback
	}
	if p, ok := r.Get(id); ok && p.SystemPrompt() != "" {
		return p.SystemPrompt()
	}
	return fallback
}

// Refiner turns a raw UserQuery into a concise search term via the LLM
// backend, so downstream crawlers issue tighter queries than the user typed.
type Refiner struct {
	cfg     agent.Config
	backend llm.Backend
	system  string
	done    map[string]struct{}
}

// NewRefiner constructs a Refiner bound to backend.
func NewRefiner(cfg agent.Config, backend llm.Backend) *Refiner {
	return &Refiner{
		cfg:     cfg,
		backend: backend,
		system:  personaSystem("refiner", refinerFallbackPrompt),
		done:    make(map[string]struct{}),
	}
}

func (r *Refiner) ID() string        { return r.cfg.ID }
func (r *Refiner) AgentType() string { return string(models.AgentRefiner) }

// Sense returns the origin hashes of UserQuery signals whose query string
// this refiner has not yet turned into a RefinedQuery.
func (r *Refiner) Sense(f *field.Field) []string {
	var hashes []string
	for _, s := range f.SenseWhere(matchesPayload[signal.UserQuery]) {
		uq, ok := s.Payload.(signal.UserQuery)
		if !ok {
			continue
		}
		if _, seen := r.done[uq.Query]; seen {
			continue
		}
		hashes = append(hashes, s.OriginHash)
	}
	return hashes
}

func (r *Refiner) Process(ctx context.Context, f *field.Field) ([]string, error) {
	targets := r.Sense(f)
	if len(targets) == 0 {
		return nil, agent.ErrNoWork
	}

	hash := targets[0]
	sig, ok := f.Get(hash)
	if !ok {
		return nil, agent.ErrNoWork
	}
	uq, ok := sig.Payload.(signal.UserQuery)
	if !ok {
		return nil, agent.ErrNoWork
	}

	refined, err := r.backend.Generate(ctx, r.system, uq.Query)
	if err != nil {
		// Not marked done: the same query is retried on a future tick.
		return nil, agent.Llm(err.Error())
	}
	r.done[uq.Query] = struct{}{}
	refined = strings.TrimSpace(refined)
	if refined == "" {
		refined = uq.Query
	}

	out := signal.NewBuilder(signal.RefinedQuery{
		Original:   uq.Query,
		Refined:    refined,
		Confidence: 0.9,
	}).Origin(r.cfg.ID).Confidence(clamp01(uq.Priority)).TTL(120).Build()

	emitted := f.Emit(out)
	return []string{emitted}, nil
}

func (r *Refiner) Heartbeat(f *field.Field) {
	emitHeartbeat(f, r.cfg.ID, models.AgentRefiner, 1.0, 10)
}

// matchesPayload is a generic SenseWhere predicate matching signals whose
// payload is exactly type T.
func matchesPayload[T signal.Payload](s *signal.Signal) bool {
	_, ok := s.Payload.(T)
	return ok
}

// emitHeartbeat is the common heartbeat emission every worker in this
// roster performs once per tick.
func emitHeartbeat(f *field.Field, agentID string, agentType models.AgentType, capacity float64, ttl float64) {
	hb := signal.NewBuilder(signal.Heartbeat{
		AgentID:   agentID,
		AgentType: agentType,
		Capacity:  capacity,
	}).Origin(agentID).TTL(ttl).Build()
	f.Emit(hb)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
