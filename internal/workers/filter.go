package workers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/llm"
	"github.com/duskline/robin-smesh/internal/signal"
	"github.com/duskline/robin-smesh/pkg/models"
)

const filterFallbackPrompt = `You are a search-result relevance filter for an authorized OSINT investigation. Given the investigation's refined query and a numbered list of search results, respond with ONLY the numbers (1-indexed, comma or whitespace separated) of the results actually relevant to that query, ranked most relevant first. Do not include any other text.`

const maxFilterBatch = 50
const maxFilterSelected = 20

var digitRunRe = regexp.MustCompile(`\d+`)

// Filter asks the LLM to rank a batch of RawResults against the current
// refined query and emits a FilteredResult for each selected index.
type Filter struct {
	cfg     agent.Config
	backend llm.Backend
	system  string
	done    map[string]struct{}
}

// NewFilter constructs a Filter bound to backend.
func NewFilter(cfg agent.Config, backend llm.Backend) *Filter {
	return &Filter{
		cfg:     cfg,
		backend: backend,
		system:  personaSystem("filter", filterFallbackPrompt),
		done:    make(map[string]struct{}),
	}
}

func (ft *Filter) ID() string        { return ft.cfg.ID }
func (ft *Filter) AgentType() string { return string(models.AgentFilter) }

// Sense returns the origin hashes of unfiltered RawResult signals.
func (ft *Filter) Sense(f *field.Field) []string {
	var hashes []string
	for _, s := range f.SenseWhere(matchesPayload[signal.RawResult]) {
		if _, seen := ft.done[s.OriginHash]; seen {
			continue
		}
		hashes = append(hashes, s.OriginHash)
	}
	return hashes
}

func (ft *Filter) Process(ctx context.Context, f *field.Field) ([]string, error) {
	targets := ft.Sense(f)
	if len(targets) == 0 {
		return nil, agent.ErrNoWork
	}
	if len(targets) > maxFilterBatch {
		targets = targets[:maxFilterBatch]
	}

	type candidate struct {
		hash   string
		result signal.RawResult
	}
	var batch []candidate
	for _, hash := range targets {
		sig, ok := f.Get(hash)
		if !ok {
			continue
		}
		rr, ok := sig.Payload.(signal.RawResult)
		if !ok {
			continue
		}
		batch = append(batch, candidate{hash: hash, result: rr})
	}
	if len(batch) == 0 {
		return nil, agent.ErrNoWork
	}

	query := ft.currentQuery(f)

	var listing strings.Builder
	fmt.Fprintf(&listing, "Query: %s\n\n", query)
	for i, c := range batch {
		fmt.Fprintf(&listing, "%d. %s (%s)\n", i+1, c.result.Title, c.result.URL)
	}

	response, err := ft.backend.Generate(ctx, ft.system, listing.String())
	if err != nil {
		// Batch left unmarked so the same results are retried next tick.
		return nil, agent.Llm(err.Error())
	}

	for _, c := range batch {
		ft.done[c.hash] = struct{}{}
	}

	indices := parseSelectedIndices(response, len(batch), maxFilterSelected)
	if len(indices) == 0 {
		return nil, agent.ErrNoWork
	}

	var emitted []string
	for rank, idx := range indices {
		c := batch[idx-1]
		out := signal.NewBuilder(signal.FilteredResult{
			URL:       c.result.URL,
			Title:     c.result.Title,
			Relevance: 1.0 - float64(rank)*0.03,
			Reason:    fmt.Sprintf("Ranked #%d by relevance filter", rank+1),
		}).Origin(ft.cfg.ID).Confidence(0.85).TTL(120).Build()
		emitted = append(emitted, f.Emit(out))
	}

	return emitted, nil
}

// currentQuery reads the most recently emitted RefinedQuery's refined text,
// falling back to an empty string if the refiner hasn't produced one yet.
func (ft *Filter) currentQuery(f *field.Field) string {
	var latest *signal.Signal
	for _, s := range f.SenseWhere(matchesPayload[signal.RefinedQuery]) {
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return ""
	}
	return latest.Payload.(signal.RefinedQuery).Refined
}

// parseSelectedIndices pulls every digit run out of the LLM's response,
// keeps the ones that fall within [1, total], dedupes while preserving
// order, and caps the result at maxSelected.
func parseSelectedIndices(response string, total, maxSelected int) []int {
	var out []int
	seen := make(map[int]struct{})
	for _, raw := range digitRunRe.FindAllString(response, -1) {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > total {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
		if len(out) >= maxSelected {
			break
		}
	}
	return out
}

func (ft *Filter) Heartbeat(f *field.Field) {
	emitHeartbeat(f, ft.cfg.ID, models.AgentFilter, 1.0, 10)
}
