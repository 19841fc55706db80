package workers

import (
	"context"
	"net/http"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/signal"
	"github.com/duskline/robin-smesh/internal/tor"
	"github.com/duskline/robin-smesh/pkg/models"
)

// Crawler fans a RefinedQuery out across the dark-web search-engine catalog
// and emits one RawResult per deduplicated hit.
type Crawler struct {
	cfg           agent.Config
	client        *http.Client
	engines       []tor.SearchEngine
	maxConcurrent int
	processed     int
	done          map[string]struct{}
}

// NewCrawler constructs a Crawler using the active engine catalog and the
// given Tor-routed HTTP client.
func NewCrawler(cfg agent.Config, client *http.Client, maxConcurrent int) *Crawler {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Crawler{
		cfg:           cfg,
		client:        client,
		engines:       tor.ActiveEngines(),
		maxConcurrent: maxConcurrent,
		done:          make(map[string]struct{}),
	}
}

func (c *Crawler) ID() string        { return c.cfg.ID }
func (c *Crawler) AgentType() string { return string(models.AgentCrawler) }

// Sense returns the origin hashes of RefinedQuery signals whose refined
// string has not yet been crawled.
func (c *Crawler) Sense(f *field.Field) []string {
	var hashes []string
	for _, s := range f.SenseWhere(matchesPayload[signal.RefinedQuery]) {
		rq, ok := s.Payload.(signal.RefinedQuery)
		if !ok {
			continue
		}
		if _, seen := c.done[rq.Refined]; seen {
			continue
		}
		hashes = append(hashes, s.OriginHash)
	}
	return hashes
}

func (c *Crawler) Process(ctx context.Context, f *field.Field) ([]string, error) {
	targets := c.Sense(f)
	if len(targets) == 0 {
		return nil, agent.ErrNoWork
	}

	hash := targets[0]
	sig, ok := f.Get(hash)
	if !ok {
		return nil, agent.ErrNoWork
	}
	rq, ok := sig.Payload.(signal.RefinedQuery)
	if !ok {
		return nil, agent.ErrNoWork
	}

	results := tor.CrawlEngines(ctx, c.client, c.engines, rq.Refined, c.maxConcurrent)
	if len(results) == 0 {
		// Not marked done: the query is retried on a future tick.
		return nil, agent.Network("no search results across any engine")
	}
	c.done[rq.Refined] = struct{}{}

	var emitted []string
	for _, r := range results {
		out := signal.NewBuilder(signal.RawResult{
			URL:    r.URL,
			Title:  r.Title,
			Engine: r.Engine,
		}).Origin(c.cfg.ID).Confidence(0.7).TTL(90).Build()
		emitted = append(emitted, f.Emit(out))
	}

	c.processed++
	return emitted, nil
}

func (c *Crawler) Heartbeat(f *field.Field) {
	capacity := 1.0
	if c.processed >= 3 {
		capacity = 0.5
	}
	emitHeartbeat(f, c.cfg.ID, models.AgentCrawler, capacity, 10)
}
