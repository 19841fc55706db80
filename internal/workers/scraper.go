package workers

import (
	"context"
	"net/http"
	"sync"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/signal"
	"github.com/duskline/robin-smesh/internal/tor"
	"github.com/duskline/robin-smesh/pkg/models"
)

// Scraper fetches up to cfg.MaxConcurrent FilteredResult URLs per
// activation and emits the extracted page text as ScrapedContent. Each URL
// is marked scraped before its fetch completes, so a failed fetch is never
// retried every tick.
type Scraper struct {
	cfg     agent.Config
	client  *http.Client
	scraped map[string]struct{}
	count   int
}

// NewScraper constructs a Scraper using the given Tor-routed HTTP client.
func NewScraper(cfg agent.Config, client *http.Client) *Scraper {
	return &Scraper{cfg: cfg, client: client, scraped: make(map[string]struct{})}
}

func (s *Scraper) ID() string        { return s.cfg.ID }
func (s *Scraper) AgentType() string { return string(models.AgentScraper) }

// Sense returns the origin hashes of FilteredResult signals whose URL has
// not yet been scraped.
func (s *Scraper) Sense(f *field.Field) []string {
	var hashes []string
	for _, sig := range f.SenseWhere(matchesPayload[signal.FilteredResult]) {
		fr := sig.Payload.(signal.FilteredResult)
		if _, seen := s.scraped[fr.URL]; seen {
			continue
		}
		hashes = append(hashes, sig.OriginHash)
	}
	return hashes
}

type scrapeOutcome struct {
	page tor.ScrapedPage
	err  error
}

func (s *Scraper) Process(ctx context.Context, f *field.Field) ([]string, error) {
	targets := s.Sense(f)
	if len(targets) == 0 {
		return nil, agent.ErrNoWork
	}
	if max := s.cfg.MaxConcurrent; max > 0 && len(targets) > max {
		targets = targets[:max]
	}

	urls := make([]string, len(targets))
	for i, hash := range targets {
		sig, ok := f.Get(hash)
		if !ok {
			continue
		}
		fr, ok := sig.Payload.(signal.FilteredResult)
		if !ok {
			continue
		}
		urls[i] = fr.URL
		s.scraped[fr.URL] = struct{}{}
	}

	outcomes := make([]scrapeOutcome, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		if u == "" {
			continue
		}
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			page, err := tor.ScrapeURL(ctx, s.client, u)
			outcomes[i] = scrapeOutcome{page: page, err: err}
		}(i, u)
	}
	wg.Wait()

	var emitted []string
	for _, o := range outcomes {
		if o.err != nil || o.page.Text == "" {
			continue
		}
		s.count++
		out := signal.NewBuilder(signal.ScrapedContent{
			URL:       o.page.URL,
			Title:     o.page.Title,
			Text:      o.page.Text,
			CharCount: o.page.CharCount,
		}).Origin(s.cfg.ID).Confidence(0.9).TTL(180).Build()
		emitted = append(emitted, f.Emit(out))
	}

	if len(emitted) == 0 {
		return nil, agent.ErrNoWork
	}
	return emitted, nil
}

func (s *Scraper) Heartbeat(f *field.Field) {
	capacity := 1.0
	if s.count >= 10 {
		capacity = 0.5
	}
	emitHeartbeat(f, s.cfg.ID, models.AgentScraper, capacity, 10)
}
