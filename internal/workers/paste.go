package workers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/signal"
	"github.com/duskline/robin-smesh/pkg/models"
)

// PasteMonitorConfig bounds how much a single investigation sweeps across
// paste sites.
type PasteMonitorConfig struct {
	MaxPastesPerSite int
	Timeout          time.Duration
	MinPasteLength   int
}

// DefaultPasteMonitorConfig caps each sweep at 10 pastes per site and drops
// anything shorter than 50 characters.
func DefaultPasteMonitorConfig() PasteMonitorConfig {
	return PasteMonitorConfig{
		MaxPastesPerSite: 10,
		Timeout:          30 * time.Second,
		MinPasteLength:   50,
	}
}

type pasteSite struct {
	name      string
	searchURL string
}

// pasteSites is the catalog of clearnet paste-sharing sites searched for a
// refined query's hits. These are ordinary clearnet properties, so the
// PasteMonitor goes out over a direct HTTP client, not the Tor transport.
var pasteSites = []pasteSite{
	{name: "psbdmp", searchURL: "https://psbdmp.ws/api/search/%s"},
	{name: "rentry", searchURL: "https://rentry.co/search?q=%s"},
	{name: "dpaste", searchURL: "https://dpaste.com/search?q=%s"},
	{name: "controlc", searchURL: "https://controlc.com/search?q=%s"},
	{name: "justpaste", searchURL: "https://justpaste.it/search?q=%s"},
}

// PasteMonitor sweeps a set of public paste-sharing sites for hits against
// the refined query and emits a PasteContent signal per result of at least
// MinPasteLength characters.
type PasteMonitor struct {
	cfg    agent.Config
	pconf  PasteMonitorConfig
	client *http.Client
	done   map[string]struct{}
}

// NewPasteMonitor constructs a PasteMonitor.
func NewPasteMonitor(cfg agent.Config, pconf PasteMonitorConfig) *PasteMonitor {
	return &PasteMonitor{
		cfg:    cfg,
		pconf:  pconf,
		client: &http.Client{Timeout: pconf.Timeout},
		done:   make(map[string]struct{}),
	}
}

func (p *PasteMonitor) ID() string        { return p.cfg.ID }
func (p *PasteMonitor) AgentType() string { return string(models.AgentPasteMonitor) }

// Sense returns the origin hashes of RefinedQuery signals not yet swept.
func (p *PasteMonitor) Sense(f *field.Field) []string {
	var hashes []string
	for _, s := range f.SenseWhere(matchesPayload[signal.RefinedQuery]) {
		if _, seen := p.done[s.OriginHash]; seen {
			continue
		}
		hashes = append(hashes, s.OriginHash)
	}
	return hashes
}

func (p *PasteMonitor) Process(ctx context.Context, f *field.Field) ([]string, error) {
	targets := p.Sense(f)
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

	p.done[hash] = struct{}{}

	var emitted []string
	for _, site := range pasteSites {
		pastes, err := p.searchSite(ctx, site, rq.Refined)
		if err != nil {
			continue
		}
		for _, paste := range pastes {
			if len(paste.Content) < p.pconf.MinPasteLength {
				continue
			}
			out := signal.NewBuilder(signal.PasteContent{
				URL:     paste.URL,
				Site:    site.name,
				Title:   paste.Title,
				Content: paste.Content,
			}).Origin(p.cfg.ID).Confidence(0.7).TTL(300).Build()
			emitted = append(emitted, f.Emit(out))
		}
	}

	if len(emitted) == 0 {
		return nil, agent.ErrNoWork
	}
	return emitted, nil
}

type pasteHit struct {
	URL     string
	Title   string
	Content string
}

// searchSite fetches a site's search results page and scrapes up to
// MaxPastesPerSite hit links, following each to pull its body text.
func (p *PasteMonitor) searchSite(ctx context.Context, site pasteSite, query string) ([]pasteHit, error) {
	searchURL := fmt.Sprintf(site.searchURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, agent.Network(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, agent.Network(fmt.Sprintf("%s: status %d", site.name, resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, agent.Parse(err.Error())
	}

	var links []string
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if len(links) >= p.pconf.MaxPastesPerSite {
			return
		}
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		links = append(links, resolveLink(searchURL, href))
	})

	var hits []pasteHit
	for _, link := range links {
		hit, err := p.fetchPaste(ctx, link)
		if err != nil {
			continue
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func resolveLink(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

func (p *PasteMonitor) fetchPaste(ctx context.Context, link string) (pasteHit, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return pasteHit{}, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return pasteHit{}, agent.Network(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return pasteHit{}, agent.Network(fmt.Sprintf("status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return pasteHit{}, agent.Parse(err.Error())
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	body := doc.Find("body").First()
	body.Find("script, style, noscript").Remove()
	content := strings.Join(strings.Fields(body.Text()), " ")

	return pasteHit{URL: link, Title: title, Content: content}, nil
}

func (p *PasteMonitor) Heartbeat(f *field.Field) {
	emitHeartbeat(f, p.cfg.ID, models.AgentPasteMonitor, 1.0, 10)
}
