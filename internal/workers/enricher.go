package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/signal"
	"github.com/duskline/robin-smesh/pkg/models"
)

// EnrichmentConfig configures which external OSINT sources the Enricher
// queries and how many findings it keeps per artifact.
type EnrichmentConfig struct {
	GitHubToken           string
	BraveAPIKey           string
	EnableGitHub          bool
	EnableBrave           bool
	MaxResultsPerArtifact int
	Timeout               time.Duration

	// Base URLs are overridable for tests; zero values hit the real APIs.
	GitHubBaseURL string
	BraveBaseURL  string
}

// DefaultEnrichmentConfig enables whichever sources have credentials and
// caps findings at 5 per artifact per source.
func DefaultEnrichmentConfig(githubToken, braveAPIKey string) EnrichmentConfig {
	return EnrichmentConfig{
		GitHubToken:           githubToken,
		BraveAPIKey:           braveAPIKey,
		EnableGitHub:          githubToken != "",
		EnableBrave:           braveAPIKey != "",
		MaxResultsPerArtifact: 5,
		Timeout:               30 * time.Second,
		GitHubBaseURL:         "https://api.github.com",
		BraveBaseURL:          "https://api.search.brave.com",
	}
}

// enrichableTypes is the set of artifact types worth cross-referencing
// against code-search and web-search indexes: identity and infrastructure
// indicators plus file/wallet hashes.
var enrichableTypes = map[models.ArtifactType]bool{
	models.ArtifactEmail:    true,
	models.ArtifactUsername: true,
	models.ArtifactDomain:   true,
	models.ArtifactIPv4:     true,
	models.ArtifactIPv6:     true,
	models.ArtifactSHA256:   true,
	models.ArtifactSHA1:     true,
	models.ArtifactMD5:      true,
	models.ArtifactBitcoin:  true,
	models.ArtifactEthereum: true,
}

func shouldEnrich(t models.ArtifactType) bool { return enrichableTypes[t] }

// Enricher cross-references extracted artifacts against external OSINT
// sources (GitHub code search, Brave web search) and emits an
// EnrichedArtifacts signal per (artifact, source) pair that yields hits.
type Enricher struct {
	cfg    agent.Config
	econf  EnrichmentConfig
	client *http.Client
	done   map[string]struct{}
}

// NewEnricher constructs an Enricher using a direct (non-Tor) HTTP client,
// since GitHub and Brave are clearnet APIs.
func NewEnricher(cfg agent.Config, econf EnrichmentConfig) *Enricher {
	return &Enricher{
		cfg:    cfg,
		econf:  econf,
		client: &http.Client{Timeout: econf.Timeout},
		done:   make(map[string]struct{}),
	}
}

func (en *Enricher) ID() string        { return en.cfg.ID }
func (en *Enricher) AgentType() string { return string(models.AgentEnricher) }

// Sense returns the origin hashes of ExtractedArtifacts signals not yet
// enriched.
func (en *Enricher) Sense(f *field.Field) []string {
	var hashes []string
	for _, s := range f.SenseWhere(matchesPayload[signal.ExtractedArtifacts]) {
		if _, seen := en.done[s.OriginHash]; seen {
			continue
		}
		hashes = append(hashes, s.OriginHash)
	}
	return hashes
}

func (en *Enricher) Process(ctx context.Context, f *field.Field) ([]string, error) {
	if !en.econf.EnableGitHub && !en.econf.EnableBrave {
		return nil, agent.NotReady("no enrichment sources configured")
	}

	targets := en.Sense(f)
	if len(targets) == 0 {
		return nil, agent.ErrNoWork
	}

	hash := targets[0]
	sig, ok := f.Get(hash)
	if !ok {
		return nil, agent.ErrNoWork
	}
	ea, ok := sig.Payload.(signal.ExtractedArtifacts)
	if !ok {
		return nil, agent.ErrNoWork
	}

	en.done[hash] = struct{}{}

	var emitted []string
	for _, art := range ea.Artifacts {
		if !shouldEnrich(art.Type) {
			continue
		}
		// The same artifact can surface from several pages; enrich it once.
		key := string(art.Type) + ":" + art.Value
		if _, seen := en.done[key]; seen {
			continue
		}
		en.done[key] = struct{}{}

		if en.econf.EnableGitHub {
			findings, err := en.searchGitHub(ctx, art)
			if err == nil && len(findings) > 0 {
				out := signal.NewBuilder(signal.EnrichedArtifacts{
					Artifact: art, Source: "github", Findings: findings,
				}).Origin(en.cfg.ID).Confidence(0.7).TTL(120).Build()
				emitted = append(emitted, f.Emit(out))
			}
		}
		if en.econf.EnableBrave {
			findings, err := en.searchBrave(ctx, art)
			if err == nil && len(findings) > 0 {
				out := signal.NewBuilder(signal.EnrichedArtifacts{
					Artifact: art, Source: "brave", Findings: findings,
				}).Origin(en.cfg.ID).Confidence(0.7).TTL(120).Build()
				emitted = append(emitted, f.Emit(out))
			}
		}
	}

	if len(emitted) == 0 {
		return nil, agent.ErrNoWork
	}
	return emitted, nil
}

func githubQuery(a models.Artifact) string {
	return fmt.Sprintf("%q", a.Value)
}

func braveQuery(a models.Artifact) string {
	return fmt.Sprintf("%q %s", a.Value, a.Type)
}

type githubSearchResponse struct {
	Items []struct {
		Name       string `json:"name"`
		HTMLURL    string `json:"html_url"`
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
	} `json:"items"`
}

func (en *Enricher) searchGitHub(ctx context.Context, a models.Artifact) ([]models.EnrichmentFinding, error) {
	base := en.econf.GitHubBaseURL
	if base == "" {
		base = "https://api.github.com"
	}
	endpoint := base + "/search/code?q=" + url.QueryEscape(githubQuery(a))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+en.econf.GitHubToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := en.client.Do(req)
	if err != nil {
		return nil, agent.Network(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, agent.Network(fmt.Sprintf("github search: status %d", resp.StatusCode))
	}

	var parsed githubSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, agent.Parse(err.Error())
	}

	max := en.econf.MaxResultsPerArtifact
	var findings []models.EnrichmentFinding
	for i, item := range parsed.Items {
		if i >= max {
			break
		}
		findings = append(findings, models.EnrichmentFinding{
			FindingType: "github_code",
			Title:       item.Repository.FullName + "/" + item.Name,
			URL:         item.HTMLURL,
			Snippet:     "",
			Relevance:   0.6,
		})
	}
	return findings, nil
}

type braveSearchResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (en *Enricher) searchBrave(ctx context.Context, a models.Artifact) ([]models.EnrichmentFinding, error) {
	base := en.econf.BraveBaseURL
	if base == "" {
		base = "https://api.search.brave.com"
	}
	endpoint := base + "/res/v1/web/search?q=" + url.QueryEscape(braveQuery(a))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Subscription-Token", en.econf.BraveAPIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := en.client.Do(req)
	if err != nil {
		return nil, agent.Network(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, agent.Network(fmt.Sprintf("brave search: status %d", resp.StatusCode))
	}

	var parsed braveSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, agent.Parse(err.Error())
	}

	max := en.econf.MaxResultsPerArtifact
	var findings []models.EnrichmentFinding
	for i, r := range parsed.Web.Results {
		if i >= max {
			break
		}
		findings = append(findings, models.EnrichmentFinding{
			FindingType: "brave_web",
			Title:       r.Title,
			URL:         r.URL,
			Snippet:     r.Description,
			Relevance:   0.5,
		})
	}
	return findings, nil
}

func (en *Enricher) Heartbeat(f *field.Field) {
	emitHeartbeat(f, en.cfg.ID, models.AgentEnricher, 1.0, 10)
}
