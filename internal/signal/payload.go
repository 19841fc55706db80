package signal

import "github.com/duskline/robin-smesh/pkg/models"

// Payload is the closed sum type carried by a Signal. Every variant below
// implements it; Tag returns a stable string so callers can switch on the
// wire tag without a type assertion when only routing (not reading fields)
// is needed. Workers type-switch on the concrete type to reach the fields,
// and Field's bucketing (SenseByType) also switches on the concrete type
// rather than on Tag.
type Payload interface {
	Tag() string
}

// UserQuery is submitted by an external caller to start an investigation.
type UserQuery struct {
	Query    string  `json:"query"`
	Priority float64 `json:"priority"`
}

func (UserQuery) Tag() string { return "user_query" }

// RefinedQuery is the Refiner's LLM-cleaned search term.
type RefinedQuery struct {
	Original   string  `json:"original"`
	Refined    string  `json:"refined"`
	Confidence float64 `json:"confidence"`
}

func (RefinedQuery) Tag() string { return "refined_query" }

// RawResult is one anchor surviving the Crawler's search-engine scrape.
type RawResult struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Engine string `json:"engine"`
}

func (RawResult) Tag() string { return "raw_result" }

// FilteredResult is a RawResult the Filter's LLM ranking selected.
type FilteredResult struct {
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Relevance float64 `json:"relevance"`
	Reason    string  `json:"reason"`
}

func (FilteredResult) Tag() string { return "filtered_result" }

// ScrapedContent is the Scraper's fetched and cleaned page text.
type ScrapedContent struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	CharCount int    `json:"charCount"`
}

func (ScrapedContent) Tag() string { return "scraped_content" }

// ExtractedArtifacts is the Extractor's IOC scan of a page's text.
type ExtractedArtifacts struct {
	SourceURL string            `json:"sourceUrl"`
	Artifacts []models.Artifact `json:"artifacts"`
}

func (ExtractedArtifacts) Tag() string { return "extracted_artifacts" }

// EnrichedArtifacts is one external-source hit set for a single artifact.
type EnrichedArtifacts struct {
	Artifact models.Artifact            `json:"artifact"`
	Source   string                     `json:"source"`
	Findings []models.EnrichmentFinding `json:"findings"`
}

func (EnrichedArtifacts) Tag() string { return "enriched_artifacts" }

// BlockchainAnalysis is the BlockchainAnalyst's on-chain lookup result.
type BlockchainAnalysis struct {
	Address  string                `json:"address"`
	Chain    string                `json:"chain"`
	Analysis models.WalletAnalysis `json:"analysis"`
}

func (BlockchainAnalysis) Tag() string { return "blockchain_analysis" }

// PasteContent is a hit from the PasteMonitor's paste-site sweep.
type PasteContent struct {
	URL       string `json:"url"`
	Site      string `json:"site"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt,omitempty"`
	Author    string `json:"author,omitempty"`
}

func (PasteContent) Tag() string { return "paste_content" }

// Insight is a standalone observational note a specialist can drop onto the
// field independent of the final report.
type Insight struct {
	Category   models.InsightCategory `json:"category"`
	Content    string                 `json:"content"`
	Sources    []string               `json:"sources"`
	Confidence float64                `json:"confidence"`
}

func (Insight) Tag() string { return "insight" }

// Summary is the Analyst's terminal report; its presence on the field ends
// the investigation.
type Summary struct {
	Markdown      string `json:"markdown"`
	ArtifactCount int    `json:"artifactCount"`
	SourceCount   int    `json:"sourceCount"`
}

func (Summary) Tag() string { return "summary" }

// Heartbeat is emitted by every worker once per tick to advertise capacity.
type Heartbeat struct {
	AgentID   string           `json:"agentId"`
	AgentType models.AgentType `json:"agentType"`
	Capacity  float64          `json:"capacity"`
}

func (Heartbeat) Tag() string { return "heartbeat" }

// TaskClaim is reserved for future affinity-based task claiming; no worker
// in this roster requires it for correctness.
type TaskClaim struct {
	TaskID    string  `json:"taskId"`
	ClaimerID string  `json:"claimerId"`
	Affinity  float64 `json:"affinity"`
}

func (TaskClaim) Tag() string { return "task_claim" }
