package models

// TemporalPattern is a detected timing pattern in a wallet's transaction
// history — regular_interval, burst_activity, dormant_then_active, or (for
// Ethereum) timezone_indicator. See internal/workers/blockchain.go for the
// detection logic these are produced by.
type TemporalPattern struct {
	PatternType string   `json:"patternType"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"`
	Evidence    []string `json:"evidence"`
}

// WalletAnalysis summarizes an on-chain address lookup: activity window,
// volume, and any temporal patterns or risk indicators found.
type WalletAnalysis struct {
	FirstSeen      *int64            `json:"firstSeen,omitempty"`
	LastSeen       *int64            `json:"lastSeen,omitempty"`
	TxCount        uint32            `json:"txCount"`
	TotalReceived  uint64            `json:"totalReceived"`
	TotalSent      uint64            `json:"totalSent"`
	Balance        uint64            `json:"balance"`
	Patterns       []TemporalPattern `json:"patterns"`
	RiskIndicators []string          `json:"riskIndicators"`
}

// EnrichmentFinding is a single hit from an external OSINT source (GitHub
// code search, Brave web search, ...) for a given artifact.
type EnrichmentFinding struct {
	FindingType string  `json:"findingType"`
	Title       string  `json:"title"`
	URL         string  `json:"url,omitempty"`
	Snippet     string  `json:"snippet"`
	Relevance   float64 `json:"relevance"`
}

// AgentType stabilizes the agent_type field carried on Heartbeat signals.
type AgentType string

const (
	AgentRefiner      AgentType = "refiner"
	AgentCrawler      AgentType = "crawler"
	AgentFilter       AgentType = "filter"
	AgentScraper      AgentType = "scraper"
	AgentExtractor    AgentType = "extractor"
	AgentEnricher     AgentType = "enricher"
	AgentBlockchain   AgentType = "blockchain_analyst"
	AgentPasteMonitor AgentType = "paste_monitor"
	AgentAnalyst      AgentType = "analyst"
)

// InsightCategory tags a standalone Insight signal (see internal/signal).
type InsightCategory string

const (
	InsightCategoryInfrastructure InsightCategory = "infrastructure"
	InsightCategoryActor          InsightCategory = "actor"
	InsightCategoryFinancial      InsightCategory = "financial"
	InsightCategoryGeneral        InsightCategory = "general"
)
