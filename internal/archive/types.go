package archive

import "time"

// InvestigationSummary is the row-level view returned by RecentInvestigations.
type InvestigationSummary struct {
	ID            int64
	Query         string
	SourceCount   int
	ArtifactCount int
	CreatedAt     time.Time
}
