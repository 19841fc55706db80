package field

import "github.com/duskline/robin-smesh/internal/signal"

// SignalsByType buckets a Sense result by payload variant, so a worker can
// read the slice it cares about without re-filtering on every call.
type SignalsByType struct {
	UserQueries        []*signal.Signal
	RefinedQueries     []*signal.Signal
	RawResults         []*signal.Signal
	FilteredResults    []*signal.Signal
	ScrapedContent     []*signal.Signal
	ExtractedArtifacts []*signal.Signal
	EnrichedArtifacts  []*signal.Signal
	BlockchainAnalyses []*signal.Signal
	PasteContent       []*signal.Signal
	Insights           []*signal.Signal
	Summaries          []*signal.Signal
	Heartbeats         []*signal.Signal
	TaskClaims         []*signal.Signal
}

// SenseByType is Sense partitioned by payload tag.
func (f *Field) SenseByType(minIntensity float64) SignalsByType {
	var buckets SignalsByType
	for _, s := range f.Sense(minIntensity) {
		switch s.Payload.(type) {
		case signal.UserQuery:
			buckets.UserQueries = append(buckets.UserQueries, s)
		case signal.RefinedQuery:
			buckets.RefinedQueries = append(buckets.RefinedQueries, s)
		case signal.RawResult:
			buckets.RawResults = append(buckets.RawResults, s)
		case signal.FilteredResult:
			buckets.FilteredResults = append(buckets.FilteredResults, s)
		case signal.ScrapedContent:
			buckets.ScrapedContent = append(buckets.ScrapedContent, s)
		case signal.ExtractedArtifacts:
			buckets.ExtractedArtifacts = append(buckets.ExtractedArtifacts, s)
		case signal.EnrichedArtifacts:
			buckets.EnrichedArtifacts = append(buckets.EnrichedArtifacts, s)
		case signal.BlockchainAnalysis:
			buckets.BlockchainAnalyses = append(buckets.BlockchainAnalyses, s)
		case signal.PasteContent:
			buckets.PasteContent = append(buckets.PasteContent, s)
		case signal.Insight:
			buckets.Insights = append(buckets.Insights, s)
		case signal.Summary:
			buckets.Summaries = append(buckets.Summaries, s)
		case signal.Heartbeat:
			buckets.Heartbeats = append(buckets.Heartbeats, s)
		case signal.TaskClaim:
			buckets.TaskClaims = append(buckets.TaskClaims, s)
		}
	}
	return buckets
}
