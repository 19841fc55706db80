package field

import (
	"testing"

	"github.com/duskline/robin-smesh/internal/signal"
)

func TestEmitAndSense(t *testing.T) {
	f := New()
	s := signal.NewBuilder(signal.UserQuery{Query: "ransomware payments", Priority: 0.8}).
		Origin("user").Confidence(1.0).TTL(300).Build()

	hash := f.Emit(s)
	if hash == "" {
		t.Fatal("expected a non-empty origin hash")
	}
	if f.ActiveCount() != 1 {
		t.Fatalf("expected 1 active signal, got %d", f.ActiveCount())
	}

	sensed := f.Sense(0.1)
	if len(sensed) != 1 {
		t.Fatalf("expected 1 sensed signal, got %d", len(sensed))
	}
}

func TestEmitReinforces(t *testing.T) {
	f := New()
	build := func() *signal.Signal {
		return signal.NewBuilder(signal.RefinedQuery{Original: "x", Refined: "y", Confidence: 0.9}).
			Origin("refiner-1").Build()
	}

	f.Emit(build())
	f.Emit(build())

	if f.ActiveCount() != 1 {
		t.Fatalf("expected reinforcement to collapse to 1 live signal, got %d", f.ActiveCount())
	}

	stats := f.Stats()
	if stats.TotalReinforcements != 1 {
		t.Fatalf("expected 1 total reinforcement, got %d", stats.TotalReinforcements)
	}
}

func TestTickExpiresSignals(t *testing.T) {
	f := New()
	s := signal.NewBuilder(signal.Heartbeat{AgentID: "a", Capacity: 1.0}).Origin("a").TTL(1).Build()
	f.Emit(s)

	result := f.Tick(2.0)
	if result.ExpiredCount != 1 {
		t.Fatalf("expected 1 expired signal after ticking past ttl, got %d", result.ExpiredCount)
	}
	if f.ActiveCount() != 0 {
		t.Fatalf("expected 0 active signals after expiration, got %d", f.ActiveCount())
	}
}

func TestTickAdvancesMonotonically(t *testing.T) {
	f := New()
	start := f.CurrentTime()
	f.Tick(0.5)
	if !f.CurrentTime().After(start) {
		t.Fatal("expected current time to advance after tick")
	}
}

func TestSenseByTypeBucketsByPayload(t *testing.T) {
	f := New()
	f.Emit(signal.NewBuilder(signal.RawResult{URL: "http://a.onion", Title: "A", Engine: "Ahmia"}).
		Origin("crawler-1").Confidence(0.7).Build())
	f.Emit(signal.NewBuilder(signal.RefinedQuery{Original: "x", Refined: "y"}).
		Origin("refiner-1").Confidence(0.9).Build())

	buckets := f.SenseByType(0.1)
	if len(buckets.RawResults) != 1 {
		t.Fatalf("expected 1 raw result, got %d", len(buckets.RawResults))
	}
	if len(buckets.RefinedQueries) != 1 {
		t.Fatalf("expected 1 refined query, got %d", len(buckets.RefinedQueries))
	}
}

func TestSenseWhereFindsSummary(t *testing.T) {
	f := New()
	f.Emit(signal.NewBuilder(signal.Summary{Markdown: "# done", ArtifactCount: 2, SourceCount: 3}).
		Origin("analyst-1").Confidence(0.95).TTL(300).Build())

	found := f.SenseWhere(func(s *signal.Signal) bool {
		_, ok := s.Payload.(signal.Summary)
		return ok
	})
	if len(found) != 1 {
		t.Fatalf("expected 1 summary signal, got %d", len(found))
	}
}
