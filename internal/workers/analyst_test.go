package workers

import (
	"context"
	"testing"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/persona"
	"github.com/duskline/robin-smesh/internal/signal"
	"github.com/duskline/robin-smesh/pkg/models"
)

func emitScraped(f *field.Field, n int) {
	for i := 0; i < n; i++ {
		f.Emit(signal.NewBuilder(signal.ScrapedContent{
			URL:  "http://site.onion/" + string(rune('a'+i)),
			Text: "some scraped page content about the investigation",
		}).Origin("scraper-1").TTL(180).Build())
	}
}

func TestAnalystNotReadyBelowThreshold(t *testing.T) {
	f := field.New()
	a := NewAnalyst(agent.DefaultConfig().WithID("analyst-1"), &fakeBackend{response: "# Report"})
	emitScraped(f, 2)

	_, err := a.Process(context.Background(), f)
	kind, ok := agent.KindOf(err)
	if !ok || kind != agent.KindNotReady {
		t.Fatalf("expected NotReady, got %v", err)
	}
}

func TestAnalystProducesExactlyOneSummary(t *testing.T) {
	f := field.New()
	backend := &fakeBackend{response: "# Executive Summary\nfindings here"}
	a := NewAnalyst(agent.DefaultConfig().WithID("analyst-1"), backend)
	emitScraped(f, 3)

	emitted, err := a.Process(context.Background(), f)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(emitted) != 1 {
		t.Fatalf("expected 1 summary signal, got %d", len(emitted))
	}

	sig, _ := f.Get(emitted[0])
	summary := sig.Payload.(signal.Summary)
	if summary.SourceCount != 3 {
		t.Fatalf("expected sourceCount 3, got %d", summary.SourceCount)
	}

	if _, err := a.Process(context.Background(), f); err != agent.ErrNoWork {
		t.Fatalf("expected ErrNoWork after summary emitted, got %v", err)
	}
	if backend.calls != 1 {
		t.Fatalf("expected exactly 1 backend call across both Process calls, got %d", backend.calls)
	}
}

func TestAnalystHeartbeatZeroesAfterSummary(t *testing.T) {
	f := field.New()
	a := NewAnalyst(agent.DefaultConfig().WithID("analyst-1"), &fakeBackend{response: "# Report"})
	a.summaryDone = true
	a.Heartbeat(f)

	hbs := f.SenseWhere(matchesPayload[signal.Heartbeat])
	hb := hbs[0].Payload.(signal.Heartbeat)
	if hb.Capacity != 0.0 {
		t.Fatalf("expected capacity 0.0 after summary, got %v", hb.Capacity)
	}
}

func TestAnalystSpecialistModeEmitsInsightsAndSummary(t *testing.T) {
	f := field.New()
	backend := &fakeBackend{response: "# Executive Summary\nsynthesized findings"}
	specialists, err := persona.NewSpecialistSystem(backend)
	if err != nil {
		t.Fatalf("NewSpecialistSystem: %v", err)
	}
	a := NewAnalyst(agent.DefaultConfig().WithID("analyst-1"), backend).WithSpecialists(specialists)
	emitScraped(f, 3)

	emitted, err := a.Process(context.Background(), f)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	insights := f.SenseWhere(matchesPayload[signal.Insight])
	if len(insights) == 0 {
		t.Fatalf("expected at least one Insight signal from the specialist panel")
	}
	summaries := f.SenseWhere(matchesPayload[signal.Summary])
	if len(summaries) != 1 {
		t.Fatalf("expected exactly one Summary signal, got %d", len(summaries))
	}
	if len(emitted) != len(insights)+1 {
		t.Fatalf("expected Process to return insight hashes plus the summary hash, got %d emitted vs %d insights", len(emitted), len(insights))
	}
}

func TestBuildArtifactsSectionDedupes(t *testing.T) {
	f := field.New()
	f.Emit(signal.NewBuilder(signal.ExtractedArtifacts{
		SourceURL: "a",
		Artifacts: []models.Artifact{models.NewArtifact(models.ArtifactBitcoin, "abc")},
	}).Origin("extractor-1").TTL(180).Build())
	f.Emit(signal.NewBuilder(signal.ExtractedArtifacts{
		SourceURL: "b",
		Artifacts: []models.Artifact{models.NewArtifact(models.ArtifactBitcoin, "abc")},
	}).Origin("extractor-2").TTL(180).Build())

	text, count := buildArtifactsSection(f)
	if count != 1 {
		t.Fatalf("expected deduped count 1, got %d", count)
	}
	if text == "" {
		t.Fatalf("expected non-empty artifacts section")
	}
}
