package workers

import (
	"context"
	"testing"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/signal"
)

func TestExtractorProcess(t *testing.T) {
	f := field.New()
	e := NewExtractor(agent.DefaultConfig().WithID("extractor-1"))

	f.Emit(signal.NewBuilder(signal.ScrapedContent{
		URL:       "http://vendor.onion",
		Title:     "Vendor",
		Text:      "Contact us at vendor@example7x8z9abcd.onion or send BTC to bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq.",
		CharCount: 100,
	}).Origin("scraper-1").TTL(180).Build())

	emitted, err := e.Process(context.Background(), f)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(emitted) != 1 {
		t.Fatalf("expected 1 extracted signal, got %d", len(emitted))
	}
	sig, _ := f.Get(emitted[0])
	ea := sig.Payload.(signal.ExtractedArtifacts)
	if len(ea.Artifacts) == 0 {
		t.Fatalf("expected at least one artifact")
	}

	if _, err := e.Process(context.Background(), f); err != agent.ErrNoWork {
		t.Fatalf("expected ErrNoWork on re-process, got %v", err)
	}
}

func TestExtractorNoArtifacts(t *testing.T) {
	f := field.New()
	e := NewExtractor(agent.DefaultConfig().WithID("extractor-1"))
	f.Emit(signal.NewBuilder(signal.ScrapedContent{URL: "http://empty.onion", Text: "nothing interesting here"}).
		Origin("scraper-1").TTL(180).Build())

	if _, err := e.Process(context.Background(), f); err != agent.ErrNoWork {
		t.Fatalf("expected ErrNoWork, got %v", err)
	}
}
