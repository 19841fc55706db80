package workers

import (
	"context"
	"testing"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/signal"
)

func TestFilterProcessSelectsRankedSubset(t *testing.T) {
	f := field.New()
	ft := NewFilter(agent.DefaultConfig().WithID("filter-1"), &fakeBackend{response: "2, 1"})

	f.Emit(signal.NewBuilder(signal.RefinedQuery{Original: "q", Refined: "silk road", Confidence: 0.9}).
		Origin("refiner-1").TTL(120).Build())
	f.Emit(signal.NewBuilder(signal.RawResult{URL: "http://a.onion", Title: "Alpha", Engine: "Ahmia"}).
		Origin("crawler-1").TTL(90).Build())
	f.Emit(signal.NewBuilder(signal.RawResult{URL: "http://b.onion", Title: "Beta", Engine: "Ahmia"}).
		Origin("crawler-1").TTL(90).Build())

	emitted, err := ft.Process(context.Background(), f)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(emitted) != 2 {
		t.Fatalf("expected 2 filtered results, got %d", len(emitted))
	}

	sig, _ := f.Get(emitted[0])
	fr := sig.Payload.(signal.FilteredResult)
	if fr.Relevance != 1.0 {
		t.Fatalf("expected top rank relevance 1.0, got %v", fr.Relevance)
	}

	if _, err := ft.Process(context.Background(), f); err != agent.ErrNoWork {
		t.Fatalf("expected ErrNoWork on re-process, got %v", err)
	}
}

func TestParseSelectedIndices(t *testing.T) {
	got := parseSelectedIndices("1, 3, 99, 2", 3, 20)
	want := []int{1, 3, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestFilterProcessNoSelection(t *testing.T) {
	f := field.New()
	ft := NewFilter(agent.DefaultConfig().WithID("filter-1"), &fakeBackend{response: "none relevant"})

	f.Emit(signal.NewBuilder(signal.RawResult{URL: "http://a.onion", Title: "Alpha", Engine: "Ahmia"}).
		Origin("crawler-1").TTL(90).Build())

	if _, err := ft.Process(context.Background(), f); err != agent.ErrNoWork {
		t.Fatalf("expected ErrNoWork, got %v", err)
	}
}
