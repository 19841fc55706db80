package workers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/signal"
	"github.com/duskline/robin-smesh/internal/tor"
)

func TestCrawlerProcess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="http://abc234567890defghijklmnopqrstu2.onion/page">A Result Title</a></body></html>`))
	}))
	defer srv.Close()

	f := field.New()
	c := NewCrawler(agent.DefaultConfig().WithID("crawler-1"), srv.Client(), 2)
	c.engines = []tor.SearchEngine{{Name: "Test", URLTemplate: srv.URL + "/?q={query}", Active: true, Reliability: 0.9}}

	f.Emit(signal.NewBuilder(signal.RefinedQuery{Original: "q", Refined: "silk road", Confidence: 0.9}).
		Origin("refiner-1").TTL(120).Build())

	emitted, err := c.Process(context.Background(), f)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(emitted) != 1 {
		t.Fatalf("expected 1 raw result, got %d", len(emitted))
	}

	sig, _ := f.Get(emitted[0])
	rr, ok := sig.Payload.(signal.RawResult)
	if !ok {
		t.Fatalf("expected RawResult payload, got %T", sig.Payload)
	}
	if rr.Title != "A Result Title" {
		t.Fatalf("unexpected title: %q", rr.Title)
	}

	if _, err := c.Process(context.Background(), f); err != agent.ErrNoWork {
		t.Fatalf("expected ErrNoWork on re-process, got %v", err)
	}
}

func TestCrawlerHeartbeatDegradesAfterThree(t *testing.T) {
	f := field.New()
	c := NewCrawler(agent.DefaultConfig().WithID("crawler-1"), http.DefaultClient, 2)
	c.processed = 3
	c.Heartbeat(f)

	hbs := f.SenseWhere(matchesPayload[signal.Heartbeat])
	hb := hbs[0].Payload.(signal.Heartbeat)
	if hb.Capacity != 0.5 {
		t.Fatalf("expected degraded capacity 0.5, got %v", hb.Capacity)
	}
}
