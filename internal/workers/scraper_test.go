package workers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/signal"
)

func TestScraperProcess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Vendor Page</title></head><body>Some content here.</body></html>`))
	}))
	defer srv.Close()

	f := field.New()
	s := NewScraper(agent.DefaultConfig().WithID("scraper-1"), srv.Client())

	f.Emit(signal.NewBuilder(signal.FilteredResult{URL: srv.URL, Title: "Vendor", Relevance: 1.0, Reason: "top"}).
		Origin("filter-1").TTL(120).Build())

	emitted, err := s.Process(context.Background(), f)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(emitted) != 1 {
		t.Fatalf("expected 1 scraped signal, got %d", len(emitted))
	}
	sig, _ := f.Get(emitted[0])
	sc := sig.Payload.(signal.ScrapedContent)
	if sc.Title != "Vendor Page" {
		t.Fatalf("unexpected title: %q", sc.Title)
	}

	if _, err := s.Process(context.Background(), f); err != agent.ErrNoWork {
		t.Fatalf("expected ErrNoWork on re-process, got %v", err)
	}
}

func TestScraperMarksURLScrapedEvenOnEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := field.New()
	s := NewScraper(agent.DefaultConfig().WithID("scraper-1"), srv.Client())
	f.Emit(signal.NewBuilder(signal.FilteredResult{URL: srv.URL, Title: "Dead", Relevance: 0.5, Reason: "x"}).
		Origin("filter-1").TTL(120).Build())

	if _, err := s.Process(context.Background(), f); err != agent.ErrNoWork {
		t.Fatalf("expected ErrNoWork for empty page, got %v", err)
	}
	if _, ok := s.scraped[srv.URL]; !ok {
		t.Fatalf("expected URL to be marked scraped despite empty result")
	}
}
