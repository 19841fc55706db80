package workers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/signal"
)

func TestPasteMonitorSearchSite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/paste/1") {
			w.Write([]byte(`<html><head><title>Leaked creds</title></head><body>` + strings.Repeat("leaked password dump data ", 10) + `</body></html>`))
			return
		}
		w.Write([]byte(`<html><body><a href="/paste/1">result</a></body></html>`))
	}))
	defer srv.Close()

	p := NewPasteMonitor(agent.DefaultConfig().WithID("paste-1"), DefaultPasteMonitorConfig())

	site := pasteSite{name: "test", searchURL: srv.URL + "/search?q=%s"}
	hits, err := p.searchSite(context.Background(), site, "vendor alpha")
	if err != nil {
		t.Fatalf("searchSite: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Title != "Leaked creds" {
		t.Fatalf("unexpected title: %q", hits[0].Title)
	}
}

func TestPasteMonitorSense(t *testing.T) {
	f := field.New()
	p := NewPasteMonitor(agent.DefaultConfig().WithID("paste-1"), DefaultPasteMonitorConfig())

	f.Emit(signal.NewBuilder(signal.RefinedQuery{Original: "q", Refined: "vendor alpha", Confidence: 0.9}).
		Origin("refiner-1").TTL(120).Build())

	if len(p.Sense(f)) != 1 {
		t.Fatalf("expected 1 sensed signal")
	}
	p.done[p.Sense(f)[0]] = struct{}{}
	if len(p.Sense(f)) != 0 {
		t.Fatalf("expected 0 sensed signals after marking done")
	}
}
