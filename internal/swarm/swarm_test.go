package swarm

import (
	"context"
	"testing"
	"time"

	"github.com/duskline/robin-smesh/internal/signal"
)

type stubBackend struct{}

func (stubBackend) Generate(ctx context.Context, system, user string) (string, error) {
	return "refined term", nil
}
func (stubBackend) ModelName() string { return "stub" }

func TestNewBuildsFullRoster(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TorConfig.SocksAddr = "socks5h://127.0.0.1:1" // unreachable, but client construction doesn't dial
	s, err := New(cfg, stubBackend{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// refiner + 2 crawlers + filter + 3 scrapers + extractor + analyst = 9
	if len(s.roster) != 9 {
		t.Fatalf("expected 9 agents in default roster, got %d", len(s.roster))
	}
}

func TestNewIncludesOptionalWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TorConfig.SocksAddr = "socks5h://127.0.0.1:1"
	cfg.EnableEnrichment = true
	cfg.EnableBlockchain = true
	cfg.EnablePastes = true
	s, err := New(cfg, stubBackend{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(s.roster) != 12 {
		t.Fatalf("expected 12 agents with all optional workers enabled, got %d", len(s.roster))
	}
}

func TestSubmitQueryEmitsUserQuery(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TorConfig.SocksAddr = "socks5h://127.0.0.1:1"
	s, err := New(cfg, stubBackend{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	hash := s.SubmitQuery("investigate vendor alpha", 0.8)
	sig, ok := s.Field().Get(hash)
	if !ok {
		t.Fatalf("expected emitted UserQuery on field")
	}
	uq, ok := sig.Payload.(signal.UserQuery)
	if !ok {
		t.Fatalf("expected UserQuery payload, got %T", sig.Payload)
	}
	if uq.Query != "investigate vendor alpha" {
		t.Fatalf("unexpected query: %q", uq.Query)
	}
}

func TestSubmittedQueryIsRefinedWithinAFewTicks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TorConfig.SocksAddr = "socks5h://127.0.0.1:1"
	cfg.TickInterval = 10 * time.Millisecond
	cfg.MaxRuntime = 100 * time.Millisecond
	s, err := New(cfg, stubBackend{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.SubmitQuery("ransomware payments", 0.8)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// Times out without a Summary — no network is reachable — but the
	// refiner must have turned the query around well before that.
	if _, err := s.Run(ctx); err == nil {
		t.Fatalf("expected timeout error, got nil")
	}

	refined := s.Field().SenseWhere(func(sig *signal.Signal) bool {
		rq, ok := sig.Payload.(signal.RefinedQuery)
		return ok && rq.Original == "ransomware payments"
	})
	if len(refined) != 1 {
		t.Fatalf("expected exactly 1 RefinedQuery for the submitted query, got %d", len(refined))
	}
}

func TestRunTimesOutWithoutSummary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TorConfig.SocksAddr = "socks5h://127.0.0.1:1"
	cfg.MaxRuntime = 50 * time.Millisecond
	cfg.TickInterval = 10 * time.Millisecond
	s, err := New(cfg, stubBackend{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := s.Run(ctx); err == nil {
		t.Fatalf("expected timeout error, got nil")
	}
}
