package signal

import (
	"math"
	"testing"
	"time"
)

func TestSignalCreation(t *testing.T) {
	s := NewBuilder(UserQuery{Query: "test", Priority: 0.5}).Origin("tester").Build()

	if s.OriginHash == "" {
		t.Fatal("expected a non-empty origin hash")
	}
	if len(s.OriginHash) != 16 {
		t.Fatalf("expected a 16-hex-digit origin hash, got %d chars", len(s.OriginHash))
	}
	if s.ReinforcementCount != 0 {
		t.Fatalf("expected reinforcement count 0, got %d", s.ReinforcementCount)
	}
}

func TestExponentialDecay(t *testing.T) {
	s := NewBuilder(UserQuery{Query: "test"}).TTL(300).DecayRate(0.1).Build()
	s.CreatedAt = time.Now().Add(-10 * time.Second)

	got := s.ComputeIntensity(time.Now())
	want := 0.368
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("expected intensity ~%.3f at t=10s, got %.3f", want, got)
	}
}

func TestLinearDecayFloorsAtZero(t *testing.T) {
	s := NewBuilder(UserQuery{Query: "test"}).TTL(10).Decay(Linear).Build()
	s.CreatedAt = time.Now().Add(-20 * time.Second)

	if got := s.ComputeIntensity(time.Now()); got != 0 {
		t.Fatalf("expected 0 intensity past ttl, got %f", got)
	}
}

func TestReinforcementDiminishingReturns(t *testing.T) {
	s := NewBuilder(UserQuery{Query: "test"}).Confidence(0.5).Build()

	s.Reinforce("agent-a")
	if s.ReinforcementCount != 1 {
		t.Fatalf("expected reinforcement count 1, got %d", s.ReinforcementCount)
	}
	if got, want := s.Confidence, 0.5+0.1/(1+0.5); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected confidence %.4f, got %.4f", want, got)
	}

	// Reinforcing again from the same agent is a no-op.
	s.Reinforce("agent-a")
	if s.ReinforcementCount != 1 {
		t.Fatalf("expected duplicate reinforcement to be a no-op, count=%d", s.ReinforcementCount)
	}
}

func TestIsExpiredOnZeroTTL(t *testing.T) {
	s := NewBuilder(UserQuery{Query: "test"}).TTL(0).Build()
	s.CreatedAt = time.Now().Add(-1 * time.Millisecond)

	if !s.IsExpired(time.Now()) {
		t.Fatal("expected a zero-ttl signal to be expired immediately")
	}
}

func TestOriginHashStableForSameLogicalPayload(t *testing.T) {
	a := ComputeOriginHash(RefinedQuery{Original: "x", Refined: "y", Confidence: 0.9}, "refiner-1")
	b := ComputeOriginHash(RefinedQuery{Original: "x", Refined: "y", Confidence: 0.9}, "refiner-1")
	if a != b {
		t.Fatalf("expected stable origin hash for identical payload+origin, got %s vs %s", a, b)
	}

	c := ComputeOriginHash(RefinedQuery{Original: "x", Refined: "z", Confidence: 0.9}, "refiner-1")
	if a == c {
		t.Fatal("expected different payloads to produce different origin hashes")
	}
}
