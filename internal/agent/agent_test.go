package agent

import "testing"

func TestDefaultConfigHasEightCharID(t *testing.T) {
	c := DefaultConfig()
	if len(c.ID) != 8 {
		t.Fatalf("expected 8-character id, got %q", c.ID)
	}
	if c.SensingThreshold != 0.1 {
		t.Fatalf("expected default sensing threshold 0.1, got %f", c.SensingThreshold)
	}
	if c.MaxConcurrent != 3 {
		t.Fatalf("expected default max concurrency 3, got %d", c.MaxConcurrent)
	}
}

func TestWithIDOverridesGenerated(t *testing.T) {
	c := DefaultConfig().WithID("crawler-1")
	if c.ID != "crawler-1" {
		t.Fatalf("expected overridden id, got %q", c.ID)
	}
}

func TestErrorKindRoundTrips(t *testing.T) {
	err := NotReady("tor not reachable")
	kind, ok := KindOf(err)
	if !ok || kind != KindNotReady {
		t.Fatalf("expected KindNotReady, got %v ok=%v", kind, ok)
	}
	if err.Error() != "not ready: tor not reachable" {
		t.Fatalf("unexpected error message: %s", err.Error())
	}
}

func TestErrNoWorkIsNoWorkKind(t *testing.T) {
	kind, ok := KindOf(ErrNoWork)
	if !ok || kind != KindNoWork {
		t.Fatalf("expected KindNoWork, got %v ok=%v", kind, ok)
	}
}
