package workers

import (
	"context"
	"sync"
	"testing"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/signal"
)

// fakeBackend is a deterministic llm.Backend stub shared by the worker
// tests. The mutex matters: the specialist panel calls Generate from
// several goroutines at once.
type fakeBackend struct {
	response string
	err      error

	mu    sync.Mutex
	calls int
}

func (f *fakeBackend) Generate(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeBackend) ModelName() string { return "fake-model" }

func TestRefinerProcess(t *testing.T) {
	f := field.New()
	backend := &fakeBackend{response: "  silk road vendor alpha  "}
	r := NewRefiner(agent.DefaultConfig().WithID("refiner-1"), backend)

	f.Emit(signal.NewBuilder(signal.UserQuery{Query: "tell me about silk road vendor alpha", Priority: 0.8}).
		Origin("cli").TTL(300).Build())

	hashes, err := r.Process(context.Background(), f)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(hashes) != 1 {
		t.Fatalf("expected 1 emitted signal, got %d", len(hashes))
	}

	sig, ok := f.Get(hashes[0])
	if !ok {
		t.Fatalf("expected emitted signal on field")
	}
	rq, ok := sig.Payload.(signal.RefinedQuery)
	if !ok {
		t.Fatalf("expected RefinedQuery payload, got %T", sig.Payload)
	}
	if rq.Refined != "silk road vendor alpha" {
		t.Fatalf("expected trimmed refined text, got %q", rq.Refined)
	}
	if backend.calls != 1 {
		t.Fatalf("expected exactly 1 backend call, got %d", backend.calls)
	}

	if _, err := r.Process(context.Background(), f); err != agent.ErrNoWork {
		t.Fatalf("expected ErrNoWork on second call, got %v", err)
	}
}

func TestRefinerHeartbeat(t *testing.T) {
	f := field.New()
	r := NewRefiner(agent.DefaultConfig().WithID("refiner-1"), &fakeBackend{response: "x"})
	r.Heartbeat(f)

	hbs := f.SenseWhere(matchesPayload[signal.Heartbeat])
	if len(hbs) != 1 {
		t.Fatalf("expected 1 heartbeat signal, got %d", len(hbs))
	}
	hb := hbs[0].Payload.(signal.Heartbeat)
	if hb.Capacity != 1.0 {
		t.Fatalf("expected capacity 1.0, got %v", hb.Capacity)
	}
}
