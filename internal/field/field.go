// Package field implements the shared bulletin the swarm coordinates
// through: a content-addressed map of live signals plus a bounded history of
// expired ones. The field has exactly one mutator at a time — the swarm
// driver's tick loop — so, per the coordination substrate's design notes, it
// carries no internal locking of its own.
package field

import (
	"time"

	"github.com/duskline/robin-smesh/internal/signal"
)

const defaultMaxHistory = 10000

// TickResult reports what a single tick did to the live set.
type TickResult struct {
	ExpiredCount int
	ActiveCount  int
}

// Stats is a point-in-time summary of the field, used for CLI/dashboard
// reporting and the driver's termination diagnostics.
type Stats struct {
	ActiveSignals       int
	TotalIntensity      float64
	AverageIntensity    float64
	TotalReinforcements int
	HistorySize         int
}

// Field is the bulletin board: live signals keyed by origin hash, a bounded
// FIFO of expired signals, and the field's own monotonic clock.
type Field struct {
	signals     map[string]*signal.Signal
	history     []*signal.Signal
	maxHistory  int
	currentTime time.Time
}

// New creates an empty field anchored to the current wall-clock time.
func New() *Field {
	return &Field{
		signals:     make(map[string]*signal.Signal),
		maxHistory:  defaultMaxHistory,
		currentTime: time.Now(),
	}
}

// Emit inserts a new signal, or — if a live signal already shares its origin
// hash — reinforces the existing one instead. Never returns an error: this
// is pure state mutation, exactly as the coordination contract requires.
func (f *Field) Emit(s *signal.Signal) string {
	if existing, ok := f.signals[s.OriginHash]; ok {
		existing.Reinforce(s.OriginAgentID)
		return existing.OriginHash
	}
	f.signals[s.OriginHash] = s
	return s.OriginHash
}

// Tick advances the field's clock by dt seconds, refreshes every live
// signal's cached intensity, and retires anything now expired into history.
func (f *Field) Tick(dtSeconds float64) TickResult {
	f.currentTime = f.currentTime.Add(time.Duration(dtSeconds * float64(time.Second)))

	expired := 0
	for hash, s := range f.signals {
		s.CurrentIntensity = s.ComputeIntensity(f.currentTime)
		if s.IsExpired(f.currentTime) {
			delete(f.signals, hash)
			f.pushHistory(s)
			expired++
		}
	}

	return TickResult{ExpiredCount: expired, ActiveCount: len(f.signals)}
}

func (f *Field) pushHistory(s *signal.Signal) {
	f.history = append(f.history, s)
	if len(f.history) > f.maxHistory {
		f.history = f.history[len(f.history)-f.maxHistory:]
	}
}

// Sense returns every live signal whose effective intensity, at the field's
// current time, is at least minIntensity.
func (f *Field) Sense(minIntensity float64) []*signal.Signal {
	return f.SenseWhere(func(s *signal.Signal) bool {
		return s.EffectiveIntensity(f.currentTime) >= minIntensity
	})
}

// SenseWhere returns every live signal satisfying pred, regardless of
// intensity — the predicate is expected to apply its own threshold when it
// needs one.
func (f *Field) SenseWhere(pred func(*signal.Signal) bool) []*signal.Signal {
	var out []*signal.Signal
	for _, s := range f.signals {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// Get looks up a live signal by origin hash.
func (f *Field) Get(hash string) (*signal.Signal, bool) {
	s, ok := f.signals[hash]
	return s, ok
}

// Reinforce reinforces a live signal by hash, if it exists. Returns false if
// no live signal has that hash (e.g. it already expired).
func (f *Field) Reinforce(hash, agentID string) bool {
	s, ok := f.signals[hash]
	if !ok {
		return false
	}
	s.Reinforce(agentID)
	return true
}

// ActiveCount is the number of live signals.
func (f *Field) ActiveCount() int {
	return len(f.signals)
}

// CurrentTime returns the field's own clock, advanced only by Tick.
func (f *Field) CurrentTime() time.Time {
	return f.currentTime
}

// Stats summarizes the live set for reporting.
func (f *Field) Stats() Stats {
	var totalIntensity float64
	var totalReinforcements int
	for _, s := range f.signals {
		totalIntensity += s.EffectiveIntensity(f.currentTime)
		totalReinforcements += s.ReinforcementCount
	}
	avg := 0.0
	if len(f.signals) > 0 {
		avg = totalIntensity / float64(len(f.signals))
	}
	return Stats{
		ActiveSignals:       len(f.signals),
		TotalIntensity:      totalIntensity,
		AverageIntensity:    avg,
		TotalReinforcements: totalReinforcements,
		HistorySize:         len(f.history),
	}
}

// Clear empties the field, used by tests that need a fresh bulletin.
func (f *Field) Clear() {
	f.signals = make(map[string]*signal.Signal)
	f.history = nil
}
