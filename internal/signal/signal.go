// Package signal implements the content-addressed, time-decaying message
// that coordinates the OSINT swarm: a Signal is built once, emitted onto the
// Field, and from then on only decays or is reinforced — it is never mutated
// by anything other than those two operations.
package signal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// DecayFunction selects how a Signal's intensity falls off with age.
type DecayFunction int

const (
	Exponential DecayFunction = iota
	Linear
	Step
)

// Signal is an immutable-from-construction message with mutable decay state.
// The origin_hash is the content-address key: the Field uses it to decide
// whether an emission is new or a reinforcement of something already live.
type Signal struct {
	ID                 string
	OriginHash         string
	Payload            Payload
	Intensity          float64
	CurrentIntensity   float64
	TTL                float64
	DecayRate          float64
	DecayFunction      DecayFunction
	Confidence         float64
	OriginAgentID      string
	CreatedAt          time.Time
	ReinforcementCount int
	ReinforcedBy       map[string]struct{}
}

// ComputeIntensity returns the decayed intensity at the given time, per the
// selected decay function. A negative age (clock skew) returns the original
// intensity unchanged.
func (s *Signal) ComputeIntensity(now time.Time) float64 {
	age := now.Sub(s.CreatedAt).Seconds()
	if age < 0 {
		return s.Intensity
	}
	if age >= s.TTL {
		return 0
	}
	switch s.DecayFunction {
	case Linear:
		v := s.Intensity * (1 - age/s.TTL)
		if v < 0 {
			return 0
		}
		return v
	case Step:
		return s.Intensity
	default: // Exponential
		return s.Intensity * math.Exp(-s.DecayRate*age)
	}
}

// EffectiveIntensity is what sensors compare against their threshold: raw
// decayed intensity scaled by confidence and a reinforcement bonus capped
// at +50%, then clamped to 1.
func (s *Signal) EffectiveIntensity(now time.Time) float64 {
	reinforcementBonus := 1 + math.Min(0.5, 0.1*float64(s.ReinforcementCount))
	eff := s.ComputeIntensity(now) * s.Confidence * reinforcementBonus
	if eff > 1 {
		return 1
	}
	return eff
}

// IsExpired reports whether the signal should be removed from the live set:
// its age has reached the TTL, or its raw intensity has decayed below the
// floor below which reinforcement can no longer meaningfully revive it.
func (s *Signal) IsExpired(now time.Time) bool {
	age := now.Sub(s.CreatedAt).Seconds()
	return age >= s.TTL || s.ComputeIntensity(now) < 0.01
}

// Reinforce records a repeated emission of this signal's content by agent r.
// A second reinforcement by the same agent is a no-op; confidence increases
// with diminishing returns so that many reinforcers converge rather than
// run away past 1.
func (s *Signal) Reinforce(r string) {
	if _, ok := s.ReinforcedBy[r]; ok {
		return
	}
	s.ReinforcedBy[r] = struct{}{}
	s.ReinforcementCount++
	s.Confidence += 0.1 / (1 + 0.5*float64(s.ReinforcementCount))
	if s.Confidence > 1 {
		s.Confidence = 1
	}
}

// ComputeOriginHash derives the content-address for (payload, originAgentID):
// SHA-256 of the payload's canonical JSON concatenated with the origin agent
// id, truncated to the first 16 hex digits. Go's encoding/json serializes a
// struct's fields in fixed declaration order, which is the canonical form
// this hash depends on being stable across calls for the same logical value.
func ComputeOriginHash(p Payload, originAgentID string) string {
	body, err := json.Marshal(p)
	if err != nil {
		// Payload variants are plain structs; Marshal only fails on types
		// json cannot represent, which none of ours are.
		panic("signal: payload failed to marshal: " + err.Error())
	}
	h := sha256.New()
	h.Write(body)
	h.Write([]byte(originAgentID))
	sum := hex.EncodeToString(h.Sum(nil))
	return sum[:16]
}

// Builder constructs a Signal fluently.
type Builder struct {
	payload       Payload
	origin        string
	intensity     float64
	ttl           float64
	decayRate     float64
	decayFunction DecayFunction
	confidence    float64
}

// NewBuilder starts a Signal builder for the given payload with sane
// defaults: full intensity, the default decay rate, exponential decay, and
// full confidence.
func NewBuilder(p Payload) *Builder {
	return &Builder{
		payload:       p,
		intensity:     1.0,
		ttl:           60.0,
		decayRate:     0.1,
		decayFunction: Exponential,
		confidence:    1.0,
	}
}

func (b *Builder) Origin(agentID string) *Builder {
	b.origin = agentID
	return b
}

func (b *Builder) Confidence(c float64) *Builder {
	b.confidence = c
	return b
}

func (b *Builder) TTL(seconds float64) *Builder {
	b.ttl = seconds
	return b
}

func (b *Builder) Intensity(i float64) *Builder {
	b.intensity = i
	return b
}

func (b *Builder) DecayRate(r float64) *Builder {
	b.decayRate = r
	return b
}

func (b *Builder) Decay(fn DecayFunction) *Builder {
	b.decayFunction = fn
	return b
}

// Build finalizes the Signal, stamping its id, created_at, and origin_hash.
func (b *Builder) Build() *Signal {
	return &Signal{
		ID:                 uuid.NewString(),
		OriginHash:         ComputeOriginHash(b.payload, b.origin),
		Payload:            b.payload,
		Intensity:          b.intensity,
		CurrentIntensity:   b.intensity,
		TTL:                b.ttl,
		DecayRate:          b.decayRate,
		DecayFunction:      b.decayFunction,
		Confidence:         b.confidence,
		OriginAgentID:      b.origin,
		CreatedAt:          time.Now(),
		ReinforcementCount: 0,
		ReinforcedBy:       make(map[string]struct{}),
	}
}
