package core

import (
	"fmt"
	"strings"
)

const (
	MinTrait = 0
	MaxTrait = 100
)

// Trait names one of the seven agent attributes.
type Trait string

const (
	Popularity Trait = "popularity"
	Aggression Trait = "aggression"
	Loyalty    Trait = "loyalty"
	Resilience Trait = "resilience"
	Charisma   Trait = "charisma"
	Suspicion  Trait = "suspicion"
	Energy     Trait = "energy"
)

// AllTraits lists the traits in their canonical order (the order the contract stores them in).
var AllTraits = []Trait{Popularity, Aggression, Loyalty, Resilience, Charisma, Suspicion, Energy}

// TraitVector is an agent's personality state. Every field stays within [0, 100].
type TraitVector struct {
	Popularity int `json:"popularity"`
	Aggression int `json:"aggression"`
	Loyalty    int `json:"loyalty"`
	Resilience int `json:"resilience"`
	Charisma   int `json:"charisma"`
	Suspicion  int `json:"suspicion"`
	Energy     int `json:"energy"`
}

// Clamp saturates a trait value into [0, 100].
func Clamp(value int) int {
	if value < MinTrait {
		return MinTrait
	}
	if value > MaxTrait {
		return MaxTrait
	}
	return value
}

// Get returns the value of a single trait.
func (tv TraitVector) Get(t Trait) int {
	switch t {
	case Popularity:
		return tv.Popularity
	case Aggression:
		return tv.Aggression
	case Loyalty:
		return tv.Loyalty
	case Resilience:
		return tv.Resilience
	case Charisma:
		return tv.Charisma
	case Suspicion:
		return tv.Suspicion
	case Energy:
		return tv.Energy
	}
	return 0
}

func (tv *TraitVector) set(t Trait, value int) {
	switch t {
	case Popularity:
		tv.Popularity = value
	case Aggression:
		tv.Aggression = value
	case Loyalty:
		tv.Loyalty = value
	case Resilience:
		tv.Resilience = value
	case Charisma:
		tv.Charisma = value
	case Suspicion:
		tv.Suspicion = value
	case Energy:
		tv.Energy = value
	}
}

// Clamped returns a copy with every field saturated into range.
func (tv TraitVector) Clamped() TraitVector {
	out := tv
	for _, t := range AllTraits {
		out.set(t, Clamp(tv.Get(t)))
	}
	return out
}

// Validate reports an error if any field is out of range.
func (tv TraitVector) Validate() error {
	for _, t := range AllTraits {
		if v := tv.Get(t); v < MinTrait || v > MaxTrait {
			return fmt.Errorf("trait %s out of range: %d", t, v)
		}
	}
	return nil
}

// Values returns the traits in canonical order.
func (tv TraitVector) Values() [7]int {
	var out [7]int
	for i, t := range AllTraits {
		out[i] = tv.Get(t)
	}
	return out
}

// TraitVectorFromValues builds a vector from canonical-order values, clamping each.
func TraitVectorFromValues(values [7]int) TraitVector {
	var tv TraitVector
	for i, t := range AllTraits {
		tv.set(t, Clamp(values[i]))
	}
	return tv
}

// TraitDelta is a sparse set of signed changes keyed by trait.
type TraitDelta map[Trait]int

// Merge returns a new delta holding the sum of d and other.
func (d TraitDelta) Merge(other TraitDelta) TraitDelta {
	out := make(TraitDelta, len(d)+len(other))
	for t, v := range d {
		out[t] += v
	}
	for t, v := range other {
		out[t] += v
	}
	return out
}

// String renders the delta in canonical trait order, e.g. "popularity +5, energy -10".
func (d TraitDelta) String() string {
	var parts []string
	for _, t := range AllTraits {
		v, ok := d[t]
		if !ok || v == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %+d", t, v))
	}
	return strings.Join(parts, ", ")
}

// Apply returns clamp(old + delta) for every trait. The receiver is not modified.
func (tv TraitVector) Apply(delta TraitDelta) TraitVector {
	out := tv
	for _, t := range AllTraits {
		if v, ok := delta[t]; ok {
			out.set(t, Clamp(tv.Get(t)+v))
		}
	}
	return out
}

// Diff returns the effective per-trait change from tv to next, omitting unchanged traits.
func (tv TraitVector) Diff(next TraitVector) TraitDelta {
	out := TraitDelta{}
	for _, t := range AllTraits {
		if d := next.Get(t) - tv.Get(t); d != 0 {
			out[t] = d
		}
	}
	return out
}

// RiskScore is (suspicion + aggression) - (popularity + charisma + resilience).
// Higher means more elimination-prone.
func RiskScore(tv TraitVector) int {
	return (tv.Suspicion + tv.Aggression) - (tv.Popularity + tv.Charisma + tv.Resilience)
}
