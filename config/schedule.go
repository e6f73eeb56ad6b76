package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NethermindEth/chaoschain-reality/core"
)

const (
	DefaultDecisionEvery    = 2 * time.Minute
	DefaultEliminationEvery = 10 * time.Minute
)

// SeedAgent is a roster entry for the in-memory chain.
type SeedAgent struct {
	ID      string           `yaml:"id"`
	Name    string           `yaml:"name"`
	IsAlive *bool            `yaml:"alive"`
	Traits  core.TraitVector `yaml:"traits"`
}

// ShowSchedule is one show's cadence. EliminationEvery 0 turns automatic elimination off.
type ShowSchedule struct {
	ID               string         `yaml:"id"`
	DecisionEvery    time.Duration  `yaml:"decisionEvery"`
	EliminationEvery *time.Duration `yaml:"eliminationEvery"`
	Context          string         `yaml:"context"`
	Inactive         bool           `yaml:"inactive"`
	Agents           []SeedAgent    `yaml:"agents"`
}

// EliminationInterval resolves the elimination cadence with its default.
func (s ShowSchedule) EliminationInterval() time.Duration {
	if s.EliminationEvery == nil {
		return DefaultEliminationEvery
	}
	return *s.EliminationEvery
}

// SeedAgents converts the roster, defaulting agents to alive.
func (s ShowSchedule) SeedAgents() []core.Agent {
	out := make([]core.Agent, 0, len(s.Agents))
	for _, a := range s.Agents {
		alive := a.IsAlive == nil || *a.IsAlive
		out = append(out, core.Agent{ID: a.ID, Name: a.Name, IsAlive: alive, Traits: a.Traits.Clamped()})
	}
	return out
}

// Schedule is the YAML schedule file.
type Schedule struct {
	Shows []ShowSchedule `yaml:"shows"`
}

// LoadSchedule reads and validates a schedule file.
func LoadSchedule(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	return ParseSchedule(data)
}

// ParseSchedule decodes a schedule document and applies defaults.
func ParseSchedule(data []byte) (*Schedule, error) {
	var s Schedule
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	seen := make(map[string]bool)
	for i := range s.Shows {
		sh := &s.Shows[i]
		if sh.ID == "" {
			return nil, fmt.Errorf("schedule: show %d has no id", i)
		}
		if seen[sh.ID] {
			return nil, fmt.Errorf("schedule: show %s listed twice", sh.ID)
		}
		seen[sh.ID] = true
		if sh.DecisionEvery == 0 {
			sh.DecisionEvery = DefaultDecisionEvery
		}
		if sh.DecisionEvery < 0 || sh.EliminationInterval() < 0 {
			return nil, fmt.Errorf("schedule: show %s has a negative cadence", sh.ID)
		}
		for _, a := range sh.Agents {
			if a.ID == "" {
				return nil, fmt.Errorf("schedule: show %s has an agent without id", sh.ID)
			}
		}
	}
	return &s, nil
}

// DemoSchedule is used when no schedule file is configured: one show with a small cast.
func DemoSchedule() *Schedule {
	cast := []SeedAgent{
		{ID: "1", Name: "Ava", Traits: core.TraitVector{Popularity: 72, Aggression: 35, Loyalty: 60, Resilience: 55, Charisma: 80, Suspicion: 20, Energy: 75}},
		{ID: "2", Name: "Brock", Traits: core.TraitVector{Popularity: 45, Aggression: 85, Loyalty: 30, Resilience: 70, Charisma: 40, Suspicion: 55, Energy: 90}},
		{ID: "3", Name: "Celine", Traits: core.TraitVector{Popularity: 60, Aggression: 20, Loyalty: 85, Resilience: 65, Charisma: 60, Suspicion: 15, Energy: 60}},
		{ID: "4", Name: "Dario", Traits: core.TraitVector{Popularity: 38, Aggression: 60, Loyalty: 40, Resilience: 45, Charisma: 55, Suspicion: 70, Energy: 50}},
		{ID: "5", Name: "Esme", Traits: core.TraitVector{Popularity: 55, Aggression: 45, Loyalty: 50, Resilience: 80, Charisma: 70, Suspicion: 35, Energy: 65}},
	}
	return &Schedule{Shows: []ShowSchedule{{ID: "1", DecisionEvery: DefaultDecisionEvery, Agents: cast}}}
}
