package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "RPC_URL=http://localhost:8545\nCONTRACT_ADDRESS=0x5FbDB2315678afecb367f032d93F642f64180aa3\nADMIN_PRIVATE_KEY=abc\nCHAIN_TIMEOUT=45s\nCHAIN_ID=31337\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"RPC_URL", "CONTRACT_ADDRESS", "ADMIN_PRIVATE_KEY", "CHAIN_TIMEOUT", "CHAIN_ID"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("DATA_DIR", dir)

	c, err := Load(envPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.UseChain() || c.ChainID != 31337 || c.ChainTimeout != 45*time.Second || c.AITimeout != 5*time.Second {
		t.Fatalf("config = %+v", c)
	}
	if c.DBSQLitePath != dir+"/news.sqlite" || c.APIPort != 3000 {
		t.Fatalf("defaults not applied: %+v", c)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("CHAIN_TIMEOUT", "soon")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseSchedule(t *testing.T) {
	doc := `
shows:
  - id: "1"
    decisionEvery: 30s
    context: keep it spicy
    agents:
      - id: "3"
        name: Alice
        traits: {popularity: 75, aggression: 40, loyalty: 60, resilience: 70, charisma: 80, suspicion: 20, energy: 90}
      - id: "7"
        name: Bob
        alive: false
        traits: {popularity: 150}
  - id: "2"
    eliminationEvery: 0s
`
	s, err := ParseSchedule([]byte(doc))
	if err != nil {
		t.Fatalf("ParseSchedule: %v", err)
	}
	one, two := s.Shows[0], s.Shows[1]
	if one.DecisionEvery != 30*time.Second || one.EliminationInterval() != DefaultEliminationEvery {
		t.Fatalf("show 1 cadence = %v / %v", one.DecisionEvery, one.EliminationInterval())
	}
	if two.DecisionEvery != DefaultDecisionEvery || two.EliminationInterval() != 0 {
		t.Fatalf("show 2 cadence = %v / %v", two.DecisionEvery, two.EliminationInterval())
	}
	agents := one.SeedAgents()
	if agents[0].RiskScore() != -155 || !agents[0].IsAlive {
		t.Fatalf("agent 3 = %+v", agents[0])
	}
	if agents[1].IsAlive || agents[1].Traits.Popularity != 100 {
		t.Fatalf("agent 7 = %+v", agents[1])
	}
}

func TestParseScheduleRejectsDuplicates(t *testing.T) {
	if _, err := ParseSchedule([]byte("shows:\n  - id: a\n  - id: a\n")); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if _, err := ParseSchedule([]byte("shows:\n  - decisionEvery: 1m\n")); err == nil {
		t.Fatalf("expected missing id error")
	}
}

func TestDemoScheduleIsValid(t *testing.T) {
	s := DemoSchedule()
	if len(s.Shows) != 1 || s.Shows[0].EliminationInterval() != DefaultEliminationEvery {
		t.Fatalf("demo schedule = %+v", s)
	}
	for _, a := range s.Shows[0].SeedAgents() {
		if !a.IsAlive {
			t.Fatalf("demo agent %s should start alive", a.ID)
		}
		if err := a.Traits.Validate(); err != nil {
			t.Fatalf("demo agent %s: %v", a.ID, err)
		}
	}
}
