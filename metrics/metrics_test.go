package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveCycle("action", "", 20*time.Millisecond)
	m.ObserveCycle("elimination", "NO_ELIGIBLE_AGENTS", time.Millisecond)
	m.ObserveAction("argue", "first_wins")
	m.ObserveElimination()
	m.SetWebSocketClients(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		`showrunner_cycles_total{kind="action",result="success"} 1`,
		`showrunner_cycle_failures_total{code="NO_ELIGIBLE_AGENTS"} 1`,
		`showrunner_actions_applied_total{action="argue",branch="first_wins"} 1`,
		`showrunner_eliminations_total 1`,
		`showrunner_websocket_clients 2`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCycle("action", "TIMEOUT", time.Second)
	m.ObserveAction("gossip", "")
	m.ObserveElimination()
	m.SetWebSocketClients(1)
}
