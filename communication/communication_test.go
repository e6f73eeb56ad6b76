package communication

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/NethermindEth/chaoschain-reality/core"
)

func TestMessengerRoundTrip(t *testing.T) {
	ns, err := StartEmbeddedServer(-1)
	if err != nil {
		t.Fatalf("StartEmbeddedServer: %v", err)
	}
	defer ns.Shutdown()

	m, err := NewMessenger(ns.ClientURL(), "test")
	if err != nil {
		t.Fatalf("NewMessenger: %v", err)
	}
	defer m.Close()

	got := make(chan core.Event, 4)
	if _, err := m.SubscribeShow("1", func(e core.Event) { got <- e }); err != nil {
		t.Fatalf("SubscribeShow: %v", err)
	}
	all := make(chan core.Event, 4)
	if _, err := m.SubscribeShow("*", func(e core.Event) { all <- e }); err != nil {
		t.Fatalf("SubscribeShow(*): %v", err)
	}
	unscoped := make(chan core.Event, 4)
	if _, err := m.SubscribeShow("", func(e core.Event) { unscoped <- e }); err != nil {
		t.Fatalf("SubscribeShow(\"\"): %v", err)
	}
	if err := m.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	hub := NewHub(nil, m)
	hub.Publish(core.Event{ID: "a", Type: core.EventAgentEliminated, ShowID: "1"})
	hub.Publish(core.Event{ID: "b", Type: core.EventNewsPosted, ShowID: "2"})

	select {
	case e := <-got:
		if e.ID != "a" || e.Type != core.EventAgentEliminated {
			t.Fatalf("event = %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no event for show 1")
	}
	for i := 0; i < 2; i++ {
		select {
		case <-all:
		case <-time.After(2 * time.Second):
			t.Fatalf("wildcard subscriber got %d of 2 events", i)
		}
		select {
		case <-unscoped:
		case <-time.After(2 * time.Second):
			t.Fatalf("unscoped subscriber got %d of 2 events", i)
		}
	}
	select {
	case e := <-got:
		t.Fatalf("show 1 subscriber received %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func dialWS(t *testing.T, m *WebSocketManager, showID string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		m.Register(conn, r.URL.Query().Get("showId"))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?showId=" + showID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketManagerFiltersByShow(t *testing.T) {
	var count int64
	m := NewWebSocketManager(func(n int) { atomic.StoreInt64(&count, int64(n)) })
	defer m.Close()

	one := dialWS(t, m, "1")
	every := dialWS(t, m, "")
	waitFor(t, func() bool { return m.ClientCount() == 2 })
	if atomic.LoadInt64(&count) != 2 {
		t.Fatalf("count callback = %d", atomic.LoadInt64(&count))
	}

	hub := NewHub(m, nil)
	hub.Publish(core.Event{ID: "x", Type: core.EventActionApplied, ShowID: "2"})
	hub.Publish(core.Event{ID: "y", Type: core.EventActionApplied, ShowID: "1"})

	var evt core.Event
	one.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := one.ReadJSON(&evt); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if evt.ID != "y" {
		t.Fatalf("show-1 client received %s first", evt.ID)
	}

	every.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, want := range []string{"x", "y"} {
		if err := every.ReadJSON(&evt); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if evt.ID != want {
			t.Fatalf("unfiltered client got %s, want %s", evt.ID, want)
		}
	}
}

func TestWebSocketManagerCloseTwice(t *testing.T) {
	m := NewWebSocketManager(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Close()
		}()
	}
	wg.Wait()
	m.Close()
	m.Broadcast(core.Event{ID: "late", ShowID: "1"})
}

func TestWebSocketManagerUnregister(t *testing.T) {
	m := NewWebSocketManager(nil)
	defer m.Close()
	dialWS(t, m, "")
	waitFor(t, func() bool { return m.ClientCount() == 1 })

	m.mu.RLock()
	var conn *websocket.Conn
	for c := range m.clients {
		conn = c
	}
	m.mu.RUnlock()
	m.Unregister(conn)
	waitFor(t, func() bool { return m.ClientCount() == 0 })
}
