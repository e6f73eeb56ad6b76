package communication

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/NethermindEth/chaoschain-reality/core"
)

const writeWait = 5 * time.Second

type wsClient struct {
	conn   *websocket.Conn
	showID string // empty receives every show
}

// WebSocketManager fans events out to connected browser clients.
type WebSocketManager struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan core.Event
	register   chan *wsClient
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	mu         sync.RWMutex
	onCount    func(int)
}

// NewWebSocketManager starts the manager loop. onCount, if set, is called with
// the client count whenever it changes.
func NewWebSocketManager(onCount func(int)) *WebSocketManager {
	m := &WebSocketManager{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan core.Event, 64),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		onCount:    onCount,
	}
	go m.run()
	return m
}

func (m *WebSocketManager) run() {
	for {
		select {
		case c := <-m.register:
			m.mu.Lock()
			m.clients[c.conn] = c
			n := len(m.clients)
			m.mu.Unlock()
			m.countChanged(n)

		case conn := <-m.unregister:
			m.drop(conn)

		case event := <-m.broadcast:
			m.mu.RLock()
			var failed []*websocket.Conn
			for conn, c := range m.clients {
				if c.showID != "" && c.showID != event.ShowID {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("WebSocket error: %v", err)
					failed = append(failed, conn)
				}
			}
			m.mu.RUnlock()
			for _, conn := range failed {
				m.drop(conn)
			}

		case <-m.done:
			m.mu.Lock()
			for conn := range m.clients {
				conn.Close()
			}
			m.clients = make(map[*websocket.Conn]*wsClient)
			m.mu.Unlock()
			return
		}
	}
}

func (m *WebSocketManager) drop(conn *websocket.Conn) {
	m.mu.Lock()
	_, ok := m.clients[conn]
	if ok {
		delete(m.clients, conn)
		conn.Close()
	}
	n := len(m.clients)
	m.mu.Unlock()
	if ok {
		m.countChanged(n)
	}
}

func (m *WebSocketManager) countChanged(n int) {
	if m.onCount != nil {
		m.onCount(n)
	}
}

// Register adds a connection. showID limits it to one show's events.
func (m *WebSocketManager) Register(conn *websocket.Conn, showID string) {
	select {
	case m.register <- &wsClient{conn: conn, showID: showID}:
	case <-m.done:
		conn.Close()
	}
}

func (m *WebSocketManager) Unregister(conn *websocket.Conn) {
	select {
	case m.unregister <- conn:
	case <-m.done:
	}
}

// Broadcast queues an event. It drops the event if the queue is full.
func (m *WebSocketManager) Broadcast(event core.Event) {
	select {
	case m.broadcast <- event:
	case <-m.done:
	default:
		log.Printf("WebSocket broadcast queue full, dropping %s event for show %s", event.Type, event.ShowID)
	}
}

// ClientCount returns the number of connected clients.
func (m *WebSocketManager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Close disconnects every client and stops the loop.
func (m *WebSocketManager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}
