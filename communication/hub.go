package communication

import (
	"log"

	"github.com/NethermindEth/chaoschain-reality/core"
)

// Hub sends engine events to websocket clients and, when configured, to NATS.
type Hub struct {
	ws        *WebSocketManager
	messenger *Messenger
}

// NewHub builds a hub. Either side may be nil.
func NewHub(ws *WebSocketManager, messenger *Messenger) *Hub {
	return &Hub{ws: ws, messenger: messenger}
}

func (h *Hub) Publish(evt core.Event) {
	if h.ws != nil {
		h.ws.Broadcast(evt)
	}
	if h.messenger != nil {
		if err := h.messenger.PublishEvent(evt); err != nil {
			log.Printf("Failed to publish %s for show %s to NATS: %v", evt.Type, evt.ShowID, err)
		}
	}
}
