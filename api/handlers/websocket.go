package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// HandleWebSocket handles GET /ws?showId=n. Without showId the client receives every show.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	if h.deps.WS == nil {
		unavailable(c, "Live feed", "no websocket manager")
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}
	h.deps.WS.Register(conn, c.Query("showId"))

	// the feed is one-way; reading only detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.deps.WS.Unregister(conn)
}
