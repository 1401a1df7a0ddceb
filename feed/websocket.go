package feed

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const writeWait = 10 * time.Second

// Stream upgrades the request and writes every event of topic as a JSON text
// frame until the client goes away
func (h *Hub) Stream(c *gin.Context, topic string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Str("topic", topic).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.Subscribe(topic)
	defer sub.Cancel()

	// reader loop only exists to notice the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(evt); err != nil {
				logger.Debug().Err(err).Str("topic", topic).Msg("WebSocket write failed")
				return
			}
		}
	}
}
