package socket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"manjaword/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

// NewUpgrader builds the upgrader for editor windows. Origins are not
// checked here; the session token is.
func NewUpgrader(readBufferSize, writeBufferSize int) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  readBufferSize,
		WriteBufferSize: writeBufferSize,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
}

// ServeWs turns an authenticated request into an editor window connection.
func ServeWs(hub *Hub, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	// The HTTP connection is upgraded to a persistent WebSocket connection.
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}

	client := &Client{
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, 16),
	}
	// From here on the window can be asked to show file dialogs.
	client.Hub.Register <- client

	// One goroutine reads answers from the window, the other writes requests
	// and keepalive pings to it. Only writePump writes to Conn.
	go client.writePump()
	go client.readPump()
}

// readPump waits for dialog answers until the window goes away.
func (c *Client) readPump() {
	defer func() {
		// Unregistering resolves any dialog still waiting on this window when
		// it was the last one.
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	// Each pong pushes the deadline out; a window that stops answering pings
	// is dropped once pongWait passes.
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, rawMessage, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("error: %v", err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(rawMessage, &msg); err != nil {
			logger.Sugar.Errorf("Error unmarshalling message: %v", err)
			continue
		}

		switch msg.Type {
		case PickResultType:
			// A missing or malformed payload counts as a dismissed dialog.
			var result PickResult
			if len(msg.Payload) > 0 {
				if err := json.Unmarshal(msg.Payload, &result); err != nil {
					logger.Sugar.Errorf("Malformed pick result for %s: %v", msg.ID, err)
				}
			}
			c.Hub.Resolve(msg.ID, result.Path)
		default:
			logger.Sugar.Debugf("Ignoring message of type %q", msg.Type)
		}
	}
}

// writePump forwards hub messages to the window and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed Send, so the window was unregistered.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
