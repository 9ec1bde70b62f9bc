package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096

	sendBufferSize = 256
)

// client is one relay participant: the WebSocket connection, the
// server-assigned identity and the buffered outbound queue drained by
// writePump.
type client struct {
	id   string
	hub  *hub
	conn *websocket.Conn
	send chan []byte
}

// readPump - pumps inbound frames from the connection into the hub. One
// goroutine per connection; the hub serializes all handling.
func (that *client) readPump() {
	defer func() {
		that.hub.remove(that)
		that.conn.Close()
	}()

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			return
		}

		if !that.hub.receive(that, data) {
			return
		}
	}
}

// writePump - pumps messages from the send channel to the connection and
// keeps it alive with periodic pings.
func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		that.conn.Close()
	}()

	for {
		select {
		case data, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				// The hub closed the channel on unregister.
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-that.hub.done:
			return
		}
	}
}
