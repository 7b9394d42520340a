// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
)

// WebSocketClient represents a connected trend feed client
type WebSocketClient struct {
	conn              *websocket.Conn
	send              chan []byte
	natsConn          *nats.Conn
	natsSubscriptions []*nats.Subscription
	closeOnce         sync.Once
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 1024,
	}
}

// WebSocketUpgrader is used to upgrade HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TrendFeedHandler handles WebSocket connections that stream trend lifecycle
// events. Every event published under the topic is relayed to the client
// wrapped in an envelope carrying the originating subject.
func TrendFeedHandler(natsConn *nats.Conn, topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("Failed to upgrade to WebSocket", "error", err)
			return
		}

		client := &WebSocketClient{
			conn:     conn,
			send:     make(chan []byte, 256),
			natsConn: natsConn,
		}

		if err := client.subscribeToTrendEvents(topic); err != nil {
			slog.Error("Failed to subscribe to trend events", "error", err)
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()

		welcomeMsg := map[string]interface{}{
			"type":  "welcome",
			"topic": topic,
			"time":  time.Now(),
		}

		welcomeJSON, _ := json.Marshal(welcomeMsg)
		client.send <- welcomeJSON

		slog.Info("New trend feed connection", "remote", r.RemoteAddr)
	}
}

// subscribeToTrendEvents subscribes to every event subject under the topic.
func (c *WebSocketClient) subscribeToTrendEvents(topic string) error {
	sub, err := c.natsConn.Subscribe(fmt.Sprintf("%s.>", topic), func(msg *nats.Msg) {
		envelope, err := json.Marshal(map[string]interface{}{
			"subject": msg.Subject,
			"event":   json.RawMessage(msg.Data),
		})
		if err != nil {
			return
		}

		select {
		case c.send <- envelope:
		default:
			// Events are dropped for clients that cannot keep up.
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to trend events: %w", err)
	}

	c.natsSubscriptions = append(c.natsSubscriptions, sub)
	return nil
}

// readPump watches the WebSocket connection for pongs and closure. The feed
// is one way, so inbound payloads are discarded.
func (c *WebSocketClient) readPump() {
	config := DefaultWebSocketConfig()

	defer func() {
		c.closeConnection()
	}()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("WebSocket error", "error", err)
			}
			break
		}
	}
}

// writePump pumps events from the send channel to the WebSocket connection
func (c *WebSocketClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued events to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection closes the WebSocket connection and cleans up resources
func (c *WebSocketClient) closeConnection() {
	c.closeOnce.Do(func() {
		for _, sub := range c.natsSubscriptions {
			sub.Unsubscribe()
		}

		c.conn.Close()

		slog.Info("Trend feed connection closed")
	})
}
