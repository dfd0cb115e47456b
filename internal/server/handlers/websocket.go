// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// WebSocketClient represents a connected WebSocket client
type WebSocketClient struct {
	conn              *websocket.Conn
	send              chan []byte
	geo               string
	subject           string
	natsConn          *nats.Conn
	natsSubscriptions []*nats.Subscription
	log               *logrus.Logger
	done              chan struct{}
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
		MaxMessageSize: 1024 * 1024, // 1MB
	}
}

// WebSocketUpgrader is used to upgrade HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// TrendingWebSocketHandler streams trending-search events to WebSocket
// clients. Clients pass an optional geo query parameter to follow a
// single region; without one they receive events for every region.
func TrendingWebSocketHandler(natsConn *nats.Conn, captures CaptureHistory, eventsTopic string, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		geo := strings.ToUpper(r.URL.Query().Get("geo"))

		subject := fmt.Sprintf("%s.trending.*", eventsTopic)
		if geo != "" {
			subject = fmt.Sprintf("%s.trending.%s", eventsTopic, geo)
		}

		// Upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Errorf("Failed to upgrade to WebSocket: %v", err)
			return
		}

		// Create new client
		client := &WebSocketClient{
			conn:     conn,
			send:     make(chan []byte, 256),
			geo:      geo,
			subject:  subject,
			natsConn: natsConn,
			log:      log,
			done:     make(chan struct{}),
		}

		// Subscribe before starting the pumps so the subscription list
		// is fixed by the time either pump can trigger cleanup
		if err := client.subscribeToTrending(); err != nil {
			log.Errorf("Failed to subscribe to trending events: %v", err)
			client.closeConnection()
			return
		}

		// Start client
		go client.writePump()
		go client.readPump()

		// Send welcome message
		welcomeMsg := map[string]interface{}{
			"type":    "welcome",
			"geo":     geo,
			"subject": subject,
			"time":    time.Now(),
		}

		welcomeJSON, _ := json.Marshal(welcomeMsg)
		client.enqueue(welcomeJSON)

		// Log connection
		log.Infof("New trending WebSocket connection for geo %q", geo)

		// Send recent captures
		client.sendRecentCaptures(r, captures)
	}
}

// readPump drains the WebSocket connection. The trending stream is
// one-way, so client payloads are discarded; the read loop exists to
// process pongs and detect disconnects.
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
				c.log.Errorf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps queued events to the WebSocket connection
func (c *WebSocketClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
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

// subscribeToTrending subscribes to the trending NATS subject
func (c *WebSocketClient) subscribeToTrending() error {
	sub, err := c.natsConn.Subscribe(c.subject, func(msg *nats.Msg) {
		c.enqueue(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.subject, err)
	}
	c.natsSubscriptions = append(c.natsSubscriptions, sub)

	return nil
}

// enqueue hands a payload to the write pump. It never blocks past the
// client's lifetime, so NATS callbacks cannot leak on slow consumers.
func (c *WebSocketClient) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	case <-c.done:
	}
}

// sendRecentCaptures sends the latest stored captures to the client so
// it has history before the first live event arrives.
func (c *WebSocketClient) sendRecentCaptures(r *http.Request, captures CaptureHistory) {
	recent, err := captures.RecentCaptures(r.Context(), c.geo, 5)
	if err != nil {
		c.log.Errorf("Failed to load recent captures: %v", err)
		return
	}

	historyMsg := map[string]interface{}{
		"type":     "history",
		"captures": recent,
	}

	historyJSON, _ := json.Marshal(historyMsg)
	c.enqueue(historyJSON)
}

// closeConnection closes the WebSocket connection and cleans up
// resources. Both pumps call it on exit, so it must be idempotent.
func (c *WebSocketClient) closeConnection() {
	c.closeOnce.Do(func() {
		// Unsubscribe from all NATS topics
		for _, sub := range c.natsSubscriptions {
			sub.Unsubscribe()
		}

		close(c.done)

		// Close connection
		c.conn.Close()

		// Log disconnection
		c.log.Infof("Trending WebSocket connection closed for geo %q", c.geo)
	})
}
