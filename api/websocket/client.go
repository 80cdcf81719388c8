package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hostwatch/hostwatch/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	mu     sync.RWMutex
	topics map[Topic]bool
}

type IncomingMessage struct {
	Type   string   `json:"type"`
	Topics []string `json:"topics,omitempty"`
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, hub.clientBuffer),
		topics: make(map[Topic]bool),
	}
}

// subscribedTo reports whether the client wants the topic. No explicit
// subscriptions means everything.
func (c *Client) subscribedTo(topic Topic) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.topics) == 0 {
		return true
	}
	return c.topics[topic]
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("websocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.handleMessage(&msg)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *IncomingMessage) {
	switch msg.Type {
	case "subscribe":
		c.mu.Lock()
		for _, t := range msg.Topics {
			c.topics[Topic(t)] = true
		}
		c.mu.Unlock()
		c.sendConfirmation("subscribed", msg.Topics)
	case "unsubscribe":
		c.mu.Lock()
		if len(msg.Topics) == 0 {
			c.topics = make(map[Topic]bool)
		} else {
			for _, t := range msg.Topics {
				delete(c.topics, Topic(t))
			}
		}
		c.mu.Unlock()
		c.sendConfirmation("unsubscribed", msg.Topics)
	}
}

func (c *Client) sendConfirmation(action string, topics []string) {
	confirmation := map[string]interface{}{
		"type":      "subscription_update",
		"action":    action,
		"topics":    topics,
		"timestamp": time.Now(),
	}
	data, err := json.Marshal(confirmation)
	if err != nil {
		logger.Errorf("failed to marshal confirmation: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		logger.Warn("client send channel full, dropping confirmation")
	}
}

func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("websocket upgrade failed: %v", err)
			return
		}

		client := NewClient(hub, conn)

		// ?topics=incident,anomaly preselects subscriptions
		if topics := c.QueryArray("topics"); len(topics) > 0 {
			client.mu.Lock()
			for _, t := range topics {
				client.topics[Topic(t)] = true
			}
			client.mu.Unlock()
		}

		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
