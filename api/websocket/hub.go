package websocket

import (
	"sync"

	"github.com/hostwatch/hostwatch/internal/logger"
	"github.com/hostwatch/hostwatch/pkg/config"
)

const (
	defaultBroadcastBuffer = 256
	defaultClientBuffer    = 256
)

type envelope struct {
	topic Topic
	data  []byte
}

// Hub fans alerting events out to connected dashboard clients. Clients
// with no explicit subscriptions receive every topic.
type Hub struct {
	clients      map[*Client]bool
	broadcast    chan envelope
	register     chan *Client
	unregister   chan *Client
	mu           sync.RWMutex
	clientBuffer int
}

func NewHub(cfg *config.WebSocketConfig) *Hub {
	broadcastBuffer := defaultBroadcastBuffer
	clientBuffer := defaultClientBuffer
	if cfg != nil && cfg.BroadcastBuffer > 0 {
		broadcastBuffer = cfg.BroadcastBuffer
	}
	if cfg != nil && cfg.ClientBuffer > 0 {
		clientBuffer = cfg.ClientBuffer
	}

	return &Hub{
		clients:      make(map[*Client]bool),
		broadcast:    make(chan envelope, broadcastBuffer),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		clientBuffer: clientBuffer,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Infof("websocket client connected (total: %d)", h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logger.Infof("websocket client disconnected (total: %d)", h.ClientCount())

		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

func (h *Hub) deliver(env envelope) {
	var stalled []*Client

	h.mu.RLock()
	for client := range h.clients {
		if !client.subscribedTo(env.topic) {
			continue
		}
		select {
		case client.send <- env.data:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	if len(stalled) == 0 {
		return
	}

	// Drop clients that cannot keep up rather than block the hub.
	h.mu.Lock()
	for _, client := range stalled {
		if _, ok := h.clients[client]; ok {
			delete(h.clients, client)
			close(client.send)
		}
	}
	h.mu.Unlock()
}

// Broadcast queues a message for every client subscribed to the topic.
// When the broadcast buffer is full the message is dropped.
func (h *Hub) Broadcast(topic Topic, message []byte) {
	select {
	case h.broadcast <- envelope{topic: topic, data: message}:
	default:
		logger.Warn("broadcast channel full, dropping message")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
