package activityws

import (
	"context"
	"encoding/json"
	"log"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/ttthanh1411/gym/internal/models"
)

const (
	broadcastBuffer = 64
	clientBuffer    = 32
)

// Hub fans activity events out to every connected admin client.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan models.ActivityEvent
	done       chan struct{}
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.ActivityEvent, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}
}

// Run owns the client set until ctx is cancelled. It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// Register adds the client. On a stopped hub the client's send channel is
// closed right away so its WritePump exits.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister returns immediately once the hub has stopped; Run already
// closed every registered client on its way out.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event without blocking; it is dropped when the queue is full.
func (h *Hub) Publish(event models.ActivityEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("activity hub: queue full, dropping %s event", event.Type)
	}
}

func (h *Hub) deliver(event models.ActivityEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("activity hub encode event: %v", err)
		return
	}

	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// ReadPump discards inbound frames and unregisters the client once the
// connection closes.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
