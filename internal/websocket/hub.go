package notifyws

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/arian-h/TutorAppBack/internal/models"
	websocket "github.com/gofiber/contrib/websocket"
)

// Hub fans booking lifecycle events out to the connected dashboard clients
// of the two booking participants. Delivery is best effort: slow clients are
// dropped rather than blocking the hub.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	events     chan *Event
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

type Event struct {
	Type      string          `json:"type"`
	Booking   *models.Booking `json:"booking,omitempty"`
	Timestamp string          `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan *Event, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case event := <-h.events:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// NotifyBookingUpdate implements services.BookingNotifier.
func (h *Hub) NotifyBookingUpdate(eventType string, booking *models.Booking) {
	event := &Event{
		Type:      eventType,
		Booking:   booking,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	select {
	case h.events <- event:
	default:
		log.Printf("notification hub: dropping %s event for booking %d", eventType, booking.ID)
	}
}

func (h *Hub) deliver(event *Event) {
	encoded, err := json.Marshal(event)
	if err != nil {
		log.Printf("notification hub encode event: %v", err)
		return
	}
	if event.Booking == nil {
		return
	}

	studentID := strconv.FormatInt(event.Booking.StudentID, 10)
	tutorID := strconv.FormatInt(event.Booking.TutorID, 10)

	h.sendToUser(studentID, encoded)
	if tutorID != studentID {
		h.sendToUser(tutorID, encoded)
	}
}

func (h *Hub) sendToUser(userID string, payload []byte) {
	set, ok := h.clients[userID]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, userID)
	}
}

// ReadPump drains the connection so pings and closes are processed; clients
// do not send application messages on this socket.
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
