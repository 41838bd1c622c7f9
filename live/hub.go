package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

const writeWait = 5 * time.Second

// Hub holds every connected admin dashboard and fans events out to them.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish implements services.EventPublisher for single-instance deployments.
func (h *Hub) Publish(event string, data interface{}) {
	h.Broadcast(services.Event{Event: event, Data: data, At: time.Now().UTC()})
}

func (h *Hub) Broadcast(evt services.Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling live event %s: %v", evt.Event, err)
		return
	}
	h.BroadcastRaw(payload)
}

// BroadcastRaw writes an already encoded event. Clients that fail the write
// are dropped.
func (h *Hub) BroadcastRaw(payload []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.Printf("Error sending live event, dropping client: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
