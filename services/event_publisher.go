package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/restaurant-booking/utils"
)

const (
	EventReservationCreated       = "reservation.created"
	EventReservationUpdated       = "reservation.updated"
	EventReservationStatusChanged = "reservation.status_changed"
	EventReservationCancelled     = "reservation.cancelled"
	EventReservationDeleted       = "reservation.deleted"
	EventBanquetCreated           = "banquet.created"
	EventBanquetStatusChanged     = "banquet.status_changed"
	EventContactCreated           = "contact.created"
	EventTableCreated             = "table.created"
	EventTableUpdated             = "table.updated"
)

// EventPublisher fans admin-facing change events out to listeners.
type EventPublisher interface {
	Publish(event string, data interface{})
}

// Event is the wire shape shared by the websocket hub and the redis channel.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
	At    time.Time   `json:"at"`
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(string, interface{}) {}

// RedisPublisher publishes events on a redis channel so every instance's
// websocket hub can relay them.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(event string, data interface{}) {
	payload, err := json.Marshal(Event{Event: event, Data: data, At: time.Now().UTC()})
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling event %s: %v", event, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		utils.ErrorLogger.Printf("Error publishing event %s to redis: %v", event, err)
	}
}
