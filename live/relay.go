package live

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// Relay forwards events published on a redis channel (by any instance) to
// this instance's hub.
type Relay struct {
	client  *redis.Client
	channel string
	hub     *Hub
}

func NewRelay(client *redis.Client, channel string, hub *Hub) *Relay {
	return &Relay{client: client, channel: channel, hub: hub}
}

// Run blocks until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	utils.InfoLogger.Printf("Live relay subscribed to redis channel %q", r.channel)
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.hub.BroadcastRaw([]byte(msg.Payload))
		}
	}
}
