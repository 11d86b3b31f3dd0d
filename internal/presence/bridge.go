package presence

import (
	"context"
	"encoding/json"
	"strings"

	"heartlink/backend/internal/logger"
	"heartlink/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const roomChannelPrefix = "room:"

// RedisBridge implements Broker over redis pub/sub. Each room publish goes to
// channel "room:<key>"; every server instance subscribes to "room:*" and fans
// received events into its local hub, so clients of one conversation can be
// connected to different instances.
type RedisBridge struct {
	rdb *redis.Client
	log *logger.Logger
}

func NewRedisBridge(rdb *redis.Client, log *logger.Logger) *RedisBridge {
	return &RedisBridge{rdb: rdb, log: log}
}

type bridgeEnvelope struct {
	Room  string             `json:"room"`
	Event models.ServerEvent `json:"event"`
}

// Publish serializes the event onto the room's channel.
func (b *RedisBridge) Publish(ctx context.Context, room string, event models.ServerEvent) error {
	payload, err := json.Marshal(bridgeEnvelope{Room: room, Event: event})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, roomChannelPrefix+room, payload).Err()
}

// Listen subscribes to all room channels and delivers into the hub until the
// context is cancelled. Runs in its own goroutine.
func (b *RedisBridge) Listen(ctx context.Context, hub *Hub) {
	pubsub := b.rdb.PSubscribe(ctx, roomChannelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env bridgeEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn("malformed bridge payload", "channel", msg.Channel, "error", err)
				continue
			}
			if env.Room == "" {
				env.Room = strings.TrimPrefix(msg.Channel, roomChannelPrefix)
			}
			hub.Deliver(env.Room, env.Event)
		case <-ctx.Done():
			return
		}
	}
}
