package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"hostelfix/backend/internal/models"
)

// Channel is the redis pub/sub channel shared by every server instance.
const Channel = "complaints:events"

// PubSub is the subset of the redis client the broker needs.
type PubSub interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// Broker publishes complaint events. With redis configured every instance
// receives every event through Listen; without it events go straight to the
// local hub.
type Broker struct {
	rdb PubSub
	hub *Hub
	log *slog.Logger
}

// NewBroker returns a broker. rdb may be nil for single-instance deployments.
func NewBroker(rdb PubSub, hub *Hub, logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{rdb: rdb, hub: hub, log: logger.With("component", "feed.broker")}
}

func (b *Broker) Distributed() bool { return b.rdb != nil }

func (b *Broker) Publish(ctx context.Context, e models.ComplaintEvent) error {
	if b.rdb == nil {
		b.hub.Deliver(e)
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Listen relays events from redis into the local hub until ctx is done.
// It is a no-op without redis.
func (b *Broker) Listen(ctx context.Context) error {
	if b.rdb == nil {
		<-ctx.Done()
		return nil
	}

	sub := b.rdb.Subscribe(ctx, Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	b.log.Info("listening for complaint events", "channel", Channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handlePayload(msg.Payload)
		}
	}
}

func (b *Broker) handlePayload(payload string) {
	var e models.ComplaintEvent
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		b.log.Warn("dropping malformed event", "error", err)
		return
	}
	b.hub.Deliver(e)
}
