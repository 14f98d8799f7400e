package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PaymentStream carries payment lifecycle events for downstream consumers
// (notifications, reporting).
const PaymentStream = "checkout:payments"

// StreamProducer publishes checkout events to redis streams; it implements
// the service's EventPublisher port.
type StreamProducer struct {
	client *redis.Client
}

func NewStreamProducer(client *redis.Client) *StreamProducer {
	return &StreamProducer{client: client}
}

func (p *StreamProducer) PublishPaymentEvent(ctx context.Context, paymentID, eventType string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: PaymentStream,
		Values: map[string]any{
			"payment_id": paymentID,
			"event_type": eventType,
			"payload":    string(payload),
			"timestamp":  time.Now().Unix(),
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("publish payment event: %w", err)
	}

	return nil
}
