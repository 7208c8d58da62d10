// Package notifier consumes payment-captured events and keeps the
// order-status fast path warm. The log line stands in for the customer
// confirmation hook.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/froakietcg/backend/internal/events"
	kafkax "github.com/froakietcg/backend/internal/kafka"
	"github.com/froakietcg/backend/internal/redisx"
	"github.com/froakietcg/backend/internal/store"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type Service struct {
	Redis       *redis.Client
	ServiceName string
}

func (s *Service) HandlePaymentCaptured(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventPaymentCaptured {
		return nil
	}

	// dedup by event id; redelivery of the same envelope is a no-op
	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[events.PaymentCapturedPayload](env.Payload)
	if err != nil {
		return err
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, p.OrderID)
	_ = s.Redis.Set(ctx, statusKey, string(store.StatusPaid), redisx.TTLStatusCache).Err()

	log.Printf("%s: payment captured: order=%s razorpay_order=%s payment=%s",
		s.ServiceName, p.OrderID, p.RazorpayOrderID, p.RazorpayPaymentID)
	return nil
}
