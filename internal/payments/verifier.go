// Package payments authenticates Razorpay payment callbacks and applies
// the resulting order and stock transitions.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/froakietcg/backend/internal/events"
	kafkax "github.com/froakietcg/backend/internal/kafka"
	"github.com/froakietcg/backend/internal/store"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

var ErrSignatureMismatch = errors.New("signature mismatch")

type OrderStore interface {
	MarkPaid(ctx context.Context, razorpayOrderID, paymentID, signature string) (*store.Order, error)
	DecrementStock(ctx context.Context, productID string, qty int) error
}

type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Verifier struct {
	Store    OrderStore
	Secret   string         // Razorpay key secret
	Producer EventPublisher // optional
	Service  string
}

// Signature is the callback signature Razorpay computes: hex HMAC-SHA256
// over "{orderID}|{paymentID}" keyed with the key secret.
func Signature(secret, razorpayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(razorpayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPayment recomputes the expected signature and, on match, marks
// the order paid and decrements stock per line item.
//
// The stock loop is best-effort and not idempotent: an unknown product id
// is skipped, a decrement error is logged and skipped, and a repeated
// callback for the same payment decrements again. Callers relying on
// exactly-once stock adjustment must dedup upstream.
func (v *Verifier) VerifyPayment(ctx context.Context, razorpayOrderID, paymentID, signature string) (*store.Order, error) {
	expected := Signature(v.Secret, razorpayOrderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrSignatureMismatch
	}

	o, err := v.Store.MarkPaid(ctx, razorpayOrderID, paymentID, signature)
	if err != nil {
		return nil, err
	}

	for _, it := range o.Items {
		if err := v.Store.DecrementStock(ctx, it.ProductID, it.Qty); err != nil {
			log.Printf("stock decrement skipped: order=%s product=%s: %v", o.OrderID, it.ProductID, err)
		}
	}

	v.publishCaptured(o)
	return o, nil
}

func (v *Verifier) publishCaptured(o *store.Order) {
	if v.Producer == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventPaymentCaptured,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      v.Service,
		CorrelationID: o.OrderID,
		Payload: kafkax.MustMarshal(events.PaymentCapturedPayload{
			OrderID:           o.OrderID,
			RazorpayOrderID:   o.RazorpayOrderID,
			RazorpayPaymentID: o.RazorpayPaymentID,
		}),
	}
	v.Producer.Publish(events.PartitionKey(o.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventPaymentCaptured)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
