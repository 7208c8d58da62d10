// Package checkout orchestrates order creation: validate the amount,
// create the provider-side order, persist the local pending order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/froakietcg/backend/internal/events"
	kafkax "github.com/froakietcg/backend/internal/kafka"
	"github.com/froakietcg/backend/internal/store"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount rejects amounts that are not a positive number of
// minor units (paise). Nothing is created upstream or locally.
var ErrInvalidAmount = errors.New("invalid amount")

type ProviderClient interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]interface{}) (map[string]interface{}, error)
}

type OrderStore interface {
	InsertOrder(ctx context.Context, o *store.Order) error
}

type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type CreateOrderInput struct {
	AmountPaise    int64
	Currency       string
	Customer       store.Customer
	DeliveryType   string
	DeliveryCharge decimal.Decimal
	Items          []store.OrderItem
}

type Service struct {
	Store     OrderStore
	Provider  ProviderClient
	Producer  EventPublisher // optional
	StoreName string
	Service   string
}

var hundred = decimal.NewFromInt(100)

// CreateOrder returns the raw provider order and the persisted local
// order. There is no compensation: a provider order created before a
// failed local insert is left dangling, and the error says so.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (map[string]interface{}, *store.Order, error) {
	if in.AmountPaise <= 0 {
		return nil, nil, ErrInvalidAmount
	}

	currency := in.Currency
	if currency == "" {
		currency = "INR"
	}

	now := time.Now()
	providerOrder, err := s.Provider.CreateOrder(ctx, in.AmountPaise, currency,
		fmt.Sprintf("receipt_%d", now.UnixMilli()),
		map[string]interface{}{
			"store":          s.StoreName,
			"customer_name":  in.Customer.Name,
			"customer_email": in.Customer.Email,
		})
	if err != nil {
		return nil, nil, fmt.Errorf("create provider order: %w", err)
	}

	razorpayOrderID, _ := providerOrder["id"].(string)
	rupees := decimal.NewFromInt(in.AmountPaise).Div(hundred)

	o := &store.Order{
		OrderID:         fmt.Sprintf("ORD_%d", now.UnixMilli()),
		RazorpayOrderID: razorpayOrderID,
		Amount:          rupees,
		Currency:        currency,
		Status:          store.StatusPending,
		Customer:        in.Customer,
		Items:           in.Items,
		DeliveryType:    in.DeliveryType,
		DeliveryCharge:  in.DeliveryCharge,
		Tax:             decimal.Zero,
		Total:           rupees,
	}
	if err := s.Store.InsertOrder(ctx, o); err != nil {
		return nil, nil, fmt.Errorf("persist order (provider order %s left dangling): %w", razorpayOrderID, err)
	}

	s.publishCreated(o)
	return providerOrder, o, nil
}

func (s *Service) publishCreated(o *store.Order) {
	if s.Producer == nil {
		return
	}
	items := make([]events.ItemQty, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, events.ItemQty{ProductID: it.ProductID, Qty: it.Qty})
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Service,
		CorrelationID: o.OrderID,
		Payload: kafkax.MustMarshal(events.OrderCreatedPayload{
			OrderID:         o.OrderID,
			RazorpayOrderID: o.RazorpayOrderID,
			Currency:        o.Currency,
			Total:           o.Total.String(),
			Items:           items,
		}),
	}
	s.Producer.Publish(events.PartitionKey(o.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
