package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/froakietcg/backend/internal/events"
	"github.com/froakietcg/backend/internal/store"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	calls    int
	lastData map[string]interface{}
	fail     error
}

func (f *fakeProvider) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]interface{}) (map[string]interface{}, error) {
	f.calls++
	f.lastData = map[string]interface{}{
		"amount": amountPaise, "currency": currency, "receipt": receipt, "notes": notes,
	}
	if f.fail != nil {
		return nil, f.fail
	}
	return map[string]interface{}{
		"id":       "order_rzp123",
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
		"status":   "created",
	}, nil
}

type fakeStore struct {
	orders []*store.Order
	fail   error
}

func (f *fakeStore) InsertOrder(ctx context.Context, o *store.Order) error {
	if f.fail != nil {
		return f.fail
	}
	f.orders = append(f.orders, o)
	return nil
}

type fakePublisher struct {
	envelopes []events.Envelope
}

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err == nil {
		f.envelopes = append(f.envelopes, env)
	}
}

func newService(p *fakeProvider, st *fakeStore) *Service {
	return &Service{Store: st, Provider: p, StoreName: "Froakie TCG", Service: "store-api-test"}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []int64{0, -1, -50000} {
		provider := &fakeProvider{}
		st := &fakeStore{}
		svc := newService(provider, st)

		_, _, err := svc.CreateOrder(context.Background(), CreateOrderInput{AmountPaise: amount})

		require.ErrorIs(t, err, ErrInvalidAmount, "amount=%d", amount)
		assert.Zero(t, provider.calls, "provider must not be called for amount=%d", amount)
		assert.Empty(t, st.orders, "no order may be persisted for amount=%d", amount)
	}
}

func TestCreateOrderPersistsPendingOrderInRupees(t *testing.T) {
	provider := &fakeProvider{}
	st := &fakeStore{}
	svc := newService(provider, st)

	in := CreateOrderInput{
		AmountPaise: 50000,
		Customer: store.Customer{
			Name:  "Misty K",
			Email: "misty@example.com",
			Phone: "9999999999",
		},
		DeliveryType:   "standard",
		DeliveryCharge: decimal.NewFromInt(49),
		Items: []store.OrderItem{
			{ProductID: "p1", Name: "Charizard EX", Price: decimal.NewFromInt(450), Qty: 1},
			{ProductID: "p2", Name: "Booster Pack", Price: decimal.NewFromInt(25), Qty: 2},
		},
	}
	providerOrder, order, err := svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "order_rzp123", providerOrder["id"])
	require.Len(t, st.orders, 1)
	got := st.orders[0]
	assert.Same(t, order, got)

	assert.Equal(t, "order_rzp123", got.RazorpayOrderID)
	assert.Equal(t, store.StatusPending, got.Status)
	assert.Equal(t, "INR", got.Currency, "currency defaults to INR when omitted")
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(500)), "50000 paise stored as 500 rupees, got %s", got.Amount)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(500)), "total equals amount in rupees, got %s", got.Total)
	assert.True(t, got.Tax.IsZero())
	assert.Equal(t, in.Items, got.Items)
	assert.Equal(t, in.Customer, got.Customer)
	assert.Empty(t, got.RazorpayPaymentID, "no payment id before verification")
}

func TestCreateOrderKeepsExplicitCurrency(t *testing.T) {
	provider := &fakeProvider{}
	st := &fakeStore{}
	svc := newService(provider, st)

	_, order, err := svc.CreateOrder(context.Background(), CreateOrderInput{AmountPaise: 100, Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "USD", order.Currency)
	assert.Equal(t, "USD", provider.lastData["currency"])
}

func TestCreateOrderProviderFailure(t *testing.T) {
	provider := &fakeProvider{fail: errors.New("gateway down")}
	st := &fakeStore{}
	svc := newService(provider, st)

	_, _, err := svc.CreateOrder(context.Background(), CreateOrderInput{AmountPaise: 50000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway down")
	assert.Empty(t, st.orders, "no order persisted when the provider call fails")
}

func TestCreateOrderStoreFailureLeavesProviderOrderDangling(t *testing.T) {
	provider := &fakeProvider{}
	st := &fakeStore{fail: errors.New("insert: connection reset")}
	svc := newService(provider, st)

	_, _, err := svc.CreateOrder(context.Background(), CreateOrderInput{AmountPaise: 50000})
	require.Error(t, err)
	assert.Equal(t, 1, provider.calls, "provider order was created before the failed persist")
	assert.Contains(t, err.Error(), "order_rzp123", "error names the dangling provider order")
}

func TestCreateOrderPublishesOrderCreated(t *testing.T) {
	provider := &fakeProvider{}
	st := &fakeStore{}
	pub := &fakePublisher{}
	svc := newService(provider, st)
	svc.Producer = pub

	_, order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		AmountPaise: 50000,
		Items:       []store.OrderItem{{ProductID: "p1", Price: decimal.NewFromInt(500), Qty: 1}},
	})
	require.NoError(t, err)
	require.Len(t, pub.envelopes, 1)

	env := pub.envelopes[0]
	assert.Equal(t, events.EventOrderCreated, env.EventType)
	assert.Equal(t, order.OrderID, env.CorrelationID)

	var p events.OrderCreatedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, order.OrderID, p.OrderID)
	assert.Equal(t, "500", p.Total)
	assert.Equal(t, []events.ItemQty{{ProductID: "p1", Qty: 1}}, p.Items)
}
