// Package razorpay wraps the official Razorpay SDK behind the narrow
// surface this service needs: order creation.
package razorpay

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

type Client struct {
	api *razorpay.Client
}

func New(keyID, keySecret string) *Client {
	return &Client{api: razorpay.NewClient(keyID, keySecret)}
}

// CreateOrder creates a provider-side order for the given minor-unit
// amount. The returned map is Razorpay's raw order document; its "id"
// field is what a client pays against and what the payment callback
// later references.
func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]interface{}) (map[string]interface{}, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	order, err := c.api.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}
	return order, nil
}
