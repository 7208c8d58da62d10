package store

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategorySingleCards     Category = "single-cards"
	CategorySealedBundles   Category = "sealed-bundles"
	CategoryBoosterBoxes    Category = "booster-boxes"
	CategoryCollectionBoxes Category = "collection-boxes"
)

type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	Description  string          `json:"description"`
	Image        string          `json:"image"`
	MarketPrice  decimal.Decimal `json:"marketPrice"`
	MarketURL    string          `json:"marketUrl"`
	MarketSource string          `json:"marketSource"`
	Category     Category        `json:"category"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type Address struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	Landmark string `json:"landmark"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

type Customer struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address Address `json:"address"`
}

// OrderItem snapshots name and unit price at checkout time so later
// catalog edits do not rewrite order history.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"quantity"`
}

// Order amounts are major currency units (rupees); the paise→rupee
// conversion happens once, in checkout.
type Order struct {
	OrderID           string          `json:"orderId"`
	RazorpayOrderID   string          `json:"razorpayOrderId"`
	RazorpayPaymentID string          `json:"razorpayPaymentId"`
	RazorpaySignature string          `json:"razorpaySignature"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            Status          `json:"status"`
	Customer          Customer        `json:"customer"`
	Items             []OrderItem     `json:"items"`
	DeliveryType      string          `json:"deliveryType"`
	DeliveryCharge    decimal.Decimal `json:"deliveryCharge"`
	Tax               decimal.Decimal `json:"tax"`
	Total             decimal.Decimal `json:"total"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}
