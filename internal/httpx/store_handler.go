package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/froakietcg/backend/internal/checkout"
	"github.com/froakietcg/backend/internal/payments"
	"github.com/froakietcg/backend/internal/redisx"
	"github.com/froakietcg/backend/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type Catalog interface {
	ListProducts(ctx context.Context) ([]store.Product, error)
	GetProduct(ctx context.Context, id string) (*store.Product, error)
}

type OrderReader interface {
	GetOrderStatus(ctx context.Context, orderID string) (store.Status, error)
}

type CheckoutService interface {
	CreateOrder(ctx context.Context, in checkout.CreateOrderInput) (map[string]interface{}, *store.Order, error)
}

type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, razorpayOrderID, paymentID, signature string) (*store.Order, error)
}

type StoreHandler struct {
	Catalog   Catalog
	Orders    OrderReader
	Checkout  CheckoutService
	Verifier  PaymentVerifier
	Redis     *redis.Client // optional status fast path
	StoreName string
}

type CustomerInfo struct {
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        store.Address   `json:"address"`
	DeliveryType   string          `json:"deliveryType"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
}

type CreateOrderReq struct {
	Amount       json.Number       `json:"amount"`
	Currency     string            `json:"currency"`
	CustomerInfo CustomerInfo      `json:"customerInfo"`
	Items        []store.OrderItem `json:"items"`
}

type VerifyPaymentReq struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

func (h *StoreHandler) Register(r *chi.Mux) {
	r.Get("/", h.root)
	r.Get("/api/products", h.listProducts)
	r.Get("/api/products/{id}", h.getProduct)
	r.Post("/api/create-order", h.createOrder)
	r.Post("/api/verify-payment", h.verifyPayment)
	r.Get("/api/orders/{id}", h.getOrderStatus)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *StoreHandler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": h.StoreName + " backend running",
	})
}

func (h *StoreHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	products, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}
	if products == nil {
		products = []store.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "products": products})
}

func (h *StoreHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrProductNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "product": p})
}

func (h *StoreHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid json"})
		return
	}

	// amount must be an integer number of paise; "500.50" is rejected here
	amount, err := strconv.ParseInt(req.Amount.String(), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid amount"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	providerOrder, order, err := h.Checkout.CreateOrder(ctx, checkout.CreateOrderInput{
		AmountPaise: amount,
		Currency:    req.Currency,
		Customer: store.Customer{
			Name:    req.CustomerInfo.Name,
			Email:   req.CustomerInfo.Email,
			Phone:   req.CustomerInfo.Phone,
			Address: req.CustomerInfo.Address,
		},
		DeliveryType:   req.CustomerInfo.DeliveryType,
		DeliveryCharge: req.CustomerInfo.DeliveryCharge,
		Items:          req.Items,
	})
	if errors.Is(err, checkout.ErrInvalidAmount) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid amount"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}

	h.cacheStatus(ctx, order.OrderID, order.Status)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"razorpayOrder": providerOrder,
		"orderId":       order.OrderID,
	})
}

func (h *StoreHandler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := h.Verifier.VerifyPayment(ctx, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if errors.Is(err, payments.ErrSignatureMismatch) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false})
		return
	}

	h.cacheStatus(ctx, order.OrderID, order.Status)

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": order})
}

func (h *StoreHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "orderId": orderID, "status": s})
			return
		}
	}

	status, err := h.Orders.GetOrderStatus(ctx, orderID)
	if errors.Is(err, store.ErrOrderNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}

	h.cacheStatus(ctx, orderID, status)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orderId": orderID, "status": status})
}

func (h *StoreHandler) cacheStatus(ctx context.Context, orderID string, status store.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = h.Redis.Set(ctx, key, string(status), redisx.TTLStatusCache).Err()
}
