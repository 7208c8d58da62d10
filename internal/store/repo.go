package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
)

const orderColumns = `order_id, razorpay_order_id, razorpay_payment_id, razorpay_signature,
	amount, currency, status,
	customer_name, customer_email, customer_phone,
	addr_line1, addr_line2, addr_landmark, addr_city, addr_state, addr_pincode,
	delivery_type, delivery_charge, tax, total, created_at, updated_at`

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, price, stock, description, image,
		       market_price, market_url, market_source, category, created_at, updated_at
		FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Description, &p.Image,
			&p.MarketPrice, &p.MarketURL, &p.MarketSource, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, price, stock, description, image,
		       market_price, market_url, market_source, category, created_at, updated_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Description, &p.Image,
			&p.MarketPrice, &p.MarketURL, &p.MarketSource, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertOrder writes the order row and its items in one transaction and
// fills in CreatedAt/UpdatedAt from the database clock.
func (r *Repo) InsertOrder(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders(order_id, razorpay_order_id, razorpay_payment_id, razorpay_signature,
			amount, currency, status,
			customer_name, customer_email, customer_phone,
			addr_line1, addr_line2, addr_landmark, addr_city, addr_state, addr_pincode,
			delivery_type, delivery_charge, tax, total)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING created_at, updated_at`,
		o.OrderID, o.RazorpayOrderID, o.RazorpayPaymentID, o.RazorpaySignature,
		o.Amount, o.Currency, o.Status,
		o.Customer.Name, o.Customer.Email, o.Customer.Phone,
		o.Customer.Address.Line1, o.Customer.Address.Line2, o.Customer.Address.Landmark,
		o.Customer.Address.City, o.Customer.Address.State, o.Customer.Address.Pincode,
		o.DeliveryType, o.DeliveryCharge, o.Tax, o.Total,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		if it.Qty <= 0 {
			return fmt.Errorf("invalid qty for product %s", it.ProductID)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, name, price, qty)
			VALUES ($1,$2,$3,$4,$5)`,
			o.OrderID, it.ProductID, it.Name, it.Price, it.Qty); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// MarkPaid is the single conditional update of the payment flow: it
// transitions the order matching the provider order id to paid and
// attaches payment id + signature. Returns the updated order with items,
// or ErrOrderNotFound when no order carries that provider id.
func (r *Repo) MarkPaid(ctx context.Context, razorpayOrderID, paymentID, signature string) (*Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		UPDATE orders
		SET status=$2, razorpay_payment_id=$3, razorpay_signature=$4, updated_at=now()
		WHERE razorpay_order_id=$1
		RETURNING `+orderColumns,
		razorpayOrderID, StatusPaid, paymentID, signature).
		Scan(&o.OrderID, &o.RazorpayOrderID, &o.RazorpayPaymentID, &o.RazorpaySignature,
			&o.Amount, &o.Currency, &o.Status,
			&o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
			&o.Customer.Address.Line1, &o.Customer.Address.Line2, &o.Customer.Address.Landmark,
			&o.Customer.Address.City, &o.Customer.Address.State, &o.Customer.Address.Pincode,
			&o.DeliveryType, &o.DeliveryCharge, &o.Tax, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, o.OrderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *Repo) GetOrderStatus(ctx context.Context, orderID string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE order_id=$1`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

// DecrementStock applies an unguarded stock = stock - qty. A product id
// with no matching row affects zero rows and is not an error; stock is
// allowed to go negative, matching the storefront's historical behavior.
func (r *Repo) DecrementStock(ctx context.Context, productID string, qty int) error {
	_, err := r.DB.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`,
		productID, qty)
	return err
}

func (r *Repo) loadItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT product_id, name, price, qty FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Price, &it.Qty); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
