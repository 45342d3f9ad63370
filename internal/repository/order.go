package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/supplyline/internal/api"
	"github.com/dukerupert/supplyline/internal/credstore"
	"github.com/dukerupert/supplyline/internal/model"
)

var ErrEmptyOrder = errors.New("order has no lines")

type OrderRepository struct {
	api   *api.Client
	creds credstore.Reader
}

func NewOrderRepository(client *api.Client, creds credstore.Reader) *OrderRepository {
	return &OrderRepository{api: client, creds: creds}
}

// List returns the orders the user received as a supplier, or placed
// otherwise.
func (r *OrderRepository) List(ctx context.Context) ([]model.Order, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	filter := "requestedBy"
	if role, _ := r.creds.RoleID(); role == model.RoleSupplier {
		filter = "supplierId"
	}

	var orders []model.Order
	if err := r.api.Do(ctx, http.MethodGet, fmt.Sprintf("orders?%s=%d", filter, uid), nil, &orders); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (*model.Order, error) {
	if _, err := currentUserID(r.creds); err != nil {
		return nil, err
	}
	var o model.Order
	if err := r.api.Do(ctx, http.MethodGet, fmt.Sprintf("orders/%d", id), nil, &o); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// Create places an order with supplierID. The total is computed from the
// lines before sending.
func (r *OrderRepository) Create(ctx context.Context, supplierID int64, description string, lines []model.OrderLine) (*model.Order, error) {
	uid, err := currentUserID(r.creds)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	o := model.Order{
		RequestedBy: uid,
		SupplierID:  supplierID,
		Status:      model.OrderPending,
		Description: description,
		Lines:       lines,
		Total:       total,
	}

	var out model.Order
	if err := r.api.Do(ctx, http.MethodPost, "orders", o, &out); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &out, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	if _, err := currentUserID(r.creds); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown order status %q", status)
	}

	var out model.Order
	body := map[string]model.OrderStatus{"status": status}
	if err := r.api.Do(ctx, http.MethodPatch, fmt.Sprintf("orders/%d", id), body, &out); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return &out, nil
}
