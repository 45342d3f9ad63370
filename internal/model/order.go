package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderAccepted  OrderStatus = "ACCEPTED"
	OrderRejected  OrderStatus = "REJECTED"
	OrderDelivered OrderStatus = "DELIVERED"
)

// Valid reports whether s is a status the backend accepts.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderRejected, OrderDelivered:
		return true
	}
	return false
}

type OrderLine struct {
	BatchID  int64           `json:"batchId"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type Order struct {
	ID          int64           `json:"id"`
	RequestedBy int64           `json:"requestedBy"`
	SupplierID  int64           `json:"supplierId"`
	Status      OrderStatus     `json:"status"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Lines       []OrderLine     `json:"batches"`
	Total       decimal.Decimal `json:"totalPrice"`
}
