package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supply is a catalog item defined by the backend.
type Supply struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Perishable  bool   `json:"perishable"`
	UnitName    string `json:"unitName"`
	UnitAbbr    string `json:"unitAbbreviation"`
	Category    string `json:"category"`
}

// CustomSupply is a user's own pricing and stock bounds for a Supply.
type CustomSupply struct {
	ID       int64           `json:"id"`
	SupplyID int64           `json:"supplyId"`
	UserID   int64           `json:"userId"`
	Supply   *Supply         `json:"supply,omitempty"`
	MinStock int             `json:"minStock"`
	MaxStock int             `json:"maxStock"`
	Price    decimal.Decimal `json:"price"`
	UnitName string          `json:"unitName"`
}

// Batch is a received quantity of a CustomSupply.
type Batch struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"userId"`
	CustomSupplyID int64      `json:"customSupplyId"`
	Stock          int        `json:"stock"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
}

// Expired reports whether the batch expired before now.
func (b Batch) Expired(now time.Time) bool {
	return b.ExpirationDate != nil && b.ExpirationDate.Before(now)
}
