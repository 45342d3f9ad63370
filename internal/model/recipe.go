package model

import "github.com/shopspring/decimal"

type Ingredient struct {
	BatchID  int64 `json:"batchId"`
	Quantity int   `json:"quantity"`
}

type Recipe struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Ingredients []Ingredient    `json:"ingredients"`
}
