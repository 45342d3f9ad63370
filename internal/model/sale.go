package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleLine struct {
	RecipeID  int64           `json:"recipeId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type Sale struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	Lines     []SaleLine `json:"recipes"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Total sums quantity times unit price over every line.
func (s Sale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
