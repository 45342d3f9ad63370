package model

import "github.com/shopspring/decimal"

// Subscription tiers. TierNone is the stored default.
const (
	TierNone    = 0
	TierBasic   = 1
	TierPremium = 2
)

type Plan struct {
	Tier        int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}
