package models

import "github.com/shopspring/decimal"

// VaultItem is an item held at the forwarding warehouse, waiting to be
// consolidated into an outbound shipment.
type VaultItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// WeightGrams is nil until the warehouse has weighed the item.
	WeightGrams   *int64          `json:"weight_grams"`
	DeclaredValue decimal.Decimal `json:"declared_value"`
	Selected      bool            `json:"selected"`
}

// Grams returns the item weight, treating a missing or negative weight as zero.
func (v VaultItem) Grams() int64 {
	if v.WeightGrams == nil || *v.WeightGrams < 0 {
		return 0
	}
	return *v.WeightGrams
}

// Weighed reports whether the warehouse recorded a weight for the item.
func (v VaultItem) Weighed() bool {
	return v.WeightGrams != nil
}
