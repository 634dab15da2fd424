package models

import "github.com/shopspring/decimal"

// WeightUnit is the unit the tier keys of a rate table are expressed in.
type WeightUnit string

const (
	Kilograms WeightUnit = "kg"
	Grams     WeightUnit = "g"
)

// RateTable is one destination's weight-tier price list.
// Prices is keyed by the tier as it came over the wire ("0.5", "1", "2"...),
// and is unordered until the slab resolver sorts it.
type RateTable struct {
	Country  string                     `json:"country"`
	Currency string                     `json:"currency"`
	Unit     WeightUnit                 `json:"unit"`
	Prices   map[string]decimal.Decimal `json:"prices"`
}

// SlabResolution is the tier a weight was billed at.
type SlabResolution struct {
	TierKey         string `json:"tier_key"`
	ChargeableGrams int64  `json:"chargeable_grams"`
	Cost            int64  `json:"cost"`
	// IsCapped is set when the weight exceeded the largest tier and the
	// largest tier's price was used anyway.
	IsCapped bool `json:"is_capped"`
}

// CostBreakdown amounts are whole currency units.
type CostBreakdown struct {
	Currency     string `json:"currency"`
	ShippingCost int64  `json:"shipping_cost"`
	StorageCost  int64  `json:"storage_cost"`
	PlatformFee  int64  `json:"platform_fee"`
	TotalCost    int64  `json:"total_cost"`
}
