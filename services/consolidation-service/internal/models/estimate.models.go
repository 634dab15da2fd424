package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ShipmentEstimate is the last computed quote for a session. It is carried
// across the calculate, address and payment steps of checkout.
type ShipmentEstimate struct {
	ID                 uuid.UUID
	VaultID            string
	DestinationCountry string // normalized ISO-2
	SelectedItemIDs    []string
	TotalWeightGrams   int64
	Resolution         SlabResolution
	Breakdown          CostBreakdown
	ComputedAt         time.Time
}

// NormalizeIDs returns the ids sorted and de-duplicated, with blanks dropped,
// so two selections compare as sets.
func NormalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// SameSelection reports whether ids is the same set of vault items the
// estimate was computed for.
func (e ShipmentEstimate) SameSelection(ids []string) bool {
	return slices.Equal(NormalizeIDs(e.SelectedItemIDs), NormalizeIDs(ids))
}

// Contains reports whether the vault item is part of the estimate.
func (e ShipmentEstimate) Contains(itemID string) bool {
	return slices.Contains(e.SelectedItemIDs, itemID)
}

// EstimateRecord is the persisted form of a ShipmentEstimate. The first five
// fields are the record the storefront has always written; the rest let the
// estimate be rebuilt without recomputing.
type EstimateRecord struct {
	Country          string    `json:"country"`
	ShippingCost     int64     `json:"shippingCost"`
	ChargeableWeight float64   `json:"chargeableWeight"` // kg
	TotalWeight      float64   `json:"totalWeight"`      // kg
	CalculatedAt     time.Time `json:"calculatedAt"`

	ID                    string   `json:"id"`
	VaultID               string   `json:"vaultId"`
	SelectedItemIDs       []string `json:"selectedItemIds"`
	TotalWeightGrams      int64    `json:"totalWeightGrams"`
	ChargeableWeightGrams int64    `json:"chargeableWeightGrams"`
	ChargeableTier        string   `json:"chargeableTier"`
	IsCapped              bool     `json:"isCapped"`
	Currency              string   `json:"currency"`
	StorageCost           int64    `json:"storageCost"`
	PlatformFee           int64    `json:"platformFee"`
	TotalCost             int64    `json:"totalCost"`
}

// GramsToKilograms converts whole grams to kilograms for display and payloads.
func GramsToKilograms(g int64) float64 {
	return float64(g) / 1000
}

func (e ShipmentEstimate) ToRecord() EstimateRecord {
	return EstimateRecord{
		Country:               e.DestinationCountry,
		ShippingCost:          e.Breakdown.ShippingCost,
		ChargeableWeight:      GramsToKilograms(e.Resolution.ChargeableGrams),
		TotalWeight:           GramsToKilograms(e.TotalWeightGrams),
		CalculatedAt:          e.ComputedAt.UTC(),
		ID:                    e.ID.String(),
		VaultID:               e.VaultID,
		SelectedItemIDs:       NormalizeIDs(e.SelectedItemIDs),
		TotalWeightGrams:      e.TotalWeightGrams,
		ChargeableWeightGrams: e.Resolution.ChargeableGrams,
		ChargeableTier:        e.Resolution.TierKey,
		IsCapped:              e.Resolution.IsCapped,
		Currency:              e.Breakdown.Currency,
		StorageCost:           e.Breakdown.StorageCost,
		PlatformFee:           e.Breakdown.PlatformFee,
		TotalCost:             e.Breakdown.TotalCost,
	}
}

// FromRecord rebuilds the estimate. A malformed id yields uuid.Nil rather
// than an error; the id is informational only.
func (r EstimateRecord) FromRecord() ShipmentEstimate {
	id, _ := uuid.Parse(r.ID)
	return ShipmentEstimate{
		ID:                 id,
		VaultID:            r.VaultID,
		DestinationCountry: r.Country,
		SelectedItemIDs:    NormalizeIDs(r.SelectedItemIDs),
		TotalWeightGrams:   r.TotalWeightGrams,
		Resolution: SlabResolution{
			TierKey:         r.ChargeableTier,
			ChargeableGrams: r.ChargeableWeightGrams,
			Cost:            r.ShippingCost,
			IsCapped:        r.IsCapped,
		},
		Breakdown: CostBreakdown{
			Currency:     r.Currency,
			ShippingCost: r.ShippingCost,
			StorageCost:  r.StorageCost,
			PlatformFee:  r.PlatformFee,
			TotalCost:    r.TotalCost,
		},
		ComputedAt: r.CalculatedAt,
	}
}
