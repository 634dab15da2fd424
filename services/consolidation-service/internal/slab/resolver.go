// services/consolidation-service/internal/slab/resolver.go
package slab

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
)

var gramsPerKilogram = decimal.NewFromInt(1000)

// Tier is one parsed weight breakpoint of a rate table.
type Tier struct {
	Key   string // as it appeared in the table
	Grams int64  // inclusive upper bound
	Price int64  // whole currency units
}

// Tiers parses the table keys, drops anything that is not a non-negative
// number (or has a negative price) and returns the rest in ascending weight
// order. Equal weights keep a stable order by key text.
func Tiers(table models.RateTable) []Tier {
	tiers := make([]Tier, 0, len(table.Prices))
	for key, price := range table.Prices {
		grams, ok := parseTierKey(key, table.Unit)
		if !ok || price.IsNegative() {
			continue
		}
		tiers = append(tiers, Tier{
			Key:   key,
			Grams: grams,
			Price: price.Round(0).IntPart(),
		})
	}
	slices.SortFunc(tiers, func(a, b Tier) int {
		if c := cmp.Compare(a.Grams, b.Grams); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return tiers
}

// Resolve bills weightGrams at the smallest tier that covers it. Weights above
// the largest tier are billed at the largest tier with IsCapped set.
func Resolve(weightGrams int64, table models.RateTable) (models.SlabResolution, error) {
	if weightGrams < 0 {
		return models.SlabResolution{}, shiperrors.ErrNegativeWeight
	}
	tiers := Tiers(table)
	if len(tiers) == 0 {
		return models.SlabResolution{}, shiperrors.ErrNoTiers
	}

	for _, tier := range tiers {
		if tier.Grams >= weightGrams {
			return resolution(tier, false), nil
		}
	}
	// Largest tier; with duplicates the first of the equal group wins.
	top := tiers[len(tiers)-1]
	for _, tier := range tiers {
		if tier.Grams == top.Grams {
			top = tier
			break
		}
	}
	return resolution(top, true), nil
}

// ResolveKilograms rounds kg to three decimals (whole grams) before resolving.
func ResolveKilograms(kg float64, table models.RateTable) (models.SlabResolution, error) {
	return Resolve(KilogramsToGrams(decimal.NewFromFloat(kg)), table)
}

// KilogramsToGrams rounds half away from zero to the nearest gram.
func KilogramsToGrams(kg decimal.Decimal) int64 {
	return kg.Mul(gramsPerKilogram).Round(0).IntPart()
}

func resolution(t Tier, capped bool) models.SlabResolution {
	return models.SlabResolution{
		TierKey:         t.Key,
		ChargeableGrams: t.Grams,
		Cost:            t.Price,
		IsCapped:        capped,
	}
}

func parseTierKey(key string, unit models.WeightUnit) (int64, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(key))
	if err != nil || d.IsNegative() {
		return 0, false
	}
	if unit == models.Grams {
		return d.Round(0).IntPart(), true
	}
	return KilogramsToGrams(d), true
}
