// services/consolidation-service/internal/estimator/cost_estimator.go
package estimator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/selection"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/slab"
)

// DefaultPlatformFeeRate is the 5% service charge on shipping + storage.
var DefaultPlatformFeeRate = decimal.RequireFromString("0.05")

// Quote is everything one estimate run produced.
type Quote struct {
	Selection  selection.Totals
	Resolution models.SlabResolution
	Breakdown  models.CostBreakdown
}

// CostEstimator turns a selection and a rate table into a cost breakdown.
type CostEstimator struct {
	feeRate decimal.Decimal
}

// New returns an estimator charging feeRate (0.05 = 5%). A negative rate
// falls back to the default.
func New(feeRate decimal.Decimal) *CostEstimator {
	if feeRate.IsNegative() {
		feeRate = DefaultPlatformFeeRate
	}
	return &CostEstimator{feeRate: feeRate}
}

// FeeRate returns the configured platform fee rate.
func (e *CostEstimator) FeeRate() decimal.Decimal { return e.feeRate }

// Estimate aggregates the selected items and prices them.
func (e *CostEstimator) Estimate(items []models.VaultItem, table models.RateTable, storageCost int64) (Quote, error) {
	return e.EstimateTotals(selection.Aggregate(items), table, storageCost)
}

// EstimateTotals prices an already aggregated selection. An empty or
// weightless selection is rejected: it must never price at zero.
func (e *CostEstimator) EstimateTotals(totals selection.Totals, table models.RateTable, storageCost int64) (Quote, error) {
	if totals.TotalCount == 0 {
		return Quote{}, shiperrors.ErrEmptySelection
	}
	if totals.TotalWeightGrams <= 0 {
		return Quote{}, shiperrors.ErrZeroWeight
	}
	if storageCost < 0 {
		return Quote{}, shiperrors.ErrNegativeStorageCost
	}

	res, err := slab.Resolve(totals.TotalWeightGrams, table)
	if err != nil {
		return Quote{}, fmt.Errorf("resolve slab for %s: %w", table.Country, err)
	}

	fee := PlatformFee(e.feeRate, res.Cost, storageCost)
	return Quote{
		Selection:  totals,
		Resolution: res,
		Breakdown: models.CostBreakdown{
			Currency:     table.Currency,
			ShippingCost: res.Cost,
			StorageCost:  storageCost,
			PlatformFee:  fee,
			TotalCost:    res.Cost + storageCost + fee,
		},
	}, nil
}

// PlatformFee is round-half-up(rate × (shipping + storage)) in whole units.
func PlatformFee(rate decimal.Decimal, shippingCost, storageCost int64) int64 {
	base := decimal.NewFromInt(shippingCost + storageCost)
	return base.Mul(rate).Round(0).IntPart()
}
