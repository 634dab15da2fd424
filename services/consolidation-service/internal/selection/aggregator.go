// services/consolidation-service/internal/selection/aggregator.go
package selection

import (
	"github.com/shopspring/decimal"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
)

// Totals summarises the currently selected vault items.
type Totals struct {
	TotalWeightGrams int64           `json:"total_weight_grams"`
	TotalCount       int             `json:"total_count"`
	TotalValue       decimal.Decimal `json:"total_value"`
	// Unweighed counts selected items the warehouse has not weighed yet;
	// they contribute zero grams.
	Unweighed int      `json:"unweighed"`
	ItemIDs   []string `json:"item_ids"`
}

// Aggregate sums weight, count and declared value over selected items only.
func Aggregate(items []models.VaultItem) Totals {
	totals := Totals{TotalValue: decimal.Zero, ItemIDs: []string{}}
	for _, item := range items {
		if !item.Selected {
			continue
		}
		totals.TotalCount++
		totals.TotalWeightGrams += item.Grams()
		totals.TotalValue = totals.TotalValue.Add(item.DeclaredValue)
		if !item.Weighed() {
			totals.Unweighed++
		}
		totals.ItemIDs = append(totals.ItemIDs, item.ID)
	}
	totals.ItemIDs = models.NormalizeIDs(totals.ItemIDs)
	return totals
}

// Empty reports whether nothing priceable is selected.
func (t Totals) Empty() bool {
	return t.TotalCount == 0 || t.TotalWeightGrams == 0
}
