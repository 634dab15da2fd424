// services/consolidation-service/internal/orderrequest/builder.go
package orderrequest

import (
	"slices"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
	"github.com/Tanmoy095/VaultShip/shared/contracts"
)

// Build assembles the order payload from a saved estimate. selectedIDs is
// the selection at submit time and must be the same set the estimate was
// computed for.
func Build(estimate models.ShipmentEstimate, selectedIDs []string, addressID string) (contracts.ShipmentOrderRequest, error) {
	ids := models.NormalizeIDs(selectedIDs)
	if len(ids) == 0 {
		return contracts.ShipmentOrderRequest{}, shiperrors.ErrEmptySelection
	}
	if !estimate.SameSelection(ids) {
		return contracts.ShipmentOrderRequest{}, shiperrors.ErrSelectionMismatch
	}

	return contracts.ShipmentOrderRequest{
		VaultID:            estimate.VaultID,
		ShippingAddressID:  addressID,
		ShipmentWeight:     models.GramsToKilograms(estimate.TotalWeightGrams),
		ShippingCost:       estimate.Breakdown.ShippingCost,
		StorageCost:        estimate.Breakdown.StorageCost,
		PlatformFee:        estimate.Breakdown.PlatformFee,
		TotalCost:          estimate.Breakdown.TotalCost,
		ShippingStatus:     contracts.ShippingStatusPending,
		DestinationCountry: estimate.DestinationCountry,
		VaultItemIDs:       slices.Clone(ids),
	}, nil
}

// WithAddress returns a copy of req pointing at addressID. The address is
// the only field that may change after Build.
func WithAddress(req contracts.ShipmentOrderRequest, addressID string) (contracts.ShipmentOrderRequest, error) {
	if addressID == "" {
		return contracts.ShipmentOrderRequest{}, shiperrors.ErrMissingAddress
	}
	req.ShippingAddressID = addressID
	req.VaultItemIDs = slices.Clone(req.VaultItemIDs)
	return req, nil
}
