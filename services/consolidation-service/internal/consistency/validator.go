// services/consolidation-service/internal/consistency/validator.go
package consistency

import (
	"fmt"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/country"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
)

// Result is the outcome of comparing an estimate with a delivery address.
// A failed Result is an expected business outcome, not an error.
type Result struct {
	OK              bool   `json:"ok"`
	Message         string `json:"message,omitempty"`
	EstimateCountry string `json:"estimate_country,omitempty"`
	AddressCountry  string `json:"address_country,omitempty"`
	// Skipped is set when either side could not be normalized and the
	// comparison was not made.
	Skipped bool `json:"skipped,omitempty"`
}

// Err converts a failed Result into an ErrConsistency error for callers
// that try to proceed anyway.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return shiperrors.Mismatch(r.Message)
}

type Validator struct {
	normalizer country.Normalizer
	namer      country.Namer
}

// NewValidator uses n for both sides. If n also implements country.Namer,
// messages carry display names instead of codes.
func NewValidator(n country.Normalizer) *Validator {
	v := &Validator{normalizer: n}
	if namer, ok := n.(country.Namer); ok {
		v.namer = namer
	}
	return v
}

// Validate compares the estimate destination with the address country.
func (v *Validator) Validate(estimate models.ShipmentEstimate, address models.DeliveryAddress) Result {
	estCode := v.normalizer.Normalize(estimate.DestinationCountry)
	addrCode := v.normalizer.Normalize(address.Country)
	if estCode == "" || addrCode == "" {
		return Result{OK: true, Skipped: true, EstimateCountry: estCode, AddressCountry: addrCode}
	}
	if estCode == addrCode {
		return Result{OK: true, EstimateCountry: estCode, AddressCountry: addrCode}
	}

	estName, addrName := v.name(estCode), v.name(addrCode)
	return Result{
		OK:              false,
		EstimateCountry: estCode,
		AddressCountry:  addrCode,
		Message: fmt.Sprintf(
			"Your shipping estimate was calculated for %s, but the selected address is in %s. "+
				"Recalculate shipping for %s or choose an address in %s.",
			estName, addrName, addrName, estName),
	}
}

func (v *Validator) name(code string) string {
	if v.namer == nil {
		return code
	}
	return v.namer.Name(code)
}
