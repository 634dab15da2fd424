// services/consolidation-service/internal/shiperrors/errors.domain.go
package shiperrors

import "errors"

// Kind sentinels. Every engine error wraps exactly one of these so the
// transport layer can map it to a status code and a user message with errors.Is.
var (
	// ErrConfiguration: rate table missing, empty or unparseable.
	ErrConfiguration = errors.New("shipping rate configuration error")

	// ErrInvalidSelection: nothing selected or zero aggregated weight.
	ErrInvalidSelection = errors.New("invalid vault item selection")

	// ErrNetwork: rate-table fetch or order submission failed in transit.
	ErrNetwork = errors.New("network error")

	// ErrConsistency: estimate destination and address country disagree.
	ErrConsistency = errors.New("estimate does not match delivery address")

	// ErrStaleness: the selection at build time is not the one the estimate was computed for.
	ErrStaleness = errors.New("shipping estimate is stale")
)

// Specific errors, each wrapping its kind.
var (
	ErrNoTiers               = wrap(ErrConfiguration, "rate table has no valid weight tiers")
	ErrEmptyCountry          = wrap(ErrConfiguration, "destination country is required")
	ErrEmptySelection        = wrap(ErrInvalidSelection, "no vault items selected")
	ErrZeroWeight            = wrap(ErrInvalidSelection, "selected vault items have no weight")
	ErrNegativeWeight        = wrap(ErrInvalidSelection, "weight cannot be negative")
	ErrNegativeStorageCost   = wrap(ErrInvalidSelection, "storage cost cannot be negative")
	ErrNoEstimate            = wrap(ErrStaleness, "no shipping estimate for this session")
	ErrSelectionMismatch     = wrap(ErrStaleness, "selected vault items differ from the estimate")
	ErrStaleCalculation      = wrap(ErrStaleness, "selection or destination changed during calculation")
	ErrCalculationInProgress = errors.New("a shipping calculation is already in progress")
	ErrMissingAddress        = errors.New("delivery address id is required")
	ErrMissingSession        = errors.New("session id is required")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func wrap(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Mismatch builds a consistency failure whose text is shown to the user as is.
func Mismatch(msg string) error {
	return wrap(ErrConsistency, msg)
}

// UserMessage turns any engine error into the text shown to the user.
// Configuration and network failures stay generic.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "Unable to calculate shipping, try again later."
	case errors.Is(err, ErrNetwork):
		return "We could not reach the shipping service. Please try again."
	case errors.Is(err, ErrCalculationInProgress):
		return "A shipping calculation is already running."
	case errors.Is(err, ErrStaleness):
		return "Your selection changed. Please recalculate shipping."
	case errors.Is(err, ErrInvalidSelection), errors.Is(err, ErrConsistency):
		return err.Error()
	default:
		return "Something went wrong. Please try again."
	}
}

// Code is a stable machine-readable code for err, used in API envelopes.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return "CONFIGURATION"
	case errors.Is(err, ErrInvalidSelection):
		return "INVALID_SELECTION"
	case errors.Is(err, ErrNetwork):
		return "NETWORK"
	case errors.Is(err, ErrConsistency):
		return "CONSISTENCY"
	case errors.Is(err, ErrStaleness):
		return "STALE_ESTIMATE"
	case errors.Is(err, ErrCalculationInProgress):
		return "IN_PROGRESS"
	case errors.Is(err, ErrMissingAddress), errors.Is(err, ErrMissingSession):
		return "INVALID_INPUT"
	default:
		return "INTERNAL"
	}
}
