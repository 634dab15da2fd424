package httphandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// StatusFor maps an engine error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shiperrors.ErrNoEstimate):
		return http.StatusNotFound
	case errors.Is(err, shiperrors.ErrMissingSession), errors.Is(err, shiperrors.ErrMissingAddress),
		errors.Is(err, shiperrors.ErrEmptyCountry):
		return http.StatusBadRequest
	case errors.Is(err, shiperrors.ErrInvalidSelection), errors.Is(err, shiperrors.ErrConsistency):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shiperrors.ErrCalculationInProgress), errors.Is(err, shiperrors.ErrStaleness):
		return http.StatusConflict
	case errors.Is(err, shiperrors.ErrNetwork):
		if shiperrors.IsRetryable(err) {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	case errors.Is(err, shiperrors.ErrConfiguration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func RespondError(c *gin.Context, err error) {
	code, msg := shiperrors.Code(err), shiperrors.UserMessage(err)
	if errors.Is(err, shiperrors.ErrEmptyCountry) {
		code, msg = "INVALID_INPUT", err.Error()
	}
	c.JSON(StatusFor(err), ErrorEnvelope{
		Error: APIError{
			Message:   msg,
			Code:      code,
			Retryable: shiperrors.IsRetryable(err),
		},
	})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorEnvelope{
		Error: APIError{Message: err.Error(), Code: "INVALID_INPUT"},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
