// handler/http/checkout.handler.go
package httphandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tanmoy095/VaultShip/pkg/logger"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/selection"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/service"
	"github.com/Tanmoy095/VaultShip/shared/contracts"
)

// CheckoutHandler exposes the checkout service over HTTP. Every route is
// scoped to the session in the path.
type CheckoutHandler struct {
	svc *service.CheckoutService
	log *logger.Logger
}

func NewCheckoutHandler(svc *service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, log: logger.OrNop(log)}
}

type destinationRequest struct {
	Country string `json:"country" binding:"required"`
}

type selectionRequest struct {
	VaultID string             `json:"vault_id"`
	Items   []models.VaultItem `json:"items" binding:"required"`
}

type estimateRequest struct {
	VaultID     string             `json:"vault_id"`
	Country     string             `json:"country"`
	Items       []models.VaultItem `json:"items"`
	StorageCost int64              `json:"storage_cost"`
}

type estimateResponse struct {
	Estimate  models.EstimateRecord `json:"estimate"`
	Selection *selection.Totals     `json:"selection,omitempty"`
	Warning   string                `json:"warning,omitempty"`
}

type addressRequest struct {
	Address models.DeliveryAddress `json:"address"`
}

type orderRequest struct {
	VaultItemIDs []string               `json:"vault_item_ids"`
	Address      models.DeliveryAddress `json:"address"`
}

type orderResponse struct {
	MessageID string                         `json:"message_id"`
	Order     contracts.ShipmentOrderRequest `json:"order"`
}

func (h *CheckoutHandler) SetDestination(c *gin.Context) {
	var req destinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	code, err := h.svc.SetDestination(c.Request.Context(), c.Param("sessionID"), req.Country)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, gin.H{"country": code})
}

func (h *CheckoutHandler) UpdateSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	totals, err := h.svc.UpdateSelection(c.Request.Context(), c.Param("sessionID"), req.VaultID, req.Items)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, totals)
}

func (h *CheckoutHandler) Calculate(c *gin.Context) {
	var req estimateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}
	}
	calc, err := h.svc.Calculate(c.Request.Context(), c.Param("sessionID"), service.CalculateRequest{
		VaultID:     req.VaultID,
		Country:     req.Country,
		Items:       req.Items,
		StorageCost: req.StorageCost,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, estimateResponse{
		Estimate:  calc.Estimate.ToRecord(),
		Selection: &calc.Selection,
		Warning:   calc.Warning,
	})
}

func (h *CheckoutHandler) GetEstimate(c *gin.Context) {
	est, err := h.svc.CurrentEstimate(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, estimateResponse{Estimate: est.ToRecord()})
}

func (h *CheckoutHandler) DiscardEstimate(c *gin.Context) {
	if err := h.svc.DiscardEstimate(c.Request.Context(), c.Param("sessionID")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CheckoutHandler) CheckAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := h.svc.ValidateAddress(c.Request.Context(), c.Param("sessionID"), req.Address)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *CheckoutHandler) SubmitOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	res, err := h.svc.SubmitOrder(c.Request.Context(), c.Param("sessionID"), service.SubmitRequest{
		VaultItemIDs: req.VaultItemIDs,
		Address:      req.Address,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, orderResponse{MessageID: res.MessageID, Order: res.Order})
}

func (h *CheckoutHandler) fail(c *gin.Context, err error) {
	if StatusFor(err) >= http.StatusInternalServerError {
		h.log.Error("checkout request failed", "path", c.FullPath(), "session_id", c.Param("sessionID"), "error", err)
	}
	RespondError(c, err)
}

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
