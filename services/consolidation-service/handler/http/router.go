package httphandler

import (
	"github.com/gin-gonic/gin"

	"github.com/Tanmoy095/VaultShip/pkg/logger"
)

// NewRouter builds the gin engine with every checkout route.
func NewRouter(h *CheckoutHandler, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.GET("/healthz", HealthCheck)

	sessions := router.Group("/v1/sessions/:sessionID")
	{
		sessions.PUT("/destination", h.SetDestination)
		sessions.PUT("/selection", h.UpdateSelection)
		sessions.POST("/estimate", h.Calculate)
		sessions.GET("/estimate", h.GetEstimate)
		sessions.DELETE("/estimate", h.DiscardEstimate)
		sessions.POST("/address-check", h.CheckAddress)
		sessions.POST("/orders", h.SubmitOrder)
	}
	return router
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	log = logger.OrNop(log)
	return func(c *gin.Context) {
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
		)
	}
}
