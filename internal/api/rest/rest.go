package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/stackflow-labs/eligibility-engine/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Eligibility reconciliation (requires authentication)
		v1.POST("/eligibility", middleware.Auth(authCfg), handler.CheckEligibility)

		// Background locker discovery over the recipient ledger (requires authentication)
		v1.POST("/recipients/refresh-lockers", middleware.Auth(authCfg), handler.RefreshLockers)
	}
}
