package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stackflow-labs/eligibility-engine/internal/api/middleware"
	"github.com/stackflow-labs/eligibility-engine/internal/domain"
	"github.com/stackflow-labs/eligibility-engine/internal/eligibility"
)

// maxBatchAddresses bounds one eligibility request
const maxBatchAddresses = 100

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// CheckEligibility computes consolidated eligibility for a batch of addresses
	// POST /api/v1/eligibility
	CheckEligibility(c *gin.Context)

	// RefreshLockers resolves lockers for ledger records missing one
	// POST /api/v1/recipients/refresh-lockers
	RefreshLockers(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	engine eligibility.Engine
}

// NewHandler creates a new REST API handler
func NewHandler(engine eligibility.Engine) Handler {
	return &handler{
		engine: engine,
	}
}

// eligibilityRequest is the request body for CheckEligibility
type eligibilityRequest struct {
	Addresses []string `json:"addresses"`
}

// eligibilityResponse wraps the consolidated eligibility records
type eligibilityResponse struct {
	Results []domain.AddressEligibility `json:"results"`
}

// CheckEligibility computes consolidated eligibility for a batch of addresses
func (h *handler) CheckEligibility(c *gin.Context) {
	var request eligibilityRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if len(request.Addresses) == 0 {
		respondValidationError(c, "addresses must not be empty")
		return
	}
	if len(request.Addresses) > maxBatchAddresses {
		respondValidationError(c, "too many addresses in one request")
		return
	}
	for _, address := range request.Addresses {
		if !domain.ValidAddress(address) {
			respondValidationError(c, "invalid address: "+address)
			return
		}
	}

	caller := c.GetString(string(middleware.AUTH_SUBJECT_KEY))
	if caller == "" {
		caller = "api"
	}

	results, err := h.engine.CheckEligibility(c.Request.Context(), request.Addresses, caller)
	if err != nil {
		respondServiceError(c, err, "Eligibility is temporarily unavailable",
			zap.Int("addresses", len(request.Addresses)))
		return
	}

	c.JSON(http.StatusOK, eligibilityResponse{Results: results})
}

// RefreshLockers resolves lockers for ledger records missing one
func (h *handler) RefreshLockers(c *gin.Context) {
	updated, err := h.engine.RefreshLockers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Locker refresh failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
