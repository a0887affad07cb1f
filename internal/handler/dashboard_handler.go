package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-console/internal/models"
	"github.com/noah-isme/school-admin-console/internal/service"
	"github.com/noah-isme/school-admin-console/pkg/response"
)

type dashboardService interface {
	Load(ctx context.Context) (*models.DashboardView, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Show godoc
// @Summary Dashboard view
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Show(c *gin.Context) {
	view, err := h.service.Load(c.Request.Context())
	if err != nil {
		response.ErrorWithData(c, err, view, service.DashboardFailureMessage)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
