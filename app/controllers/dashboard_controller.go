package controllers

import (
	"net/http"
	"strconv"

	"github.com/licorgest/licorgest/internal/dashboard"
	"github.com/licorgest/licorgest/pkg/response"
)

// DashboardController serves the admin sales dashboard.
type DashboardController struct {
	service *dashboard.Service
}

func NewDashboardController(service *dashboard.Service) *DashboardController {
	return &DashboardController{service: service}
}

// Summary returns revenue, sales-by-day, best sellers and low-stock alerts.
// ?top= bounds the best-seller list (default 5).
func (c *DashboardController) Summary(w http.ResponseWriter, r *http.Request) {
	topN := 5
	if v, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && v > 0 {
		topN = v
	}

	summary, err := c.service.Summary(r.Context(), topN)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "dashboard unavailable")
		return
	}
	response.Success(w, summary)
}
