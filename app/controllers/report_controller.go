package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/licorgest/licorgest/internal/reports"
	"github.com/licorgest/licorgest/pkg/response"
)

// ReportController manages the generated-report ledger.
type ReportController struct {
	service *reports.Service
}

func NewReportController(service *reports.Service) *ReportController {
	return &ReportController{service: service}
}

// List returns the ledger, newest first.
func (c *ReportController) List(w http.ResponseWriter, r *http.Request) {
	ledger, err := c.service.List()
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not read report ledger")
		return
	}
	response.Success(w, ledger)
}

// GenerateSales exports sales between ?desde= and ?hasta= (YYYY-MM-DD).
func (c *ReportController) GenerateSales(w http.ResponseWriter, r *http.Request) {
	report, err := c.service.GenerateSales(r.Context(),
		r.URL.Query().Get("desde"), r.URL.Query().Get("hasta"))
	if err != nil {
		response.Error(w, http.StatusBadGateway, "sales report generation failed")
		return
	}
	response.Created(w, report)
}

// GenerateStock exports the current stock listing.
func (c *ReportController) GenerateStock(w http.ResponseWriter, r *http.Request) {
	report, err := c.service.GenerateStock(r.Context())
	if err != nil {
		response.Error(w, http.StatusBadGateway, "stock report generation failed")
		return
	}
	response.Created(w, report)
}

// Download streams a generated CSV.
func (c *ReportController) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := reportID(w, r)
	if !ok {
		return
	}
	report, raw, err := c.service.File(id)
	if err != nil {
		response.NotFound(w)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", report.Name+".csv"))
	w.Write(raw) //nolint:errcheck
}

// Delete removes a report and its file.
func (c *ReportController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := reportID(w, r)
	if !ok {
		return
	}
	if err := c.service.Delete(id); err != nil {
		response.NotFound(w)
		return
	}
	response.Message(w, "report deleted")
}

func reportID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(w, http.StatusBadRequest, "invalid report id")
		return 0, false
	}
	return uint(id), true
}
