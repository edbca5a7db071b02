package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/http/response"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/services"
)

type ReportHandler struct {
	reports services.ReportService
}

func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type reportSummary struct {
	ID          uuid.UUID          `json:"uuid"`
	RequestDate time.Time          `json:"requestDate"`
	Status      types.ReportStatus `json:"status"`
}

func summarize(r *types.Report) reportSummary {
	return reportSummary{ID: r.ID, RequestDate: r.RequestDate, Status: r.Status}
}

// POST /api/reports/request
func (h *ReportHandler) RequestReport(c *gin.Context) {
	report, err := h.reports.RequestReport(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Header("Location", "/api/reports/"+report.ID.String())
	c.JSON(http.StatusAccepted, summarize(report))
}

// GET /api/reports
func (h *ReportHandler) ListReports(c *gin.Context) {
	list, err := h.reports.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	out := make([]reportSummary, 0, len(list))
	for _, r := range list {
		out = append(out, summarize(r))
	}
	response.RespondOK(c, out)
}

// GET /api/reports/:id
func (h *ReportHandler) GetReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_report_id", err)
		return
	}
	report, err := h.reports.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, report)
}
