package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-console/internal/models"
	"github.com/noah-isme/school-admin-console/internal/service"
	appErrors "github.com/noah-isme/school-admin-console/pkg/errors"
	"github.com/noah-isme/school-admin-console/pkg/response"
)

const reportFailedNotice = "Failed to load report!"

type reportService interface {
	Display(ctx context.Context, req service.ReportRequest) (*models.DisplayReport, error)
	PDF(ctx context.Context, req service.ReportRequest) (*service.ReportFile, error)
}

// ReportHandler exposes report card endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// RegisterRoutes mounts the report routes.
func (h *ReportHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/reports", h.Query)
	group.GET("/reports/:studentId/:term/:year", h.Display)
	group.GET("/reports/:studentId/:term/:year/pdf", h.PDF)
}

// Query godoc
// @Summary Student report card selected by query parameters
// @Tags Reports
// @Produce json
// @Param student_id query string true "Student ID"
// @Param term query string true "Term"
// @Param year query string true "Year"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) Query(c *gin.Context) {
	h.display(c, service.ReportRequest{
		StudentID: c.Query("student_id"),
		Term:      c.Query("term"),
		Year:      c.Query("year"),
	})
}

// Display godoc
// @Summary Student report card
// @Tags Reports
// @Produce json
// @Param studentId path string true "Student ID"
// @Param term path string true "Term"
// @Param year path string true "Year"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /reports/{studentId}/{term}/{year} [get]
func (h *ReportHandler) Display(c *gin.Context) {
	h.display(c, pathReportRequest(c))
}

// PDF godoc
// @Summary Download a student report card as PDF
// @Tags Reports
// @Produce application/pdf
// @Param studentId path string true "Student ID"
// @Param term path string true "Term"
// @Param year path string true "Year"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /reports/{studentId}/{term}/{year}/pdf [get]
func (h *ReportHandler) PDF(c *gin.Context) {
	file, err := h.reports.PDF(c.Request.Context(), pathReportRequest(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Attachment(c, "application/pdf", file.Name, file.Content)
}

func (h *ReportHandler) display(c *gin.Context, req service.ReportRequest) {
	report, err := h.reports.Display(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

func (h *ReportHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, appErrors.ErrValidation) {
		response.ErrorWithNotice(c, err, service.ValidationNotice().Message)
		return
	}
	response.ErrorWithNotice(c, err, reportFailedNotice)
}

func pathReportRequest(c *gin.Context) service.ReportRequest {
	return service.ReportRequest{
		StudentID: c.Param("studentId"),
		Term:      c.Param("term"),
		Year:      c.Param("year"),
	}
}
