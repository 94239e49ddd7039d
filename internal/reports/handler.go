package reports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mahmoud206/vetratech-mobile-api/internal/logger"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"
)

// ReportService is the set of report operations the HTTP layer needs
type ReportService interface {
	GenerateFullReport(ctx context.Context, req *ReportRequest) (*FullReportResponse, error)
	ExportWorkbook(ctx context.Context, req *ReportRequest) ([]byte, error)
	ExportCSV(ctx context.Context, req *ReportRequest, section string) ([]byte, error)
	Datasets() []string
}

// Handler handles HTTP requests for reporting operations
type Handler struct {
	service ReportService
	logger  *zap.Logger
}

// NewHandler creates a new reports handler
func NewHandler(service ReportService, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers reporting routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/full-report", h.generateFullReport)
	router.POST("/full-report/xlsx", h.exportWorkbook)
	router.POST("/full-report/csv", h.exportCSV)
	router.GET("/datasets", h.getDatasets)
}

// RegisterStatusRoutes registers the root status and health routes
func (h *Handler) RegisterStatusRoutes(router gin.IRoutes) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "API is running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	})
}

// generateFullReport handles POST /api/v1/full-report
func (h *Handler) generateFullReport(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	resp, err := h.service.GenerateFullReport(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "Failed to generate full report", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// exportWorkbook handles POST /api/v1/full-report/xlsx
func (h *Handler) exportWorkbook(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	data, err := h.service.ExportWorkbook(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "Failed to export workbook", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportFilename(req, "", "xlsx")))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// exportCSV handles POST /api/v1/full-report/csv?section=payments|clinic|sales
func (h *Handler) exportCSV(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	section := c.DefaultQuery("section", "payments")
	data, err := h.service.ExportCSV(c.Request.Context(), req, section)
	if err != nil {
		h.respondError(c, "Failed to export CSV", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportFilename(req, section, "csv")))
	c.Data(http.StatusOK, csvContentType, data)
}

// getDatasets handles GET /api/v1/datasets
func (h *Handler) getDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, DatasetsResponse{Datasets: h.service.Datasets()})
}

// =====================================================
// Helper Methods
// =====================================================

func (h *Handler) bindRequest(c *gin.Context) (*ReportRequest, bool) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return nil, false
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return nil, false
	}
	return &req, true
}

// respondError maps service errors to status codes without leaking internals
func (h *Handler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, ErrInvalidDataset):
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Invalid database option"})
		return
	case errors.Is(err, ErrInvalidSection):
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Invalid report section"})
		return
	}

	logger.FromGin(c, h.logger).Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Server error"})
}

func reportFilename(req *ReportRequest, section, ext string) string {
	name := "report-" + req.DBOption
	if section != "" {
		name += "-" + section
	}
	return fmt.Sprintf("%s-%s-%s.%s", name,
		req.StartDate.Format("20060102"), req.EndDate.Format("20060102"), ext)
}
