package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/arrendando-api/internal/services"
	"github.com/sjperalta/arrendando-api/pkg/finance"
)

type ReportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
	now           func() time.Time
}

func NewReportHandler(reportService *services.ReportService, exportService *services.ExportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		exportService: exportService,
		now:           time.Now,
	}
}

// intQuery reads an integer query parameter, falling back to def when absent
func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("el parámetro %s debe ser un número", name)
	}
	return v, nil
}

// dateRange reads fechaInicio and fechaFin, defaulting to the current year to date
func (h *ReportHandler) dateRange(c *gin.Context) (finance.Date, finance.Date, error) {
	from, to := h.reportService.DefaultComparisonRange()
	if raw := strings.TrimSpace(c.Query("fechaInicio")); raw != "" {
		d, err := finance.ParseDate(raw)
		if err != nil {
			return from, to, fmt.Errorf("fechaInicio: %w", err)
		}
		from = d
	}
	if raw := strings.TrimSpace(c.Query("fechaFin")); raw != "" {
		d, err := finance.ParseDate(raw)
		if err != nil {
			return from, to, fmt.Errorf("fechaFin: %w", err)
		}
		to = d
	}
	return from, to, nil
}

// @Summary Monthly Income
// @Description Expected versus collected income of one month
// @Tags Reports
// @Produce json
// @Param year query int false "Year (default current)"
// @Param month query int false "Month 1-12 (default current)"
// @Success 200 {object} finance.MonthlyIncome
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /reports/income/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	now := h.now()
	year, err := intQuery(c, "year", now.Year())
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	month, err := intQuery(c, "month", int(now.Month()))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	report, err := h.reportService.Monthly(c.Request.Context(), year, time.Month(month))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Annual Income
// @Description Twelve monthly income records plus the yearly totals
// @Tags Reports
// @Produce json
// @Param year query int false "Year (default current)"
// @Success 200 {object} finance.AnnualIncome
// @Security BearerAuth
// @Router /reports/income/annual [get]
func (h *ReportHandler) Annual(c *gin.Context) {
	year, err := intQuery(c, "year", h.now().Year())
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	report, err := h.reportService.Annual(c.Request.Context(), year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Income Comparison
// @Description Distribution by estado and collected percentage between two dates, inclusive
// @Tags Reports
// @Produce json
// @Param fechaInicio query string false "Start date (default January 1st)"
// @Param fechaFin query string false "End date (default today)"
// @Success 200 {object} finance.Comparison
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /reports/income/comparison [get]
func (h *ReportHandler) Comparison(c *gin.Context) {
	from, to, err := h.dateRange(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	report, err := h.reportService.Comparison(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Export Annual Income
// @Description Download the annual report as xlsx, pdf or csv
// @Tags Reports
// @Produce application/octet-stream
// @Param year query int false "Year (default current)"
// @Param format query string false "xlsx (default), pdf or csv"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /reports/income/annual/export [get]
func (h *ReportHandler) ExportAnnual(c *gin.Context) {
	format, err := services.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}
	year, err := intQuery(c, "year", h.now().Year())
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	report, err := h.reportService.Annual(c.Request.Context(), year)
	if err != nil {
		respondError(c, err)
		return
	}
	export, err := h.exportService.ExportAnnual(c.Request.Context(), report, format)
	if err != nil {
		respondError(c, err)
		return
	}
	sendExport(c, export)
}

// @Summary Export Income Comparison
// @Description Download the comparison report as xlsx, pdf or csv
// @Tags Reports
// @Produce application/octet-stream
// @Param fechaInicio query string false "Start date"
// @Param fechaFin query string false "End date"
// @Param format query string false "xlsx (default), pdf or csv"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /reports/income/comparison/export [get]
func (h *ReportHandler) ExportComparison(c *gin.Context) {
	format, err := services.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}
	from, to, err := h.dateRange(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	report, err := h.reportService.Comparison(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	export, err := h.exportService.ExportComparison(c.Request.Context(), report, format)
	if err != nil {
		respondError(c, err)
		return
	}
	sendExport(c, export)
}

func sendExport(c *gin.Context, export *services.Export) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
