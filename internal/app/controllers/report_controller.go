package controllers

import (
	"fmt"
	"net/http"
	"time"

	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/error/code"
	"strata-portal/internal/error/response"
	"strata-portal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ReportController produces downloadable reports
type ReportController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewReportController creates a report controller
func NewReportController(ctx *gin.Context, container *container.ServiceContainer) *ReportController {
	return &ReportController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleReportFunc returns a gin handler dispatching to the named report method
func HandleReportFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewReportController(ctx, container)

		switch method {
		case "financial":
			controller.Financial()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
		}
	}
}

// reportPeriod reads from/to, defaulting to the current month up to today
func (c *ReportController) reportPeriod(now time.Time) (services.ReportPeriod, bool) {
	period := services.ReportPeriod{
		From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}

	if raw := c.Ctx.Query("from"); raw != "" {
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			response.FailWithMessage(c.Ctx, code.ErrReportPeriod, "from must be YYYY-MM-DD", nil)
			return period, false
		}
		period.From = t
	}
	if raw := c.Ctx.Query("to"); raw != "" {
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			response.FailWithMessage(c.Ctx, code.ErrReportPeriod, "to must be YYYY-MM-DD", nil)
			return period, false
		}
		period.To = t
	}

	buildingID, ok := queryUint(c.Ctx, "building_id")
	if !ok {
		return period, false
	}
	period.BuildingID = buildingID
	return period, true
}

// 1. Financial renders the levy summary for a period
// @Summary      Financial report
// @Description  Levied, collected, outstanding and overdue totals with a per-fund breakdown and the ledger
// @Tags         Report
// @Produce      application/pdf
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      json
// @Security     BearerAuth
// @Param        from         query  string  false  "YYYY-MM-DD, default first of this month"
// @Param        to           query  string  false  "YYYY-MM-DD, default today"
// @Param        building_id  query  int     false  "building"
// @Param        format       query  string  false  "pdf (default), xlsx or json"
// @Success      200  {file}  file
// @Failure      400  {object}  ErrorResponse
// @Router       /reports/financial [get]
func (c *ReportController) Financial() {
	format := c.Ctx.DefaultQuery("format", services.ReportFormatPDF)
	if format != services.ReportFormatPDF && format != services.ReportFormatXLSX && format != "json" {
		response.ParamError(c.Ctx, "format must be pdf, xlsx or json")
		return
	}

	period, ok := c.reportPeriod(time.Now().UTC())
	if !ok {
		return
	}

	reportService := c.Container.GetService("report").(services.InterfaceReportService)
	summary, err := reportService.BuildFinancialSummary(c.Ctx.Request.Context(), period)
	if err != nil {
		handleServiceError(c.Ctx, err)
		return
	}

	if format == "json" {
		response.Success(c.Ctx, summary)
		return
	}

	body, contentType, err := reportService.Render(summary, format)
	if err != nil {
		logger.Error("render %s report: %v", format, err)
		response.Fail(c.Ctx, code.ErrReportGeneration, nil)
		return
	}

	filename := fmt.Sprintf("financial-report-%s-%s.%s",
		period.From.Format("20060102"), period.To.Format("20060102"), format)
	c.Ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Ctx.Data(http.StatusOK, contentType, body)
}
