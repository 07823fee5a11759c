package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// fiscalPeriodHandler handles HTTP requests related to fiscal periods.
type fiscalPeriodHandler struct {
	periodService portssvc.FiscalPeriodSvcFacade
}

func newFiscalPeriodHandler(ps portssvc.FiscalPeriodSvcFacade) *fiscalPeriodHandler {
	return &fiscalPeriodHandler{periodService: ps}
}

// registerFiscalPeriodRoutes registers routes related to fiscal periods.
func registerFiscalPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.FiscalPeriodSvcFacade) {
	h := newFiscalPeriodHandler(periodService)

	periods := rg.Group("/fiscal-periods")
	{
		periods.POST("", h.createFiscalPeriod)
		periods.POST("/years", h.createFiscalYear)
		periods.POST("/open-due", h.openDuePeriods)
		periods.GET("", h.listFiscalPeriods)
		periods.GET("/:periodID", h.getFiscalPeriod)
		periods.POST("/:periodID/open", h.openFiscalPeriod)
		periods.POST("/:periodID/soft-close", h.softCloseFiscalPeriod)
		periods.POST("/:periodID/close", h.closeFiscalPeriod)
		periods.POST("/:periodID/reopen", h.reopenFiscalPeriod)
		periods.PUT("/:periodID/restrictions", h.setPeriodRestrictions)
	}
}

// createFiscalPeriod godoc
// @Summary Create a fiscal period
// @Description Creates a single future period. Periods may not overlap.
// @Tags fiscal-periods
// @Accept  json
// @Produce  json
// @Param   period body dto.CreateFiscalPeriodRequest true "Period details"
// @Success 201 {object} dto.FiscalPeriodResponse
// @Failure 400 {object} errorResponse "Invalid dates"
// @Failure 409 {object} errorResponse "Overlaps an existing period"
// @Security BearerAuth
// @Router /fiscal-periods [post]
func (h *fiscalPeriodHandler) createFiscalPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateFiscalPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	period, err := h.periodService.CreateFiscalPeriod(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create fiscal period")
		return
	}

	logger.Info("Fiscal period created", slog.String("period_id", period.PeriodID), slog.String("name", period.Name))
	c.JSON(http.StatusCreated, dto.ToFiscalPeriodResponse(period))
}

// createFiscalYear godoc
// @Summary Create the monthly periods of a fiscal year
// @Description Generates twelve contiguous monthly periods starting on the first day of a month.
// @Tags fiscal-periods
// @Accept  json
// @Produce  json
// @Param   year body dto.CreateFiscalYearRequest true "Fiscal year"
// @Success 201 {array} dto.FiscalPeriodResponse
// @Failure 400 {object} errorResponse "Start date is not the first of a month"
// @Failure 409 {object} errorResponse "Overlaps an existing period"
// @Security BearerAuth
// @Router /fiscal-periods/years [post]
func (h *fiscalPeriodHandler) createFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateFiscalYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	periods, err := h.periodService.CreateMonthlyPeriods(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create fiscal year")
		return
	}

	logger.Info("Fiscal year created", slog.Int("fiscal_year", req.FiscalYear), slog.Int("periods", len(periods)))
	c.JSON(http.StatusCreated, dto.ToFiscalPeriodResponses(periods))
}

// getFiscalPeriod godoc
// @Summary Get a fiscal period
// @Tags fiscal-periods
// @Produce  json
// @Param   periodID path string true "Fiscal period ID"
// @Success 200 {object} dto.FiscalPeriodResponse
// @Failure 404 {object} errorResponse "Fiscal period not found"
// @Security BearerAuth
// @Router /fiscal-periods/{periodID} [get]
func (h *fiscalPeriodHandler) getFiscalPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("period_id", c.Param("periodID")))

	period, err := h.periodService.GetFiscalPeriod(c.Request.Context(), c.Param("periodID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve fiscal period")
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalPeriodResponse(period))
}

// listFiscalPeriods godoc
// @Summary List fiscal periods
// @Tags fiscal-periods
// @Produce  json
// @Param   fiscalYear query int false "Fiscal year, 0 for all"
// @Param   status query string false "FUTURE, OPEN, SOFT_CLOSED or CLOSED"
// @Success 200 {array} dto.FiscalPeriodResponse
// @Failure 400 {object} errorResponse "Invalid query parameters"
// @Security BearerAuth
// @Router /fiscal-periods [get]
func (h *fiscalPeriodHandler) listFiscalPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListFiscalPeriodsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, "query parameters", err)
		return
	}

	periods, err := h.periodService.ListFiscalPeriods(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list fiscal periods")
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalPeriodResponses(periods))
}

// openFiscalPeriod godoc
// @Summary Open a fiscal period
// @Description Opens a future period ahead of schedule. A closed period is reopened when a reason is given.
// @Tags fiscal-periods
// @Accept  json
// @Produce  json
// @Param   periodID path string true "Fiscal period ID"
// @Param   open body dto.OpenFiscalPeriodRequest false "Reason when reopening"
// @Success 200 {object} dto.FiscalPeriodResponse
// @Failure 409 {object} errorResponse "Illegal status transition"
// @Security BearerAuth
// @Router /fiscal-periods/{periodID}/open [post]
func (h *fiscalPeriodHandler) openFiscalPeriod(c *gin.Context) {
	periodID := c.Param("periodID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("period_id", periodID))

	var req dto.OpenFiscalPeriodRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, logger, "request format", err)
			return
		}
	}
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	period, err := h.periodService.OpenFiscalPeriod(c.Request.Context(), periodID, req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to open fiscal period")
		return
	}

	logger.Info("Fiscal period opened", slog.String("status", string(period.Status)))
	c.JSON(http.StatusOK, dto.ToFiscalPeriodResponse(period))
}

// softCloseFiscalPeriod godoc
// @Summary Soft-close a fiscal period
// @Description Restricts an open period to adjusting entries while the books are reviewed.
// @Tags fiscal-periods
// @Produce  json
// @Param   periodID path string true "Fiscal period ID"
// @Success 200 {object} dto.FiscalPeriodResponse
// @Failure 409 {object} errorResponse "Period is not open"
// @Security BearerAuth
// @Router /fiscal-periods/{periodID}/soft-close [post]
func (h *fiscalPeriodHandler) softCloseFiscalPeriod(c *gin.Context) {
	periodID := c.Param("periodID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("period_id", periodID))
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	period, err := h.periodService.SoftCloseFiscalPeriod(c.Request.Context(), periodID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to soft-close fiscal period")
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalPeriodResponse(period))
}

// closeFiscalPeriod godoc
// @Summary Close a fiscal period
// @Description Closes the period once its totals balance. Unposted entries are handled by the configured draft policy.
// @Tags fiscal-periods
// @Accept  json
// @Produce  json
// @Param   periodID path string true "Fiscal period ID"
// @Param   close body dto.CloseFiscalPeriodRequest false "Closing notes"
// @Success 200 {object} dto.FiscalPeriodResponse
// @Failure 409 {object} errorResponse "Unbalanced period or unposted entries"
// @Security BearerAuth
// @Router /fiscal-periods/{periodID}/close [post]
func (h *fiscalPeriodHandler) closeFiscalPeriod(c *gin.Context) {
	periodID := c.Param("periodID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("period_id", periodID))

	var req dto.CloseFiscalPeriodRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, logger, "request format", err)
			return
		}
	}
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	period, err := h.periodService.CloseFiscalPeriod(c.Request.Context(), periodID, req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to close fiscal period")
		return
	}

	logger.Info("Fiscal period closed", slog.String("name", period.Name))
	c.JSON(http.StatusOK, dto.ToFiscalPeriodResponse(period))
}

// reopenFiscalPeriod godoc
// @Summary Reopen a fiscal period
// @Tags fiscal-periods
// @Accept  json
// @Produce  json
// @Param   periodID path string true "Fiscal period ID"
// @Param   reopen body dto.ReopenFiscalPeriodRequest true "Reopen reason"
// @Success 200 {object} dto.FiscalPeriodResponse
// @Failure 400 {object} errorResponse "Reason missing"
// @Failure 409 {object} errorResponse "Period is not closed"
// @Security BearerAuth
// @Router /fiscal-periods/{periodID}/reopen [post]
func (h *fiscalPeriodHandler) reopenFiscalPeriod(c *gin.Context) {
	periodID := c.Param("periodID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("period_id", periodID))

	var req dto.ReopenFiscalPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	period, err := h.periodService.ReopenFiscalPeriod(c.Request.Context(), periodID, req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to reopen fiscal period")
		return
	}

	logger.Info("Fiscal period reopened", slog.Int("reopen_count", period.ReopenCount))
	c.JSON(http.StatusOK, dto.ToFiscalPeriodResponse(period))
}

// setPeriodRestrictions godoc
// @Summary Replace the posting restrictions of a period
// @Tags fiscal-periods
// @Accept  json
// @Produce  json
// @Param   periodID path string true "Fiscal period ID"
// @Param   restrictions body dto.SetPeriodRestrictionsRequest true "Restriction set"
// @Success 200 {object} dto.FiscalPeriodResponse
// @Failure 400 {object} errorResponse "Unknown restriction"
// @Security BearerAuth
// @Router /fiscal-periods/{periodID}/restrictions [put]
func (h *fiscalPeriodHandler) setPeriodRestrictions(c *gin.Context) {
	periodID := c.Param("periodID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("period_id", periodID))

	var req dto.SetPeriodRestrictionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	period, err := h.periodService.SetPeriodRestrictions(c.Request.Context(), periodID, req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to set period restrictions")
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalPeriodResponse(period))
}

// openDuePeriods godoc
// @Summary Open every period that has started
// @Description Runs the scheduled opening immediately. The background worker calls the same operation.
// @Tags fiscal-periods
// @Produce  json
// @Success 200 {object} dto.OpenDuePeriodsResponse
// @Failure 500 {object} errorResponse "Failed to open periods"
// @Security BearerAuth
// @Router /fiscal-periods/open-due [post]
func (h *fiscalPeriodHandler) openDuePeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := actorFrom(c, logger); !ok {
		return
	}

	today := asOfOrToday(nil)
	opened, err := h.periodService.OpenDuePeriods(c.Request.Context(), today)
	if err != nil {
		respondError(c, logger, err, "Failed to open due periods")
		return
	}

	logger.Info("Due periods opened", slog.Int("count", len(opened)), slog.String("today", today.Format(time.DateOnly)))
	c.JSON(http.StatusOK, dto.OpenDuePeriodsResponse{Opened: dto.ToFiscalPeriodResponses(opened)})
}
