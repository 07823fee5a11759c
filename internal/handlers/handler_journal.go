package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalEntrySvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalService portssvc.JournalEntrySvcFacade) *journalHandler {
	return &journalHandler{
		journalService: journalService,
	}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalEntrySvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.createJournalEntry)
		entries.POST("/record", h.recordJournalEntry)
		entries.GET("", h.listJournalEntries)
		entries.GET("/:entryID", h.getJournalEntry)
		entries.PATCH("/:entryID", h.updateJournalEntry)
		entries.POST("/:entryID/lines", h.addJournalLine)
		entries.DELETE("/:entryID/lines/:lineID", h.removeJournalLine)
		entries.POST("/:entryID/submit", h.submitJournalEntry)
		entries.POST("/:entryID/post", h.postJournalEntry)
		entries.POST("/:entryID/reverse", h.reverseJournalEntry)
		entries.POST("/:entryID/cancel", h.cancelJournalEntry)
	}
}

// createJournalEntry godoc
// @Summary Create a draft journal entry
// @Description Creates a draft with optional lines. Drafts may be unbalanced until posted.
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateJournalEntryRequest true "Journal entry"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} errorResponse "Invalid request format or line"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 409 {object} errorResponse "Reference number already in use"
// @Failure 500 {object} errorResponse "Failed to create journal entry"
// @Security BearerAuth
// @Router /journal-entries [post]
func (h *journalHandler) createJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.CreateJournalEntry(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create journal entry")
		return
	}

	logger.Info("Journal entry created", slog.String("entry_id", entry.EntryID), slog.Int("lines", len(entry.Lines)))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// recordJournalEntry godoc
// @Summary Create and post a journal entry in one step
// @Description Posts the entry immediately. Entries that require approval are submitted instead and answered with 202.
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateJournalEntryRequest true "Journal entry"
// @Success 201 {object} dto.JournalEntryResponse "Posted"
// @Success 202 {object} dto.JournalEntryResponse "Awaiting approval"
// @Failure 400 {object} errorResponse "Unbalanced or invalid entry"
// @Failure 409 {object} errorResponse "Posting not allowed or concurrent update"
// @Failure 500 {object} errorResponse "Failed to record journal entry"
// @Security BearerAuth
// @Router /journal-entries/record [post]
func (h *journalHandler) recordJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.RecordJournalEntry(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to record journal entry")
		return
	}

	status := http.StatusCreated
	if entry.Status == domain.EntryPendingApproval {
		status = http.StatusAccepted
	}
	logger.Info("Journal entry recorded", slog.String("entry_id", entry.EntryID), slog.String("status", string(entry.Status)))
	c.JSON(status, dto.ToJournalEntryResponse(entry))
}

// getJournalEntry godoc
// @Summary Get a journal entry
// @Tags journal-entries
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} errorResponse "Journal entry not found"
// @Security BearerAuth
// @Router /journal-entries/{entryID} [get]
func (h *journalHandler) getJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", c.Param("entryID")))

	entry, err := h.journalService.GetJournalEntry(c.Request.Context(), c.Param("entryID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listJournalEntries godoc
// @Summary List journal entries
// @Description Lists entries newest first using token-based pagination.
// @Tags journal-entries
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Param   status query string false "Entry status"
// @Param   entryType query string false "Entry type"
// @Param   fiscalPeriodID query string false "Fiscal period ID"
// @Param   accountID query string false "Only entries touching this account"
// @Param   from query string false "Earliest entry date (YYYY-MM-DD)"
// @Param   to query string false "Latest entry date (YYYY-MM-DD)"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Failure 400 {object} errorResponse "Invalid query parameters"
// @Security BearerAuth
// @Router /journal-entries [get]
func (h *journalHandler) listJournalEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, "query parameters", err)
		return
	}

	entries, nextToken, err := h.journalService.ListJournalEntries(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list journal entries")
		return
	}

	logger.Debug("Journal entries listed", slog.Int("count", len(entries)), slog.Bool("has_more", nextToken != nil))
	c.JSON(http.StatusOK, dto.ListJournalEntriesResponse{
		Entries:   dto.ToJournalEntryResponses(entries),
		NextToken: nextToken,
	})
}

// updateJournalEntry godoc
// @Summary Update the header of a draft
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Param   entry body dto.UpdateJournalEntryRequest true "Fields to change"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 409 {object} errorResponse "Entry is no longer a draft"
// @Security BearerAuth
// @Router /journal-entries/{entryID} [patch]
func (h *journalHandler) updateJournalEntry(c *gin.Context) {
	entryID := c.Param("entryID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", entryID))

	var req dto.UpdateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.UpdateJournalEntry(c.Request.Context(), entryID, req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to update journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// addJournalLine godoc
// @Summary Add a line to a draft
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Param   line body dto.JournalLineRequest true "Debit or credit line"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} errorResponse "Invalid amount, currency or account"
// @Failure 409 {object} errorResponse "Entry is no longer a draft"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/lines [post]
func (h *journalHandler) addJournalLine(c *gin.Context) {
	entryID := c.Param("entryID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", entryID))

	var req dto.JournalLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.AddJournalLine(c.Request.Context(), entryID, req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to add journal line")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// removeJournalLine godoc
// @Summary Remove a line from a draft
// @Tags journal-entries
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Param   lineID path string true "Line ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} errorResponse "Entry or line not found"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/lines/{lineID} [delete]
func (h *journalHandler) removeJournalLine(c *gin.Context) {
	entryID := c.Param("entryID")
	lineID := c.Param("lineID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", entryID), slog.String("line_id", lineID))
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.RemoveJournalLine(c.Request.Context(), entryID, lineID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to remove journal line")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// lifecycle runs a status change that only needs the entry id and the actor.
func (h *journalHandler) lifecycle(c *gin.Context, op string, change func(ctx context.Context, entryID, actor string) (*domain.JournalEntry, error)) {
	entryID := c.Param("entryID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", entryID))
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	entry, err := change(c.Request.Context(), entryID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to "+op+" journal entry")
		return
	}

	logger.Info("Journal entry status changed", slog.String("operation", op), slog.String("status", string(entry.Status)))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// submitJournalEntry godoc
// @Summary Submit a draft for approval
// @Description Drafts that do not require approval stay drafts.
// @Tags journal-entries
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} errorResponse "Entry is not balanced"
// @Failure 409 {object} errorResponse "Entry is not a draft"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/submit [post]
func (h *journalHandler) submitJournalEntry(c *gin.Context) {
	h.lifecycle(c, "submit", h.journalService.SubmitJournalEntry)
}

// postJournalEntry godoc
// @Summary Post a journal entry
// @Description Validates the entry, applies it to account balances and the fiscal period totals in one transaction.
// @Tags journal-entries
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} errorResponse "Entry is not balanced"
// @Failure 409 {object} errorResponse "Posting not allowed or concurrent update"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/post [post]
func (h *journalHandler) postJournalEntry(c *gin.Context) {
	h.lifecycle(c, "post", h.journalService.PostJournalEntry)
}

// cancelJournalEntry godoc
// @Summary Cancel an unposted journal entry
// @Tags journal-entries
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 409 {object} errorResponse "Entry was already posted"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/cancel [post]
func (h *journalHandler) cancelJournalEntry(c *gin.Context) {
	h.lifecycle(c, "cancel", h.journalService.CancelJournalEntry)
}

// reverseJournalEntry godoc
// @Summary Reverse a posted journal entry
// @Description Posts a mirror entry with sides swapped and marks the original as reversed.
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Param   reversal body dto.ReverseJournalEntryRequest true "Reversal reason"
// @Success 201 {object} dto.ReverseJournalEntryResponse
// @Failure 400 {object} errorResponse "Reason missing"
// @Failure 409 {object} errorResponse "Entry cannot be reversed"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/reverse [post]
func (h *journalHandler) reverseJournalEntry(c *gin.Context) {
	entryID := c.Param("entryID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", entryID))

	var req dto.ReverseJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	original, reversal, err := h.journalService.ReverseJournalEntry(c.Request.Context(), entryID, req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to reverse journal entry")
		return
	}

	logger.Info("Journal entry reversed", slog.String("reversal_id", reversal.EntryID))
	c.JSON(http.StatusCreated, dto.ReverseJournalEntryResponse{
		Original: dto.ToJournalEntryResponse(original),
		Reversal: dto.ToJournalEntryResponse(reversal),
	})
}
