package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	ledgerQuery    portssvc.LedgerQuerySvc
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade, lq portssvc.LedgerQuerySvc) *accountHandler {
	return &accountHandler{
		accountService: as,
		ledgerQuery:    lq,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, ledgerQuery portssvc.LedgerQuerySvc) {
	h := newAccountHandler(accountService, ledgerQuery)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.GET("/by-code/:code", h.getAccountByCode)
		accounts.POST("/:id/activate", h.activateAccount)
		accounts.POST("/:id/deactivate", h.deactivateAccount)
		accounts.POST("/:id/close", h.closeAccount)
		accounts.PUT("/:id/parent", h.reparentAccount)
		accounts.GET("/:id/balance", h.getAccountBalance)
		accounts.GET("/:id/ledger", h.getGeneralLedger)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Adds an account to the chart of accounts. The code must fall in the range of the account type.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} errorResponse "Invalid input format or validation error"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 409 {object} errorResponse "Account code already in use"
// @Failure 500 {object} errorResponse "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create account", slog.String("code", req.Code), slog.String("account_type", string(req.AccountType)))

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} errorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("id")))

	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountByCode godoc
// @Summary Get an account by its chart code
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} errorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/by-code/{code} [get]
func (h *accountHandler) getAccountByCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("code", c.Param("code")))

	account, err := h.accountService.GetAccountByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists accounts ordered by code, optionally filtered by category, type, status or parent.
// @Tags accounts
// @Produce  json
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Param   category query string false "ASSET, LIABILITY, EQUITY, REVENUE or EXPENSE"
// @Param   accountType query string false "Account type"
// @Param   status query string false "ACTIVE, INACTIVE or CLOSED"
// @Param   parentAccountID query string false "Parent account ID"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} errorResponse "Invalid query parameters"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, "query parameters", err)
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list accounts")
		return
	}

	logger.Debug("Accounts listed successfully", slog.Int("count", len(accounts)))
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// transition runs one of the account status changes.
func (h *accountHandler) transition(c *gin.Context, op string, change func(ctx context.Context, accountID, actor string) (*domain.Account, error)) {
	accountID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", accountID))
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	account, err := change(c.Request.Context(), accountID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to "+op+" account")
		return
	}

	logger.Info("Account status changed", slog.String("operation", op), slog.String("status", string(account.Status)))
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// activateAccount godoc
// @Summary Activate an inactive account
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 409 {object} errorResponse "Illegal status transition"
// @Security BearerAuth
// @Router /accounts/{id}/activate [post]
func (h *accountHandler) activateAccount(c *gin.Context) {
	h.transition(c, "activate", h.accountService.ActivateAccount)
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Inactive accounts keep their balance but reject new postings.
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 409 {object} errorResponse "Illegal status transition"
// @Security BearerAuth
// @Router /accounts/{id}/deactivate [post]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	h.transition(c, "deactivate", h.accountService.DeactivateAccount)
}

// closeAccount godoc
// @Summary Close an account
// @Description Closing is permanent and requires a zero balance.
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 409 {object} errorResponse "Account has a balance or is already closed"
// @Security BearerAuth
// @Router /accounts/{id}/close [post]
func (h *accountHandler) closeAccount(c *gin.Context) {
	h.transition(c, "close", h.accountService.CloseAccount)
}

// reparentAccount godoc
// @Summary Move an account in the hierarchy
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   parent body dto.ReparentAccountRequest true "New parent, null to detach"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} errorResponse "Cycle or invalid parent"
// @Security BearerAuth
// @Router /accounts/{id}/parent [put]
func (h *accountHandler) reparentAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("id")))
	var req dto.ReparentAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, "request format", err)
		return
	}
	actor, ok := actorFrom(c, logger)
	if !ok {
		return
	}

	account, err := h.accountService.ReparentAccount(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to move account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountBalance godoc
// @Summary Get the balance of an account
// @Description Derives the balance from posted lines dated on or before asOf.
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   asOf query string false "Balance date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 404 {object} errorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id}/balance [get]
func (h *accountHandler) getAccountBalance(c *gin.Context) {
	accountID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", accountID))

	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, "query parameters", err)
		return
	}
	asOf := asOfOrToday(params.AsOf)

	balance, err := h.accountService.GetAccountBalance(c.Request.Context(), accountID, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to calculate account balance")
		return
	}
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{
		AccountID: accountID,
		AsOf:      asOf.Format(time.DateOnly),
		Balance:   balance,
	})
}

// getGeneralLedger godoc
// @Summary Get the general ledger of an account
// @Description Lists postings between from and to with opening, running and closing balances.
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   from query string true "Start date (YYYY-MM-DD)"
// @Param   to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.GeneralLedgerResponse
// @Failure 400 {object} errorResponse "Invalid date range"
// @Failure 404 {object} errorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id}/ledger [get]
func (h *accountHandler) getGeneralLedger(c *gin.Context) {
	accountID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", accountID))

	var params dto.DateRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, "query parameters", err)
		return
	}

	gl, err := h.ledgerQuery.GeneralLedger(c.Request.Context(), accountID, params.From, params.To)
	if err != nil {
		respondError(c, logger, err, "Failed to build general ledger")
		return
	}
	c.JSON(http.StatusOK, dto.ToGeneralLedgerResponse(gl))
}
