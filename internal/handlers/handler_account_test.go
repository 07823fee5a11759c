package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AccountHandlerTestSuite struct {
	apiSuite
}

func (s *AccountHandlerTestSuite) newAccount(id, code string, accountType domain.AccountType) *domain.Account {
	acc, err := domain.NewAccount(domain.NewAccountParams{
		AccountID:    id,
		Code:         code,
		Name:         string(accountType),
		AccountType:  accountType,
		CurrencyCode: "USD",
		Actor:        testActor,
		Now:          testNow,
	}, nil)
	s.Require().NoError(err)
	return &acc
}

func (s *AccountHandlerTestSuite) TestCreateAccount_Success() {
	req := dto.CreateAccountRequest{
		Code:                "1000",
		Name:                "Cash",
		AccountType:         domain.Cash,
		CurrencyCode:        "USD",
		AllowsDirectPosting: true,
	}
	s.accounts.On("CreateAccount", mock.Anything, req, testActor).
		Return(s.newAccount("acc-1", "1000", domain.Cash), nil).Once()

	w := s.do(http.MethodPost, "/accounts", req)

	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	body := s.decode(w)
	s.Equal("acc-1", body["accountID"])
	s.Equal("ACTIVE", body["status"])
}

func (s *AccountHandlerTestSuite) TestCreateAccount_InvalidBody() {
	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing name", body: map[string]any{"code": "1000", "accountType": "CASH", "currencyCode": "USD"}},
		{name: "malformed code", body: map[string]any{"code": "10A0", "name": "Cash", "accountType": "CASH", "currencyCode": "USD"}},
		{name: "unknown type", body: map[string]any{"code": "1000", "name": "Cash", "accountType": "GOLD", "currencyCode": "USD"}},
		{name: "lowercase currency", body: map[string]any{"code": "1000", "name": "Cash", "accountType": "CASH", "currencyCode": "usd"}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/accounts", tt.body)
			s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	s.accounts.AssertNotCalled(s.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AccountHandlerTestSuite) TestCreateAccount_DomainErrors() {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "code out of range", err: fmt.Errorf("%w: 4000 for CASH", apperrors.ErrInvalidAccountCode), wantStatus: http.StatusBadRequest, wantCode: "INVALID_ACCOUNT_CODE"},
		{name: "duplicate code", err: fmt.Errorf("account code 1000: %w", apperrors.ErrDuplicate), wantStatus: http.StatusConflict},
		{name: "unknown parent", err: apperrors.ErrUnknownAccount, wantStatus: http.StatusNotFound, wantCode: "UNKNOWN_ACCOUNT"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.accounts.On("CreateAccount", mock.Anything, mock.Anything, testActor).Return(nil, tt.err).Once()

			w := s.do(http.MethodPost, "/accounts", dto.CreateAccountRequest{
				Code: "1000", Name: "Cash", AccountType: domain.Cash, CurrencyCode: "USD",
			})

			s.Equal(tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				s.Equal(tt.wantCode, s.decode(w)["code"])
			}
		})
	}
}

func (s *AccountHandlerTestSuite) TestCreateAccount_InternalErrorHidesDetail() {
	s.accounts.On("CreateAccount", mock.Anything, mock.Anything, testActor).
		Return(nil, fmt.Errorf("connection reset by peer")).Once()

	w := s.do(http.MethodPost, "/accounts", dto.CreateAccountRequest{
		Code: "1000", Name: "Cash", AccountType: domain.Cash, CurrencyCode: "USD",
	})

	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal("Failed to create account", s.decode(w)["error"])
}

func (s *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	s.accounts.On("GetAccountByID", mock.Anything, "missing").Return(nil, apperrors.ErrUnknownAccount).Once()

	w := s.do(http.MethodGet, "/accounts/missing", nil)

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("UNKNOWN_ACCOUNT", s.decode(w)["code"])
}

func (s *AccountHandlerTestSuite) TestGetAccountByCode() {
	s.accounts.On("GetAccountByCode", mock.Anything, "4000").
		Return(s.newAccount("sales", "4000", domain.SalesRevenue), nil).Once()

	w := s.do(http.MethodGet, "/accounts/by-code/4000", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("sales", s.decode(w)["accountID"])
}

func (s *AccountHandlerTestSuite) TestListAccounts_BindsFilters() {
	s.accounts.On("ListAccounts", mock.Anything, mock.MatchedBy(func(p dto.ListAccountsParams) bool {
		return p.Limit == 50 && p.Offset == 10 && p.Category == "ASSET" && p.Status == "ACTIVE"
	})).Return([]domain.Account{*s.newAccount("cash", "1000", domain.Cash)}, nil).Once()

	w := s.do(http.MethodGet, "/accounts?limit=50&offset=10&category=ASSET&status=ACTIVE", nil)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	accounts, ok := s.decode(w)["accounts"].([]any)
	s.Require().True(ok)
	s.Len(accounts, 1)

	w = s.do(http.MethodGet, "/accounts?category=GOLD", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *AccountHandlerTestSuite) TestCloseAccount_WithBalanceConflicts() {
	s.accounts.On("CloseAccount", mock.Anything, "cash", testActor).Return(nil, apperrors.ErrAccountHasBalance).Once()

	w := s.do(http.MethodPost, "/accounts/cash/close", nil)

	s.Equal(http.StatusConflict, w.Code)
	body := s.decode(w)
	s.Equal("ACCOUNT_HAS_BALANCE", body["code"])
	s.Nil(body["retryable"])
}

func (s *AccountHandlerTestSuite) TestDeactivateAccount() {
	acc := s.newAccount("cash", "1000", domain.Cash)
	inactive, err := acc.Deactivate(testActor, testNow)
	s.Require().NoError(err)
	s.accounts.On("DeactivateAccount", mock.Anything, "cash", testActor).Return(&inactive, nil).Once()

	w := s.do(http.MethodPost, "/accounts/cash/deactivate", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("INACTIVE", s.decode(w)["status"])
}

func (s *AccountHandlerTestSuite) TestReparentAccount_Cycle() {
	parent := "leaf"
	req := dto.ReparentAccountRequest{ParentAccountID: &parent}
	s.accounts.On("ReparentAccount", mock.Anything, "root", req, testActor).Return(nil, apperrors.ErrCyclicHierarchy).Once()

	w := s.do(http.MethodPut, "/accounts/root/parent", req)

	s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
	s.Equal("CYCLIC_HIERARCHY", s.decode(w)["code"])
}

func (s *AccountHandlerTestSuite) TestGetAccountBalance_AsOf() {
	s.accounts.On("GetAccountBalance", mock.Anything, "cash", onDate("2024-03-31")).
		Return(domain.MustMoney("1180.00", "USD"), nil).Once()

	w := s.do(http.MethodGet, "/accounts/cash/balance?asOf=2024-03-31", nil)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	body := s.decode(w)
	s.Equal("cash", body["accountID"])
	s.Equal("2024-03-31", body["asOf"])
	s.NotNil(body["balance"])
}

func (s *AccountHandlerTestSuite) TestGetGeneralLedger() {
	gl := &domain.GeneralLedger{
		AccountID:      "cash",
		OpeningBalance: domain.MustMoney("1000.00", "USD"),
		TotalDebits:    domain.Zero("USD"),
		TotalCredits:   domain.Zero("USD"),
		ClosingBalance: domain.MustMoney("1000.00", "USD"),
	}
	s.ledger.On("GeneralLedger", mock.Anything, "cash", onDate("2024-03-01"), onDate("2024-03-31")).Return(gl, nil).Once()

	w := s.do(http.MethodGet, "/accounts/cash/ledger?from=2024-03-01&to=2024-03-31", nil)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	body := s.decode(w)
	s.Equal(float64(0), body["postingCount"])

	w = s.do(http.MethodGet, "/accounts/cash/ledger?from=2024-03-01", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *AccountHandlerTestSuite) TestRejectsMissingToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
