package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/handlers"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testActor = "controller-1"

var testNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

// apiSuite boots the full router with mocked services behind it.
type apiSuite struct {
	suite.Suite
	router    *gin.Engine
	accounts  *MockAccountService
	journal   *MockJournalService
	periods   *MockFiscalPeriodService
	ledger    *MockLedgerQueryService
	reports   *MockReportingService
	jwtSecret string
}

func (s *apiSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(dto.RegisterValidations())
}

func (s *apiSuite) SetupTest() {
	s.jwtSecret = "test-secret-key-that-is-long-enough"
	s.accounts = new(MockAccountService)
	s.journal = new(MockJournalService)
	s.periods = new(MockFiscalPeriodService)
	s.ledger = new(MockLedgerQueryService)
	s.reports = new(MockReportingService)

	cfg := &config.Config{
		IsProduction:       true,
		JWTSecret:          s.jwtSecret,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
	s.router = gin.New()
	err := handlers.RegisterRoutes(s.router, cfg, &portssvc.ServiceContainer{
		Account:      s.accounts,
		JournalEntry: s.journal,
		FiscalPeriod: s.periods,
		LedgerQuery:  s.ledger,
		Reporting:    s.reports,
	})
	s.Require().NoError(err)
}

func (s *apiSuite) TearDownTest() {
	s.accounts.AssertExpectations(s.T())
	s.journal.AssertExpectations(s.T())
	s.periods.AssertExpectations(s.T())
	s.ledger.AssertExpectations(s.T())
	s.reports.AssertExpectations(s.T())
}

// generateTestToken creates a signed JWT whose subject is the actor.
func (s *apiSuite) generateTestToken(actor string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "ledger-test",
		Subject:   actor,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		s.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

// do sends an authenticated request. A nil body sends no payload.
func (s *apiSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		s.Require().NoError(err)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+s.generateTestToken(testActor))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *apiSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// onDate matches a time on the given calendar day.
func onDate(day string) any {
	return mock.MatchedBy(func(t time.Time) bool { return t.Format(time.DateOnly) == day })
}
