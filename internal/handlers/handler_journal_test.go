package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type JournalHandlerTestSuite struct {
	apiSuite
}

func (s *JournalHandlerTestSuite) draft(id string, requiresApproval bool) domain.JournalEntry {
	e, err := domain.NewJournalEntry(domain.NewJournalEntryParams{
		EntryID:          id,
		ReferenceNumber:  "JE-" + id,
		EntryDate:        time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		Description:      "office rent",
		RequiresApproval: requiresApproval,
		Actor:            testActor,
		Now:              testNow,
	})
	s.Require().NoError(err)
	return e
}

func (s *JournalHandlerTestSuite) recordRequest() dto.CreateJournalEntryRequest {
	return dto.CreateJournalEntryRequest{
		EntryDate:   time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		Description: "office rent",
		Lines: []dto.JournalLineRequest{
			{AccountID: "rent", Amount: decimal.RequireFromString("120.00"), Side: domain.Debit},
			{AccountID: "cash", Amount: decimal.RequireFromString("120.00"), Side: domain.Credit},
		},
	}
}

func (s *JournalHandlerTestSuite) TestCreateJournalEntry() {
	e := s.draft("e1", false)
	s.journal.On("CreateJournalEntry", mock.Anything, mock.MatchedBy(func(r dto.CreateJournalEntryRequest) bool {
		return len(r.Lines) == 2 && r.Lines[0].Side == domain.Debit
	}), testActor).Return(&e, nil).Once()

	w := s.do(http.MethodPost, "/journal-entries", s.recordRequest())

	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	body := s.decode(w)
	s.Equal("DRAFT", body["status"])
	s.Equal("2024-03-10", body["entryDate"])
}

func (s *JournalHandlerTestSuite) TestCreateJournalEntry_RejectsUnknownSide() {
	req := s.recordRequest()
	req.Lines[0].Side = "UP"

	w := s.do(http.MethodPost, "/journal-entries", req)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *JournalHandlerTestSuite) TestRecordJournalEntry_Posted() {
	posted := s.draft("e1", false)
	posted.Status = domain.EntryPosted
	s.journal.On("RecordJournalEntry", mock.Anything, mock.Anything, testActor).Return(&posted, nil).Once()

	w := s.do(http.MethodPost, "/journal-entries/record", s.recordRequest())

	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("POSTED", s.decode(w)["status"])
}

func (s *JournalHandlerTestSuite) TestRecordJournalEntry_AwaitingApproval() {
	pending := s.draft("e1", true)
	pending.Status = domain.EntryPendingApproval
	s.journal.On("RecordJournalEntry", mock.Anything, mock.Anything, testActor).Return(&pending, nil).Once()

	w := s.do(http.MethodPost, "/journal-entries/record", s.recordRequest())

	s.Equal(http.StatusAccepted, w.Code, w.Body.String())
	s.Equal("PENDING_APPROVAL", s.decode(w)["status"])
}

func (s *JournalHandlerTestSuite) TestRecordJournalEntry_Unbalanced() {
	unbalanced := &apperrors.UnbalancedError{
		Currency:   "USD",
		Scale:      2,
		Debits:     decimal.NewFromInt(120),
		Credits:    decimal.NewFromInt(100),
		Difference: decimal.NewFromInt(20),
	}
	s.journal.On("RecordJournalEntry", mock.Anything, mock.Anything, testActor).Return(nil, unbalanced).Once()

	w := s.do(http.MethodPost, "/journal-entries/record", s.recordRequest())

	s.Equal(http.StatusBadRequest, w.Code)
	body := s.decode(w)
	s.Equal("UNBALANCED", body["code"])
	s.Contains(body["error"], "difference 20.00 USD")
}

func (s *JournalHandlerTestSuite) TestPostJournalEntry_Errors() {
	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantCode      string
		wantRetryable bool
	}{
		{name: "stale version", err: fmt.Errorf("saving account cash: %w", apperrors.ErrStaleVersion), wantStatus: http.StatusConflict, wantCode: "STALE_VERSION", wantRetryable: true},
		{name: "closed period", err: apperrors.ErrPostingNotAllowed, wantStatus: http.StatusConflict, wantCode: "POSTING_NOT_ALLOWED"},
		{name: "unknown entry", err: apperrors.ErrUnknownJournalEntry, wantStatus: http.StatusNotFound, wantCode: "UNKNOWN_JOURNAL_ENTRY"},
		{name: "inactive account", err: apperrors.ErrAccountInactive, wantStatus: http.StatusConflict, wantCode: "ACCOUNT_INACTIVE"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.journal.On("PostJournalEntry", mock.Anything, "e1", testActor).Return(nil, tt.err).Once()

			w := s.do(http.MethodPost, "/journal-entries/e1/post", nil)

			s.Equal(tt.wantStatus, w.Code)
			body := s.decode(w)
			s.Equal(tt.wantCode, body["code"])
			if tt.wantRetryable {
				s.Equal(true, body["retryable"])
			} else {
				s.Nil(body["retryable"])
			}
		})
	}
}

func (s *JournalHandlerTestSuite) TestReverseJournalEntry() {
	original := s.draft("e1", false)
	original.Status = domain.EntryReversed
	original.ReversedByID = "r1"
	reversal := s.draft("r1", false)
	reversal.Status = domain.EntryPosted
	reversal.EntryType = domain.ReversingEntry
	reversal.ReversalOfID = "e1"

	req := dto.ReverseJournalEntryRequest{Reason: "keyed twice"}
	s.journal.On("ReverseJournalEntry", mock.Anything, "e1", req, testActor).Return(&original, &reversal, nil).Once()

	w := s.do(http.MethodPost, "/journal-entries/e1/reverse", req)

	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	body := s.decode(w)
	s.Equal("REVERSED", body["original"].(map[string]any)["status"])
	s.Equal("e1", body["reversal"].(map[string]any)["reversalOfID"])
}

func (s *JournalHandlerTestSuite) TestReverseJournalEntry_RequiresReason() {
	w := s.do(http.MethodPost, "/journal-entries/e1/reverse", map[string]any{})

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *JournalHandlerTestSuite) TestDraftEditing() {
	e := s.draft("e1", false)
	line := dto.JournalLineRequest{AccountID: "cash", Amount: decimal.RequireFromString("5.00"), Side: domain.Debit}
	s.journal.On("AddJournalLine", mock.Anything, "e1", mock.Anything, testActor).Return(&e, nil).Once()
	s.journal.On("RemoveJournalLine", mock.Anything, "e1", "l1", testActor).Return(&e, nil).Once()
	s.journal.On("UpdateJournalEntry", mock.Anything, "e1", mock.MatchedBy(func(r dto.UpdateJournalEntryRequest) bool {
		return r.Description != nil && *r.Description == "new text" && r.EntryDate == nil
	}), testActor).Return(&e, nil).Once()

	s.Equal(http.StatusOK, s.do(http.MethodPost, "/journal-entries/e1/lines", line).Code)
	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/journal-entries/e1/lines/l1", nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodPatch, "/journal-entries/e1", map[string]any{"description": "new text"}).Code)
}

func (s *JournalHandlerTestSuite) TestSubmitAndCancel() {
	pending := s.draft("e1", true)
	pending.Status = domain.EntryPendingApproval
	cancelled, err := pending.Cancel(testActor, testNow)
	s.Require().NoError(err)
	s.journal.On("SubmitJournalEntry", mock.Anything, "e1", testActor).Return(&pending, nil).Once()
	s.journal.On("CancelJournalEntry", mock.Anything, "e1", testActor).Return(&cancelled, nil).Once()

	w := s.do(http.MethodPost, "/journal-entries/e1/submit", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("PENDING_APPROVAL", s.decode(w)["status"])

	w = s.do(http.MethodPost, "/journal-entries/e1/cancel", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("CANCELLED", s.decode(w)["status"])
}

func (s *JournalHandlerTestSuite) TestListJournalEntries_Pagination() {
	next := "token-2"
	s.journal.On("ListJournalEntries", mock.Anything, mock.MatchedBy(func(p dto.ListJournalEntriesParams) bool {
		return p.Limit == 1 && p.Status == "POSTED" && p.AccountID == "cash" &&
			p.From != nil && p.From.Format(time.DateOnly) == "2024-03-01"
	})).Return([]domain.JournalEntry{s.draft("e1", false)}, &next, nil).Once()

	w := s.do(http.MethodGet, "/journal-entries?limit=1&status=POSTED&accountID=cash&from=2024-03-01", nil)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	body := s.decode(w)
	s.Equal("token-2", body["nextToken"])
	s.Len(body["entries"], 1)

	w = s.do(http.MethodGet, "/journal-entries?limit=0", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func TestJournalHandler(t *testing.T) {
	suite.Run(t, new(JournalHandlerTestSuite))
}
