package services_test

import (
	"testing"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/stretchr/testify/suite"
)

type ReportingServiceTestSuite struct {
	ledgerSuite
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.ledgerSuite.SetupTest()
	suite.record(march(1), suite.cash, suite.capital, "1000.00")
	suite.record(march(5), suite.cash, suite.sales, "300.00")
	suite.record(march(10), suite.rent, suite.cash, "120.00")
}

func (suite *ReportingServiceTestSuite) TestIncomeStatement() {
	statements, err := suite.svc.Reporting.IncomeStatement(suite.ctx, march(1), march(31))
	suite.Require().NoError(err)
	suite.Require().Len(statements, 1)
	is := statements[0]
	suite.Equal("USD", is.Currency)
	suite.Equal("300", is.TotalRevenue.String())
	suite.Equal("120", is.TotalExpenses.String())
	suite.Equal("180", is.NetIncome.String())

	partial, err := suite.svc.Reporting.IncomeStatement(suite.ctx, march(6), march(31))
	suite.Require().NoError(err)
	suite.Require().Len(partial, 1)
	suite.True(partial[0].TotalRevenue.IsZero(), "the sale falls before the window")
	suite.Equal("-120", partial[0].NetIncome.String())

	_, err = suite.svc.Reporting.IncomeStatement(suite.ctx, march(31), march(1))
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet() {
	sheets, err := suite.svc.Reporting.BalanceSheet(suite.ctx, march(31))
	suite.Require().NoError(err)
	suite.Require().Len(sheets, 1)
	bs := sheets[0]
	suite.Equal("1180", bs.TotalAssets.String())
	suite.Equal("180", bs.CurrentEarnings.String())
	suite.Equal("1180", bs.TotalEquity.String())
	suite.True(bs.IsBalanced())
}

func (suite *ReportingServiceTestSuite) TestTrialBalanceAndGeneralLedger() {
	tb, err := suite.svc.LedgerQuery.TrialBalance(suite.ctx, march(31))
	suite.Require().NoError(err)
	suite.Require().Len(tb.Rows, 4)
	suite.Equal("1000", tb.Rows[0].Code)
	suite.Equal("1180", tb.Rows[0].DebitBalance.String())
	suite.Require().Len(tb.Totals, 1)
	suite.Equal("1420", tb.Totals[0].DebitTotal.String())
	suite.True(tb.IsBalanced())

	gl, err := suite.svc.LedgerQuery.GeneralLedger(suite.ctx, suite.cash.AccountID, march(3), march(31))
	suite.Require().NoError(err)
	suite.Equal("1000.00 USD", gl.OpeningBalance.String())
	suite.Require().Len(gl.Postings, 2)
	suite.Equal("1300.00 USD", gl.Postings[0].RunningBalance.String())
	suite.Equal("1180.00 USD", gl.ClosingBalance.String())

	_, err = suite.svc.LedgerQuery.GeneralLedger(suite.ctx, suite.cash.AccountID, march(31), march(3))
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.svc.LedgerQuery.GeneralLedger(suite.ctx, "missing", march(3), march(31))
	suite.ErrorIs(err, apperrors.ErrUnknownAccount)

	bal, err := suite.svc.LedgerQuery.AccountBalance(suite.ctx, suite.sales.AccountID, march(4))
	suite.Require().NoError(err)
	suite.True(bal.IsZero())
}
