package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditrepo "github.com/smallbiznis/bookkeeper/internal/audit/repository"
	auditservice "github.com/smallbiznis/bookkeeper/internal/audit/service"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/config"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	ledgerrepo "github.com/smallbiznis/bookkeeper/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/bookkeeper/internal/ledger/service"
	"github.com/smallbiznis/bookkeeper/internal/statement/domain"
	"github.com/smallbiznis/bookkeeper/internal/statement/repository"
	"github.com/smallbiznis/bookkeeper/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type statementFixture struct {
	svc       domain.Service
	ledger    ledgerdomain.Service
	orgID     snowflake.ID
	accountID snowflake.ID
	otherID   snowflake.ID
	chartID   snowflake.ID
}

func setupStatementService(t *testing.T) statementFixture {
	t.Helper()

	db := testsupport.OpenDB(t)
	node := testsupport.Node(t)
	clk := clock.NewFakeClock(time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC))
	orgID := node.Generate()

	audit := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  auditrepo.Provide(),
	})
	entries := ledgerrepo.Provide()
	ledger := ledgerservice.NewService(ledgerservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Repo:     entries,
		AuditSvc: audit,
		Settings: config.NewStaticLedgerSettings(config.DefaultLedgerSettings()),
	})

	return statementFixture{
		svc: NewService(Params{
			DB:         db,
			Log:        zap.NewNop(),
			Repo:       repository.Provide(),
			LedgerRepo: entries,
		}),
		ledger:    ledger,
		orgID:     orgID,
		accountID: testsupport.SeedAccount(t, db, node, orgID, "001"),
		otherID:   testsupport.SeedAccount(t, db, node, orgID, "002"),
		chartID:   testsupport.SeedChartAccount(t, db, node, &orgID, "1", chartdomain.Revenue),
	}
}

func (f statementFixture) post(t *testing.T, accountID snowflake.ID, day int, op ledgerdomain.Operation, amount string, confirmed bool) ledgerdomain.LedgerEntry {
	t.Helper()
	entry, err := f.ledger.Create(context.Background(), f.orgID, ledgerdomain.CreateRequest{EntryInput: ledgerdomain.EntryInput{
		IssueDate: time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
		AccountID: accountID,
		Amount:    decimal.RequireFromString(amount),
		Operation: op,
		Confirmed: confirmed,
		Splits: []ledgerdomain.SplitInput{
			{ChartAccountID: f.chartID, SplitAmount: decimal.RequireFromString(amount)},
		},
	}})
	require.NoError(t, err)
	return entry
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestStatementRunningBalance(t *testing.T) {
	f := setupStatementService(t)
	ctx := context.Background()

	f.post(t, f.accountID, 1, ledgerdomain.OperationCredit, "500", true)
	f.post(t, f.accountID, 2, ledgerdomain.OperationDebit, "200", true)
	f.post(t, f.accountID, 10, ledgerdomain.OperationCredit, "15000", true)
	f.post(t, f.accountID, 12, ledgerdomain.OperationDebit, "99.90", false)
	f.post(t, f.accountID, 14, ledgerdomain.OperationDebit, "1850.45", true)
	f.post(t, f.otherID, 11, ledgerdomain.OperationCredit, "777", true)

	from := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	stmt, err := f.svc.Statement(ctx, f.orgID, domain.StatementRequest{DateFrom: &from, DateTo: &to, AccountID: &f.accountID})
	require.NoError(t, err)

	assert.True(t, stmt.Totals.OpeningBalance.Equal(dec("300")), "opening %s", stmt.Totals.OpeningBalance)
	require.Len(t, stmt.Lines, 3)

	require.NotNil(t, stmt.Lines[0].BalanceAfter)
	assert.True(t, stmt.Lines[0].BalanceAfter.Equal(dec("15300")))
	assert.Nil(t, stmt.Lines[1].BalanceAfter)
	require.NotNil(t, stmt.Lines[2].BalanceAfter)
	assert.True(t, stmt.Lines[2].BalanceAfter.Equal(dec("13449.55")))

	assert.True(t, stmt.Totals.TotalInputs.Equal(dec("15000")))
	assert.True(t, stmt.Totals.TotalOutputs.Equal(dec("1850.45")))
	assert.True(t, stmt.Totals.ClosingBalance.Equal(dec("13449.55")))
	assert.Equal(t, 1, stmt.Totals.ToConfirmQty)
	assert.True(t, stmt.Totals.ToConfirmValue.Equal(dec("99.90")))
}

func TestStatementWithoutDateFromStartsAtZero(t *testing.T) {
	f := setupStatementService(t)

	f.post(t, f.accountID, 1, ledgerdomain.OperationCredit, "15000", true)

	stmt, err := f.svc.Statement(context.Background(), f.orgID, domain.StatementRequest{})
	require.NoError(t, err)
	assert.True(t, stmt.Totals.OpeningBalance.IsZero())
	assert.True(t, stmt.Totals.ClosingBalance.Equal(dec("15000")))
	assert.Zero(t, stmt.Totals.ToConfirmQty)
}

func TestStatementSkipsDeletedEntries(t *testing.T) {
	f := setupStatementService(t)
	ctx := context.Background()

	f.post(t, f.accountID, 1, ledgerdomain.OperationCredit, "100", true)
	gone := f.post(t, f.accountID, 2, ledgerdomain.OperationCredit, "900", true)
	require.NoError(t, f.ledger.SoftDelete(ctx, f.orgID, gone.ID))

	stmt, err := f.svc.Statement(ctx, f.orgID, domain.StatementRequest{})
	require.NoError(t, err)
	assert.Len(t, stmt.Lines, 1)
	assert.True(t, stmt.Totals.ClosingBalance.Equal(dec("100")))

	balance, err := f.svc.AccountBalance(ctx, f.orgID, f.accountID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("100")))
}

func TestStatementRejectsInvertedRange(t *testing.T) {
	f := setupStatementService(t)
	from := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := f.svc.Statement(context.Background(), f.orgID, domain.StatementRequest{DateFrom: &from, DateTo: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = f.svc.Statement(context.Background(), 0, domain.StatementRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestAccountBalanceIgnoresDrafts(t *testing.T) {
	f := setupStatementService(t)
	ctx := context.Background()

	f.post(t, f.accountID, 1, ledgerdomain.OperationCredit, "250.10", true)
	f.post(t, f.accountID, 2, ledgerdomain.OperationDebit, "50.05", true)
	f.post(t, f.accountID, 3, ledgerdomain.OperationCredit, "1000", false)

	balance, err := f.svc.AccountBalance(ctx, f.orgID, f.accountID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("200.05")), "balance %s", balance)

	empty, err := f.svc.AccountBalance(ctx, f.orgID, f.otherID)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	_, err = f.svc.AccountBalance(ctx, f.orgID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAccount)
}
