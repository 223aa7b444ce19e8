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
	"github.com/smallbiznis/bookkeeper/internal/dre/domain"
	"github.com/smallbiznis/bookkeeper/internal/dre/repository"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	ledgerrepo "github.com/smallbiznis/bookkeeper/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/bookkeeper/internal/ledger/service"
	"github.com/smallbiznis/bookkeeper/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunMonthlyResult(t *testing.T) {
	db := testsupport.OpenDB(t)
	node := testsupport.Node(t)
	clk := clock.NewFakeClock(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	orgID := node.Generate()
	otherOrg := node.Generate()

	ledger := ledgerservice.NewService(ledgerservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  ledgerrepo.Provide(),
		AuditSvc: auditservice.NewService(auditservice.Params{
			DB:    db,
			Log:   zap.NewNop(),
			GenID: node,
			Clock: clk,
			Repo:  auditrepo.Provide(),
		}),
		Settings: config.NewStaticLedgerSettings(config.DefaultLedgerSettings()),
	})
	svc := NewService(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})

	accountID := testsupport.SeedAccount(t, db, node, orgID, "001")
	otherAccount := testsupport.SeedAccount(t, db, node, otherOrg, "001")
	revenueID := testsupport.SeedChartAccount(t, db, node, &orgID, "1.01", chartdomain.Revenue)
	expenseID := testsupport.SeedChartAccount(t, db, node, nil, "2.01", chartdomain.Expense)

	post := func(org, account, chart snowflake.ID, day int, op ledgerdomain.Operation, amount string, confirmed bool) ledgerdomain.LedgerEntry {
		t.Helper()
		entry, err := ledger.Create(context.Background(), org, ledgerdomain.CreateRequest{EntryInput: ledgerdomain.EntryInput{
			IssueDate: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
			AccountID: account,
			Amount:    decimal.RequireFromString(amount),
			Operation: op,
			Confirmed: confirmed,
			Splits:    []ledgerdomain.SplitInput{{ChartAccountID: chart, SplitAmount: decimal.RequireFromString(amount)}},
		}})
		require.NoError(t, err)
		return entry
	}

	post(orgID, accountID, revenueID, 5, ledgerdomain.OperationCredit, "15000", true)
	post(orgID, accountID, expenseID, 31, ledgerdomain.OperationDebit, "1850.45", true)
	post(orgID, accountID, expenseID, 20, ledgerdomain.OperationDebit, "400", false)
	deleted := post(orgID, accountID, revenueID, 7, ledgerdomain.OperationCredit, "300", true)
	require.NoError(t, ledger.SoftDelete(context.Background(), orgID, deleted.ID))
	post(otherOrg, otherAccount, expenseID, 6, ledgerdomain.OperationDebit, "999", true)

	report, err := svc.Run(context.Background(), orgID, domain.DRERequest{
		DateFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, report.TotalRevenue.Equal(decimal.RequireFromString("15000")), "revenue %s", report.TotalRevenue)
	assert.True(t, report.TotalExpense.Equal(decimal.RequireFromString("1850.45")), "expense %s", report.TotalExpense)
	assert.True(t, report.OperationalResult.Equal(decimal.RequireFromString("13149.55")))
	assert.True(t, report.Indicators.Margin.Equal(decimal.RequireFromString("87.66")), "margin %s", report.Indicators.Margin)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), report.DateTo)
	require.Len(t, report.Lines, 5)
}

func TestRunValidatesRange(t *testing.T) {
	svc := NewService(Params{DB: testsupport.OpenDB(t), Log: zap.NewNop(), Repo: repository.Provide()})
	ctx := context.Background()
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.Run(ctx, 0, domain.DRERequest{DateFrom: day, DateTo: day})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
	_, err = svc.Run(ctx, 1, domain.DRERequest{DateTo: day})
	assert.ErrorIs(t, err, domain.ErrInvalidDateFrom)
	_, err = svc.Run(ctx, 1, domain.DRERequest{DateFrom: day})
	assert.ErrorIs(t, err, domain.ErrInvalidDateTo)
	_, err = svc.Run(ctx, 1, domain.DRERequest{DateFrom: day, DateTo: day.AddDate(0, 0, -1)})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	report, err := svc.Run(ctx, 1, domain.DRERequest{DateFrom: day, DateTo: day})
	require.NoError(t, err)
	assert.True(t, report.Indicators.Margin.IsZero())
}
