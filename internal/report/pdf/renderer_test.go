package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	dredomain "github.com/smallbiznis/bookkeeper/internal/dre/domain"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	statementdomain "github.com/smallbiznis/bookkeeper/internal/statement/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDRE(t *testing.T) {
	report := dredomain.Build(dredomain.DRERequest{
		DateFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}, []dredomain.AccountTotal{
		{ChartAccountID: 1, Code: "1.01", Description: "Sales", RevenueOrExpense: chartdomain.Revenue, Total: decimal.RequireFromString("15000")},
		{ChartAccountID: 2, Code: "2.01", Description: "Rent", RevenueOrExpense: chartdomain.Expense, Total: decimal.RequireFromString("1850.45")},
	})

	out, err := New().RenderDRE(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderStatement(t *testing.T) {
	balance := decimal.RequireFromString("15300")
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	statement := statementdomain.Statement{
		DateFrom: &from,
		Lines: []statementdomain.StatementLine{
			{Code: 1, IssueDate: from, Operation: ledgerdomain.OperationCredit, Amount: decimal.RequireFromString("15000"), History: "invoice 42", Confirmed: true, BalanceAfter: &balance},
			{Code: 2, IssueDate: from, Operation: ledgerdomain.OperationDebit, Amount: decimal.RequireFromString("99.90")},
		},
		Totals: statementdomain.Totals{
			OpeningBalance: decimal.RequireFromString("300"),
			TotalInputs:    decimal.RequireFromString("15000"),
			ClosingBalance: balance,
			ToConfirmQty:   1,
			ToConfirmValue: decimal.RequireFromString("99.90"),
		},
	}

	out, err := New().RenderStatement(context.Background(), statement)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
