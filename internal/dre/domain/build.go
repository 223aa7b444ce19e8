package domain

import (
	"sort"

	"github.com/shopspring/decimal"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
)

var hundred = decimal.NewFromInt(100)

// Build orders the account totals by code and lays out the report lines.
func Build(req DRERequest, totals []AccountTotal) Report {
	sorted := make([]AccountTotal, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Code == sorted[j].Code {
			return sorted[i].ChartAccountID < sorted[j].ChartAccountID
		}
		return sorted[i].Code < sorted[j].Code
	})

	revenue := decimal.Zero
	expense := decimal.Zero
	var revenueLines, expenseLines []Line
	for _, item := range sorted {
		id := item.ChartAccountID
		line := Line{
			Kind:             LineKindAccount,
			ChartAccountID:   &id,
			Code:             item.Code,
			Description:      item.Description,
			RevenueOrExpense: item.RevenueOrExpense,
			Amount:           item.Total,
		}
		if item.RevenueOrExpense == chartdomain.Revenue {
			revenue = revenue.Add(item.Total)
			revenueLines = append(revenueLines, line)
		} else {
			expense = expense.Add(item.Total)
			expenseLines = append(expenseLines, line)
		}
	}
	result := revenue.Sub(expense)

	lines := make([]Line, 0, len(sorted)+3)
	lines = append(lines, Line{Kind: LineKindHeader, Description: LabelRevenue, RevenueOrExpense: chartdomain.Revenue, Amount: revenue})
	lines = append(lines, revenueLines...)
	lines = append(lines, Line{Kind: LineKindHeader, Description: LabelExpense, RevenueOrExpense: chartdomain.Expense, Amount: expense})
	lines = append(lines, expenseLines...)
	lines = append(lines, Line{Kind: LineKindTotal, Description: LabelOperationalResult, Amount: result})

	return Report{
		DateFrom:          req.DateFrom,
		DateTo:            req.DateTo,
		Lines:             lines,
		TotalRevenue:      revenue,
		TotalExpense:      expense,
		OperationalResult: result,
		Indicators: Indicators{
			GrossRevenue: revenue,
			NetResult:    result,
			Margin:       Margin(result, revenue),
		},
	}
}

// Margin is result/revenue*100 rounded to 2 places, 0 when there is no revenue.
func Margin(result, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return result.Div(revenue).Mul(hundred).Round(2)
}
