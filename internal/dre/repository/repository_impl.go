package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	"github.com/smallbiznis/bookkeeper/internal/dre/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) AccountTotals(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time) ([]domain.AccountTotal, error) {
	var rows []struct {
		ChartAccountID   snowflake.ID
		Code             string
		Description      string
		RevenueOrExpense string
		Total            decimal.Decimal
	}
	err := db.WithContext(ctx).Raw(
		`SELECT ca.id AS chart_account_id, ca.code, ca.description, ca.revenue_or_expense,
			SUM(s.split_amount) AS total
		 FROM ledger_entry_splits s
		 JOIN ledger_entries e ON e.id = s.entry_id
		 JOIN chart_accounts ca ON ca.id = s.chart_account_id
		 WHERE e.org_id = ?
		   AND e.deleted_at IS NULL
		   AND e.confirmed = ?
		   AND e.issue_date >= ?
		   AND e.issue_date <= ?
		 GROUP BY ca.id, ca.code, ca.description, ca.revenue_or_expense`,
		orgID,
		true,
		from,
		to,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make([]domain.AccountTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.AccountTotal{
			ChartAccountID:   row.ChartAccountID,
			Code:             row.Code,
			Description:      row.Description,
			RevenueOrExpense: chartdomain.RevenueOrExpense(row.RevenueOrExpense),
			Total:            row.Total.Round(2),
		})
	}
	return totals, nil
}
