package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	"github.com/smallbiznis/bookkeeper/internal/statement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// SignedSum adds CREDIT amounts and subtracts DEBIT amounts.
func (r *repo) SignedSum(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.BalanceFilter) (decimal.Decimal, error) {
	stmt := db.WithContext(ctx).
		Table("ledger_entries").
		Select("COALESCE(SUM(CASE WHEN operation = ? THEN amount ELSE -amount END), 0) AS total", ledgerdomain.OperationCredit).
		Where("org_id = ? AND confirmed = ? AND deleted_at IS NULL", orgID, true)
	if filter.Before != nil {
		stmt = stmt.Where("issue_date < ?", *filter.Before)
	}
	if filter.AccountID != nil {
		stmt = stmt.Where("account_id = ?", *filter.AccountID)
	}

	var row struct {
		Total decimal.Decimal
	}
	if err := stmt.Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	// sqlite sums NUMERIC columns as floats
	return row.Total.Round(2), nil
}
