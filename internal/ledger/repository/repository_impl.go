package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) MaxCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	var code int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(code), 0) FROM ledger_entries WHERE org_id = ?`,
		orgID,
	).Scan(&code).Error
	return code, err
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.LedgerEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO ledger_entries (
			id, org_id, code, issue_date, payment_date, account_id, amount, operation,
			history, document_number, confirmed, created_at, updated_at, updated_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.OrgID,
		entry.Code,
		entry.IssueDate,
		entry.PaymentDate,
		entry.AccountID,
		entry.Amount,
		entry.Operation,
		entry.History,
		entry.DocumentNumber,
		entry.Confirmed,
		entry.CreatedAt,
		entry.UpdatedAt,
		entry.UpdatedBy,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, entry *domain.LedgerEntry) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE ledger_entries SET
			issue_date = ?, payment_date = ?, account_id = ?, amount = ?, operation = ?,
			history = ?, document_number = ?, confirmed = ?, updated_at = ?, updated_by = ?
		 WHERE org_id = ? AND id = ? AND deleted_at IS NULL`,
		entry.IssueDate,
		entry.PaymentDate,
		entry.AccountID,
		entry.Amount,
		entry.Operation,
		entry.History,
		entry.DocumentNumber,
		entry.Confirmed,
		entry.UpdatedAt,
		entry.UpdatedBy,
		entry.OrgID,
		entry.ID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) SetConfirmed(ctx context.Context, db *gorm.DB, entry *domain.LedgerEntry) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE ledger_entries SET confirmed = ?, updated_at = ?, updated_by = ?
		 WHERE org_id = ? AND id = ? AND deleted_at IS NULL`,
		entry.Confirmed,
		entry.UpdatedAt,
		entry.UpdatedBy,
		entry.OrgID,
		entry.ID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, deletedAt time.Time, updatedBy *string) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE ledger_entries SET deleted_at = ?, updated_at = ?, updated_by = ?
		 WHERE org_id = ? AND id = ? AND deleted_at IS NULL`,
		deletedAt,
		deletedAt,
		updatedBy,
		orgID,
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, withSplits bool) (*domain.LedgerEntry, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.LedgerEntry{}).
		Where("org_id = ? AND id = ? AND deleted_at IS NULL", orgID, id)
	if withSplits {
		stmt = stmt.Preload("Splits", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at asc, id asc")
		})
	}

	var entries []*domain.LedgerEntry
	if err := stmt.Limit(1).Find(&entries).Error; err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0], nil
}

func (r *repo) FindActiveForUpdate(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("org_id = ? AND id = ? AND deleted_at IS NULL", orgID, id).
		Limit(1).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListFilter) ([]*domain.LedgerEntry, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.LedgerEntry{}).
		Where("org_id = ?", orgID)

	if filter.Deleted != nil && *filter.Deleted {
		stmt = stmt.Where("deleted_at IS NOT NULL")
	} else {
		stmt = stmt.Where("deleted_at IS NULL")
	}
	if filter.DateFrom != nil {
		stmt = stmt.Where("issue_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		stmt = stmt.Where("issue_date <= ?", *filter.DateTo)
	}
	if filter.AccountID != nil {
		stmt = stmt.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Operation != nil {
		stmt = stmt.Where("operation = ?", *filter.Operation)
	}
	if filter.Confirmed != nil {
		stmt = stmt.Where("confirmed = ?", *filter.Confirmed)
	}
	if filter.WithSplits {
		stmt = stmt.Preload("Splits", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at asc, id asc")
		})
	}

	var entries []*domain.LedgerEntry
	if err := stmt.Order("issue_date asc, created_at asc, id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) InsertSplits(ctx context.Context, db *gorm.DB, splits []domain.LedgerEntrySplit) error {
	for _, split := range splits {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO ledger_entry_splits (
				id, org_id, entry_id, chart_account_id, cost_center_id, split_amount, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			split.ID,
			split.OrgID,
			split.EntryID,
			split.ChartAccountID,
			split.CostCenterID,
			split.SplitAmount,
			split.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) DeleteSplits(ctx context.Context, db *gorm.DB, orgID, entryID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM ledger_entry_splits WHERE org_id = ? AND entry_id = ?`,
		orgID,
		entryID,
	).Error
}

func (r *repo) ListSplits(ctx context.Context, db *gorm.DB, orgID, entryID snowflake.ID) ([]domain.LedgerEntrySplit, error) {
	var splits []domain.LedgerEntrySplit
	err := db.WithContext(ctx).
		Where("org_id = ? AND entry_id = ?", orgID, entryID).
		Order("created_at asc, id asc").
		Find(&splits).Error
	return splits, err
}

func (r *repo) AccountExists(ctx context.Context, db *gorm.DB, orgID, accountID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM accounts WHERE org_id = ? AND id = ?`,
		orgID,
		accountID,
	).Scan(&count).Error
	return count > 0, err
}

func (r *repo) CountVisibleChartAccounts(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ids []snowflake.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM chart_accounts WHERE id IN ? AND (org_id = ? OR org_id IS NULL)`,
		ids,
		orgID,
	).Scan(&count).Error
	return count, err
}

func (r *repo) CountCostCenters(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ids []snowflake.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM cost_centers WHERE id IN ? AND org_id = ?`,
		ids,
		orgID,
	).Scan(&count).Error
	return count, err
}
