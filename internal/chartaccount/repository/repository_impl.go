package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *domain.ChartAccount) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO chart_accounts (
			id, org_id, code, description, plan_type, parent_id, revenue_or_expense,
			debit_or_credit, fixed_or_variable, cost_or_expense, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.OrgID,
		account.Code,
		account.Description,
		account.PlanType,
		account.ParentID,
		account.RevenueOrExpense,
		account.DebitOrCredit,
		account.FixedOrVariable,
		account.CostOrExpense,
		account.Active,
		account.CreatedAt,
		account.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, account *domain.ChartAccount) error {
	return db.WithContext(ctx).Exec(
		`UPDATE chart_accounts SET
			org_id = ?, code = ?, description = ?, plan_type = ?, parent_id = ?,
			revenue_or_expense = ?, debit_or_credit = ?, fixed_or_variable = ?,
			cost_or_expense = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		account.OrgID,
		account.Code,
		account.Description,
		account.PlanType,
		account.ParentID,
		account.RevenueOrExpense,
		account.DebitOrCredit,
		account.FixedOrVariable,
		account.CostOrExpense,
		account.Active,
		account.UpdatedAt,
		account.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM chart_accounts WHERE id = ?`, id).Error
}

func (r *repo) FindVisible(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.ChartAccount, error) {
	return r.findVisible(db.WithContext(ctx), orgID, id)
}

func (r *repo) FindVisibleForUpdate(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.ChartAccount, error) {
	return r.findVisible(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), orgID, id)
}

func (r *repo) findVisible(stmt *gorm.DB, orgID, id snowflake.ID) (*domain.ChartAccount, error) {
	var accounts []*domain.ChartAccount
	err := stmt.
		Model(&domain.ChartAccount{}).
		Where("id = ?", id).
		Where("(org_id = ? OR org_id IS NULL)", orgID).
		Limit(1).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return accounts[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListFilter) ([]*domain.ChartAccount, error) {
	stmt := db.WithContext(ctx).Model(&domain.ChartAccount{})
	if filter.IncludeGlobal {
		stmt = stmt.Where("(org_id = ? OR org_id IS NULL)", orgID)
	} else {
		stmt = stmt.Where("org_id = ?", orgID)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	if filter.PlanType != nil {
		stmt = stmt.Where("plan_type = ?", *filter.PlanType)
	}
	if filter.RevenueOrExpense != nil {
		stmt = stmt.Where("revenue_or_expense = ?", *filter.RevenueOrExpense)
	}
	if filter.DebitOrCredit != nil {
		stmt = stmt.Where("debit_or_credit = ?", *filter.DebitOrCredit)
	}
	if filter.ParentID != nil {
		stmt = stmt.Where("parent_id = ?", *filter.ParentID)
	}

	var accounts []*domain.ChartAccount
	if err := stmt.Order("code asc, id asc").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repo) CodeExists(ctx context.Context, db *gorm.DB, scope *snowflake.ID, code string, excludeID snowflake.ID) (bool, error) {
	stmt := inScope(db.WithContext(ctx).Model(&domain.ChartAccount{}), scope).
		Where("code = ?", code)
	if excludeID != 0 {
		stmt = stmt.Where("id <> ?", excludeID)
	}
	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ChildCodes(ctx context.Context, db *gorm.DB, scope *snowflake.ID, parentID snowflake.ID) ([]string, error) {
	var codes []string
	err := inScope(db.WithContext(ctx).Model(&domain.ChartAccount{}), scope).
		Where("parent_id = ?", parentID).
		Pluck("code", &codes).Error
	return codes, err
}

func (r *repo) RootCodes(ctx context.Context, db *gorm.DB, scope *snowflake.ID) ([]string, error) {
	var codes []string
	err := inScope(db.WithContext(ctx).Model(&domain.ChartAccount{}), scope).
		Where("parent_id IS NULL").
		Pluck("code", &codes).Error
	return codes, err
}

func (r *repo) CountChildren(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.ChartAccount{}).
		Where("parent_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *repo) CountSplitReferences(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM ledger_entry_splits WHERE chart_account_id = ?`,
		id,
	).Scan(&count).Error
	return count, err
}

func (r *repo) ParentOf(ctx context.Context, db *gorm.DB, id snowflake.ID) (*snowflake.ID, error) {
	var rows []struct {
		ParentID *snowflake.ID
	}
	err := db.WithContext(ctx).
		Model(&domain.ChartAccount{}).
		Select("parent_id").
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0].ParentID, nil
}

func inScope(stmt *gorm.DB, scope *snowflake.ID) *gorm.DB {
	if scope == nil {
		return stmt.Where("org_id IS NULL")
	}
	return stmt.Where("org_id = ?", *scope)
}
