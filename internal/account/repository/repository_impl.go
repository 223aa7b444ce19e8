package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookkeeper/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO accounts (id, org_id, code, description, account_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.OrgID,
		account.Code,
		account.Description,
		account.AccountType,
		account.CreatedAt,
		account.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Account, error) {
	var accounts []*domain.Account
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
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

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*domain.Account, error) {
	var accounts []*domain.Account
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("code asc").
		Find(&accounts).Error
	return accounts, err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM accounts WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}

// CountEntryReferences counts entries on the account, soft-deleted ones included.
func (r *repo) CountEntryReferences(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM ledger_entries WHERE org_id = ? AND account_id = ?`,
		orgID,
		id,
	).Scan(&count).Error
	return count, err
}
