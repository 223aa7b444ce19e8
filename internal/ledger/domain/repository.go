package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows List. Dates are compared against the stored issue_date.
type ListFilter struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	AccountID  *snowflake.ID
	Operation  *Operation
	Confirmed  *bool
	Deleted    *bool
	WithSplits bool
}

type Repository interface {
	MaxCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
	Insert(ctx context.Context, db *gorm.DB, entry *LedgerEntry) error
	Update(ctx context.Context, db *gorm.DB, entry *LedgerEntry) (bool, error)
	SetConfirmed(ctx context.Context, db *gorm.DB, entry *LedgerEntry) (bool, error)
	SoftDelete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, deletedAt time.Time, updatedBy *string) (bool, error)
	FindActive(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, withSplits bool) (*LedgerEntry, error)
	// FindActiveForUpdate locks the entry row for the rest of the transaction.
	FindActiveForUpdate(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*LedgerEntry, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListFilter) ([]*LedgerEntry, error)

	InsertSplits(ctx context.Context, db *gorm.DB, splits []LedgerEntrySplit) error
	DeleteSplits(ctx context.Context, db *gorm.DB, orgID, entryID snowflake.ID) error
	ListSplits(ctx context.Context, db *gorm.DB, orgID, entryID snowflake.ID) ([]LedgerEntrySplit, error)

	AccountExists(ctx context.Context, db *gorm.DB, orgID, accountID snowflake.ID) (bool, error)
	CountVisibleChartAccounts(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ids []snowflake.ID) (int64, error)
	CountCostCenters(ctx context.Context, db *gorm.DB, orgID snowflake.ID, ids []snowflake.ID) (int64, error)
}
