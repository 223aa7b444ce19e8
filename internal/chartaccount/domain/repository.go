package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows List; OrgID rows are always included.
type ListFilter struct {
	IncludeGlobal    bool
	Active           *bool
	PlanType         *PlanType
	RevenueOrExpense *RevenueOrExpense
	DebitOrCredit    *DebitOrCredit
	ParentID         *snowflake.ID
}

// Repository methods taking a scope treat nil as the global scope.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *ChartAccount) error
	Update(ctx context.Context, db *gorm.DB, account *ChartAccount) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindVisible(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*ChartAccount, error)
	// FindVisibleForUpdate locks the node row until the transaction ends.
	FindVisibleForUpdate(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*ChartAccount, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListFilter) ([]*ChartAccount, error)
	CodeExists(ctx context.Context, db *gorm.DB, scope *snowflake.ID, code string, excludeID snowflake.ID) (bool, error)
	ChildCodes(ctx context.Context, db *gorm.DB, scope *snowflake.ID, parentID snowflake.ID) ([]string, error)
	RootCodes(ctx context.Context, db *gorm.DB, scope *snowflake.ID) ([]string, error)
	CountChildren(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	CountSplitReferences(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	ParentOf(ctx context.Context, db *gorm.DB, id snowflake.ID) (*snowflake.ID, error)
}
