package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateRequest struct {
	Code        string
	Description string
	AccountType AccountType
}

type Service interface {
	Create(ctx context.Context, orgID snowflake.ID, req CreateRequest) (Account, error)
	List(ctx context.Context, orgID snowflake.ID) ([]AccountWithBalance, error)
	Get(ctx context.Context, orgID snowflake.ID, id snowflake.ID) (AccountWithBalance, error)
	Delete(ctx context.Context, orgID snowflake.ID, id snowflake.ID) error
}

// BalanceReader derives the balance of an account from its confirmed entries.
type BalanceReader interface {
	AccountBalance(ctx context.Context, orgID snowflake.ID, accountID snowflake.ID) (decimal.Decimal, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *Account) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Account, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*Account, error)
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	CountEntryReferences(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (int64, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidCode         = errors.New("invalid_code")
	ErrInvalidDescription  = errors.New("invalid_description")
	ErrInvalidAccountType  = errors.New("invalid_account_type")
	ErrNotFound            = errors.New("account_not_found")
	ErrCodeExists          = errors.New("account_code_exists")
	ErrCannotDeleteInUse   = errors.New("cannot_delete_in_use")
)
