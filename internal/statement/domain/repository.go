package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	SignedSum(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter BalanceFilter) (decimal.Decimal, error)
}
