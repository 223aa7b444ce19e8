package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository aggregates confirmed, non-deleted splits per chart account.
type Repository interface {
	AccountTotals(ctx context.Context, db *gorm.DB, orgID snowflake.ID, from, to time.Time) ([]AccountTotal, error)
}
