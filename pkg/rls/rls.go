package rls

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// WithTenant scopes the current Postgres transaction to orgID. Other dialects have
// no row-level security and are left untouched.
func WithTenant(tx *gorm.DB, orgID snowflake.ID) error {
	if tx == nil || tx.Dialector == nil || tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(
		"SELECT set_config('app.current_org_id', ?, true)",
		fmt.Sprintf("%d", int64(orgID)),
	).Error
}
