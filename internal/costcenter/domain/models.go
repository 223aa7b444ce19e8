package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type CostCenter struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;uniqueIndex:ux_cost_centers_org_code,priority:1" json:"org_id"`
	Code        string       `gorm:"type:varchar(64);not null;uniqueIndex:ux_cost_centers_org_code,priority:2" json:"code"`
	Description string       `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (CostCenter) TableName() string { return "cost_centers" }

func (c CostCenter) Snapshot() map[string]any {
	return map[string]any{
		"id":          c.ID.String(),
		"code":        c.Code,
		"description": c.Description,
	}
}
