package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeBank       AccountType = "BANK"
	AccountTypeCash       AccountType = "CASH"
	AccountTypeInvestment AccountType = "INVESTMENT"
	AccountTypeOther      AccountType = "OTHER"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeBank, AccountTypeCash, AccountTypeInvestment, AccountTypeOther:
		return true
	}
	return false
}

// Account is a bank or cash account that ledger entries move money through.
type Account struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;uniqueIndex:ux_accounts_org_code,priority:1" json:"org_id"`
	Code        string       `gorm:"type:varchar(64);not null;uniqueIndex:ux_accounts_org_code,priority:2" json:"code"`
	Description string       `gorm:"type:text;not null" json:"description"`
	AccountType AccountType  `gorm:"type:varchar(16);not null" json:"account_type"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

func (a Account) Snapshot() map[string]any {
	return map[string]any{
		"id":           a.ID.String(),
		"code":         a.Code,
		"description":  a.Description,
		"account_type": string(a.AccountType),
	}
}

// AccountWithBalance carries the balance derived from confirmed entries.
type AccountWithBalance struct {
	Account
	Balance decimal.Decimal `json:"balance"`
}
