package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PlanType string

const (
	PlanTypeSynthetic PlanType = "SYNTHETIC"
	PlanTypeAnalytic  PlanType = "ANALYTIC"
)

type RevenueOrExpense string

const (
	Revenue RevenueOrExpense = "REVENUE"
	Expense RevenueOrExpense = "EXPENSE"
)

type DebitOrCredit string

const (
	Debit  DebitOrCredit = "DEBIT"
	Credit DebitOrCredit = "CREDIT"
)

type FixedOrVariable string

const (
	Fixed    FixedOrVariable = "FIXED"
	Variable FixedOrVariable = "VARIABLE"
)

type CostOrExpense string

const (
	Cost        CostOrExpense = "COST"
	ExpenseKind CostOrExpense = "EXPENSE"
)

const (
	ScopeGlobal = "global"
	ScopeTenant = "tenant"
)

// ChartAccount is a node of the chart of accounts. A nil OrgID marks a global node
// shared by every tenant.
type ChartAccount struct {
	ID               snowflake.ID     `gorm:"primaryKey" json:"id"`
	OrgID            *snowflake.ID    `gorm:"uniqueIndex:ux_chart_accounts_org_code,priority:1" json:"org_id,omitempty"`
	Code             string           `gorm:"type:varchar(64);not null;uniqueIndex:ux_chart_accounts_org_code,priority:2" json:"code"`
	Description      string           `gorm:"type:text;not null" json:"description"`
	PlanType         PlanType         `gorm:"type:varchar(16);not null" json:"plan_type"`
	ParentID         *snowflake.ID    `gorm:"index" json:"parent_id,omitempty"`
	RevenueOrExpense RevenueOrExpense `gorm:"type:varchar(16);not null" json:"revenue_or_expense"`
	DebitOrCredit    DebitOrCredit    `gorm:"type:varchar(16);not null" json:"debit_or_credit"`
	FixedOrVariable  *FixedOrVariable `gorm:"type:varchar(16)" json:"fixed_or_variable,omitempty"`
	CostOrExpense    *CostOrExpense   `gorm:"type:varchar(16)" json:"cost_or_expense,omitempty"`
	Active           bool             `gorm:"not null" json:"active"`
	CreatedAt        time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null" json:"updated_at"`
}

func (ChartAccount) TableName() string { return "chart_accounts" }

func (c ChartAccount) IsGlobal() bool { return c.OrgID == nil }

func (c ChartAccount) Scope() string {
	if c.IsGlobal() {
		return ScopeGlobal
	}
	return ScopeTenant
}

// Snapshot is the audit representation of a node.
func (c ChartAccount) Snapshot() map[string]any {
	out := map[string]any{
		"id":                 c.ID.String(),
		"code":               c.Code,
		"description":        c.Description,
		"plan_type":          string(c.PlanType),
		"revenue_or_expense": string(c.RevenueOrExpense),
		"debit_or_credit":    string(c.DebitOrCredit),
		"active":             c.Active,
		"scope":              c.Scope(),
	}
	if c.ParentID != nil {
		out["parent_id"] = c.ParentID.String()
	}
	if c.FixedOrVariable != nil {
		out["fixed_or_variable"] = string(*c.FixedOrVariable)
	}
	if c.CostOrExpense != nil {
		out["cost_or_expense"] = string(*c.CostOrExpense)
	}
	return out
}

func (p PlanType) Valid() bool {
	return p == PlanTypeSynthetic || p == PlanTypeAnalytic
}

func (r RevenueOrExpense) Valid() bool {
	return r == Revenue || r == Expense
}

func (d DebitOrCredit) Valid() bool {
	return d == Debit || d == Credit
}

func (f FixedOrVariable) Valid() bool {
	return f == Fixed || f == Variable
}

func (c CostOrExpense) Valid() bool {
	return c == Cost || c == ExpenseKind
}
