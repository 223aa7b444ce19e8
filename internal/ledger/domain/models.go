package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Operation is the cash direction of an entry: CREDIT adds to the balance, DEBIT subtracts.
type Operation string

const (
	OperationCredit Operation = "CREDIT"
	OperationDebit  Operation = "DEBIT"
)

func (o Operation) Valid() bool {
	return o == OperationCredit || o == OperationDebit
}

// Signed returns the amount with the sign the operation applies to a balance.
func (o Operation) Signed(amount decimal.Decimal) decimal.Decimal {
	if o == OperationDebit {
		return amount.Neg()
	}
	return amount
}

// LedgerEntry is a single bank or cash movement.
type LedgerEntry struct {
	ID             snowflake.ID       `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID       `gorm:"not null;uniqueIndex:ux_ledger_entries_org_code,priority:1;index:idx_ledger_entries_org_issue,priority:1" json:"org_id"`
	Code           int64              `gorm:"not null;uniqueIndex:ux_ledger_entries_org_code,priority:2" json:"code"`
	IssueDate      time.Time          `gorm:"not null;index:idx_ledger_entries_org_issue,priority:2" json:"issue_date"`
	PaymentDate    *time.Time         `json:"payment_date,omitempty"`
	AccountID      snowflake.ID       `gorm:"not null;index" json:"account_id"`
	Amount         decimal.Decimal    `gorm:"type:numeric(18,2);not null" json:"amount"`
	Operation      Operation          `gorm:"type:varchar(8);not null" json:"operation"`
	History        string             `gorm:"type:text;not null;default:''" json:"history"`
	DocumentNumber string             `gorm:"type:varchar(64);not null;default:''" json:"document_number"`
	Confirmed      bool               `gorm:"not null;default:false" json:"confirmed"`
	DeletedAt      *time.Time         `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt      time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"not null" json:"updated_at"`
	UpdatedBy      *string            `gorm:"type:text" json:"updated_by,omitempty"`
	Splits         []LedgerEntrySplit `gorm:"foreignKey:EntryID" json:"splits,omitempty"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

// LedgerEntrySplit allocates part of an entry to a chart account and, optionally, a cost center.
type LedgerEntrySplit struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID    `gorm:"not null;index" json:"org_id"`
	EntryID        snowflake.ID    `gorm:"not null;index" json:"entry_id"`
	ChartAccountID snowflake.ID    `gorm:"not null;index" json:"chart_account_id"`
	CostCenterID   *snowflake.ID   `gorm:"index" json:"cost_center_id,omitempty"`
	SplitAmount    decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"split_amount"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
}

func (LedgerEntrySplit) TableName() string { return "ledger_entry_splits" }

// Snapshot is the audit representation of an entry and the given splits.
func (e LedgerEntry) Snapshot(splits []LedgerEntrySplit) map[string]any {
	out := map[string]any{
		"id":              e.ID.String(),
		"code":            e.Code,
		"issue_date":      e.IssueDate.Format(DateLayout),
		"account_id":      e.AccountID.String(),
		"amount":          e.Amount.StringFixed(2),
		"operation":       string(e.Operation),
		"history":         e.History,
		"document_number": e.DocumentNumber,
		"confirmed":       e.Confirmed,
	}
	if e.PaymentDate != nil {
		out["payment_date"] = e.PaymentDate.Format(DateLayout)
	}
	if splits != nil {
		rows := make([]map[string]any, 0, len(splits))
		for _, split := range splits {
			row := map[string]any{
				"chart_account_id": split.ChartAccountID.String(),
				"split_amount":     split.SplitAmount.StringFixed(2),
			}
			if split.CostCenterID != nil {
				row["cost_center_id"] = split.CostCenterID.String()
			}
			rows = append(rows, row)
		}
		out["splits"] = rows
	}
	return out
}

// DateLayout is the calendar date format used for issue and payment dates.
const DateLayout = "2006-01-02"

// NormalizeDate drops the time of day, keeping the calendar date in UTC.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
