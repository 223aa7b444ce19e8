package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
)

type StatementRequest struct {
	DateFrom  *time.Time
	DateTo    *time.Time
	AccountID *snowflake.ID
	Operation *ledgerdomain.Operation
	Confirmed *bool
}

// StatementLine is one entry of the walk. BalanceAfter is nil for unconfirmed entries.
type StatementLine struct {
	EntryID        snowflake.ID           `json:"entry_id"`
	Code           int64                  `json:"code"`
	IssueDate      time.Time              `json:"issue_date"`
	PaymentDate    *time.Time             `json:"payment_date,omitempty"`
	AccountID      snowflake.ID           `json:"account_id"`
	Operation      ledgerdomain.Operation `json:"operation"`
	Amount         decimal.Decimal        `json:"amount"`
	History        string                 `json:"history"`
	DocumentNumber string                 `json:"document_number"`
	Confirmed      bool                   `json:"confirmed"`
	BalanceAfter   *decimal.Decimal       `json:"balance_after"`
}

type Totals struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	TotalInputs    decimal.Decimal `json:"total_inputs"`
	TotalOutputs   decimal.Decimal `json:"total_outputs"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	ToConfirmQty   int             `json:"to_confirm_qty"`
	ToConfirmValue decimal.Decimal `json:"to_confirm_value"`
}

type Statement struct {
	DateFrom  *time.Time      `json:"date_from,omitempty"`
	DateTo    *time.Time      `json:"date_to,omitempty"`
	AccountID *snowflake.ID   `json:"account_id,omitempty"`
	Lines     []StatementLine `json:"lines"`
	Totals    Totals          `json:"totals"`
}

type Service interface {
	Statement(ctx context.Context, orgID snowflake.ID, req StatementRequest) (Statement, error)
	AccountBalance(ctx context.Context, orgID snowflake.ID, accountID snowflake.ID) (decimal.Decimal, error)
}

// BalanceFilter selects confirmed, non-deleted entries for a signed sum.
type BalanceFilter struct {
	Before    *time.Time
	AccountID *snowflake.ID
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidAccount      = errors.New("invalid_account")
	ErrInvalidDateRange    = errors.New("invalid_date_range")
)
