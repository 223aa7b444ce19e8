package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type SplitInput struct {
	ChartAccountID snowflake.ID
	CostCenterID   *snowflake.ID
	SplitAmount    decimal.Decimal
}

// EntryInput carries the scalar fields and splits shared by Create and Update.
type EntryInput struct {
	IssueDate      time.Time
	PaymentDate    *time.Time
	AccountID      snowflake.ID
	Amount         decimal.Decimal
	Operation      Operation
	History        string
	DocumentNumber string
	Confirmed      bool
	Splits         []SplitInput
}

type CreateRequest struct {
	EntryInput
}

// UpdateRequest fully replaces the entry scalars and its splits.
type UpdateRequest struct {
	EntryInput
}

type Service interface {
	List(ctx context.Context, orgID snowflake.ID, filter ListFilter) ([]LedgerEntry, error)
	Get(ctx context.Context, orgID snowflake.ID, id snowflake.ID, withSplits bool) (LedgerEntry, error)
	Create(ctx context.Context, orgID snowflake.ID, req CreateRequest) (LedgerEntry, error)
	Update(ctx context.Context, orgID snowflake.ID, id snowflake.ID, req UpdateRequest) (LedgerEntry, error)
	Confirm(ctx context.Context, orgID snowflake.ID, id snowflake.ID, confirmed bool) (LedgerEntry, error)
	SoftDelete(ctx context.Context, orgID snowflake.ID, id snowflake.ID) error
}

var (
	ErrInvalidOrganization         = errors.New("invalid_organization")
	ErrInvalidID                   = errors.New("invalid_id")
	ErrInvalidAmount               = errors.New("invalid_amount")
	ErrInvalidOperation            = errors.New("invalid_operation")
	ErrInvalidIssueDate            = errors.New("invalid_issue_date")
	ErrInvalidAccount              = errors.New("invalid_account")
	ErrInvalidSplitAmount          = errors.New("invalid_split_amount")
	ErrInvalidSplitChartAccount    = errors.New("invalid_split_chart_account")
	ErrNotFound                    = errors.New("ledger_entry_not_found")
	ErrAccountNotFound             = errors.New("account_not_found")
	ErrChartAccountNotFound        = errors.New("chart_account_not_found")
	ErrCostCenterNotFound          = errors.New("cost_center_not_found")
	ErrSplitsTotalMustMatchAmount  = errors.New("splits_total_must_match_amount")
	ErrCannotConfirmSplitsMismatch = errors.New("cannot_confirm_splits_mismatch")
	ErrCodeGenerationExhausted     = errors.New("code_generation_exhausted")
)
