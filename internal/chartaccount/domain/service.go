package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	Code             string
	Description      string
	PlanType         PlanType
	ParentID         *snowflake.ID
	RevenueOrExpense RevenueOrExpense
	DebitOrCredit    DebitOrCredit
	FixedOrVariable  *FixedOrVariable
	CostOrExpense    *CostOrExpense
	Active           *bool
	Global           bool
}

// UpdateRequest is a patch; nil fields are left untouched. ClearParent detaches the node.
type UpdateRequest struct {
	Code             *string
	Description      *string
	PlanType         *PlanType
	ParentID         *snowflake.ID
	ClearParent      bool
	RevenueOrExpense *RevenueOrExpense
	DebitOrCredit    *DebitOrCredit
	FixedOrVariable  *FixedOrVariable
	CostOrExpense    *CostOrExpense
	Active           *bool
	Global           *bool
}

type Service interface {
	List(ctx context.Context, orgID snowflake.ID, filter ListFilter) ([]ChartAccount, error)
	Get(ctx context.Context, orgID snowflake.ID, id snowflake.ID) (ChartAccount, error)
	Create(ctx context.Context, orgID snowflake.ID, req CreateRequest, isAdmin bool) (ChartAccount, error)
	Update(ctx context.Context, orgID snowflake.ID, id snowflake.ID, req UpdateRequest, isAdmin bool) (ChartAccount, error)
	Delete(ctx context.Context, orgID snowflake.ID, id snowflake.ID, isAdmin bool) error
}

var (
	ErrInvalidOrganization           = errors.New("invalid_organization")
	ErrInvalidID                     = errors.New("invalid_id")
	ErrInvalidCode                   = errors.New("invalid_code")
	ErrInvalidDescription            = errors.New("invalid_description")
	ErrInvalidPlanType               = errors.New("invalid_plan_type")
	ErrInvalidRevenueOrExpense       = errors.New("invalid_revenue_or_expense")
	ErrInvalidDebitOrCredit          = errors.New("invalid_debit_or_credit")
	ErrInvalidFixedOrVariable        = errors.New("invalid_fixed_or_variable")
	ErrInvalidCostOrExpense          = errors.New("invalid_cost_or_expense")
	ErrNotFound                      = errors.New("chart_account_not_found")
	ErrForbidden                     = errors.New("forbidden")
	ErrAnaliticaRequiresParent       = errors.New("analitica_requires_parent")
	ErrParentNotFound                = errors.New("parent_not_found")
	ErrParentScopeMismatch           = errors.New("parent_scope_mismatch")
	ErrInvalidParent                 = errors.New("invalid_parent")
	ErrCodeExists                    = errors.New("chart_account_code_exists")
	ErrCannotChangeScopeWithChildren = errors.New("cannot_change_scope_with_children")
	ErrCannotChangeScopeAndParent    = errors.New("cannot_change_scope_and_parent")
	ErrCannotDeleteWithChildren      = errors.New("cannot_delete_with_children")
	ErrCannotDeleteInUse             = errors.New("cannot_delete_in_use")
	ErrCodeGenerationExhausted       = errors.New("code_generation_exhausted")
)
