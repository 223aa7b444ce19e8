package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
)

type LineKind string

const (
	LineKindHeader  LineKind = "header"
	LineKindAccount LineKind = "account"
	LineKindTotal   LineKind = "total"
)

const (
	LabelRevenue           = "REVENUE"
	LabelExpense           = "EXPENSE"
	LabelOperationalResult = "OPERATIONAL RESULT"
)

type DRERequest struct {
	DateFrom time.Time
	DateTo   time.Time
}

// AccountTotal is the summed split amount for one chart account.
type AccountTotal struct {
	ChartAccountID   snowflake.ID
	Code             string
	Description      string
	RevenueOrExpense chartdomain.RevenueOrExpense
	Total            decimal.Decimal
}

type Line struct {
	Kind             LineKind                     `json:"kind"`
	ChartAccountID   *snowflake.ID                `json:"chart_account_id,omitempty"`
	Code             string                       `json:"code,omitempty"`
	Description      string                       `json:"description"`
	RevenueOrExpense chartdomain.RevenueOrExpense `json:"revenue_or_expense,omitempty"`
	Amount           decimal.Decimal              `json:"amount"`
}

type Indicators struct {
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	NetResult    decimal.Decimal `json:"net_result"`
	Margin       decimal.Decimal `json:"margin"`
}

type Report struct {
	DateFrom          time.Time       `json:"date_from"`
	DateTo            time.Time       `json:"date_to"`
	Lines             []Line          `json:"lines"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalExpense      decimal.Decimal `json:"total_expense"`
	OperationalResult decimal.Decimal `json:"operational_result"`
	Indicators        Indicators      `json:"indicators"`
}

type Service interface {
	Run(ctx context.Context, orgID snowflake.ID, req DRERequest) (Report, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidDateFrom     = errors.New("invalid_date_from")
	ErrInvalidDateTo       = errors.New("invalid_date_to")
	ErrInvalidDateRange    = errors.New("invalid_date_range")
)
