// Package seed bootstraps the global starter chart of accounts.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookkeeper/internal/auditcontext"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	"go.uber.org/zap"
)

// bootstrapOrgID is the caller identity used while seeding. Global rows carry no org.
const bootstrapOrgID snowflake.ID = 1

type node struct {
	code            string
	description     string
	planType        chartdomain.PlanType
	kind            chartdomain.RevenueOrExpense
	side            chartdomain.DebitOrCredit
	fixedOrVariable chartdomain.FixedOrVariable
	costOrExpense   chartdomain.CostOrExpense
	children        []node
}

var starterChart = []node{
	{
		code:        "1",
		description: "Revenue",
		planType:    chartdomain.PlanTypeSynthetic,
		kind:        chartdomain.Revenue,
		side:        chartdomain.Credit,
		children: []node{
			{code: "1.01", description: "Product sales", fixedOrVariable: chartdomain.Variable},
			{code: "1.02", description: "Services", fixedOrVariable: chartdomain.Variable},
			{code: "1.03", description: "Financial income", fixedOrVariable: chartdomain.Variable},
		},
	},
	{
		code:        "2",
		description: "Expenses",
		planType:    chartdomain.PlanTypeSynthetic,
		kind:        chartdomain.Expense,
		side:        chartdomain.Debit,
		children: []node{
			{code: "2.01", description: "Rent", fixedOrVariable: chartdomain.Fixed, costOrExpense: chartdomain.ExpenseKind},
			{code: "2.02", description: "Payroll", fixedOrVariable: chartdomain.Fixed, costOrExpense: chartdomain.ExpenseKind},
			{code: "2.03", description: "Supplies", fixedOrVariable: chartdomain.Variable, costOrExpense: chartdomain.Cost},
			{code: "2.04", description: "Taxes and fees", fixedOrVariable: chartdomain.Variable, costOrExpense: chartdomain.ExpenseKind},
		},
	},
}

// EnsureGlobalChart creates the starter chart as global nodes. Existing codes are left alone,
// so running it again is a no-op.
func EnsureGlobalChart(ctx context.Context, svc chartdomain.Service, log *zap.Logger) (int, error) {
	if svc == nil {
		return 0, errors.New("seed chart account service is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx = auditcontext.WithActor(ctx, auditcontext.ActorTypeSystem, "")

	existing, err := svc.List(ctx, bootstrapOrgID, chartdomain.ListFilter{IncludeGlobal: true})
	if err != nil {
		return 0, fmt.Errorf("list global chart: %w", err)
	}
	byCode := make(map[string]chartdomain.ChartAccount, len(existing))
	for _, item := range existing {
		if item.IsGlobal() {
			byCode[item.Code] = item
		}
	}

	created := 0
	for _, root := range starterChart {
		parent, ok := byCode[root.code]
		if !ok {
			parent, err = svc.Create(ctx, bootstrapOrgID, root.request(nil, root), true)
			if err != nil {
				return created, fmt.Errorf("create %s: %w", root.code, err)
			}
			created++
		}

		for _, child := range root.children {
			if _, ok := byCode[child.code]; ok {
				continue
			}
			parentID := parent.ID
			if _, err := svc.Create(ctx, bootstrapOrgID, child.request(&parentID, root), true); err != nil {
				return created, fmt.Errorf("create %s: %w", child.code, err)
			}
			created++
		}
	}

	log.Info("global chart ensured", zap.Int("created", created))
	return created, nil
}

// request builds the create call. Children inherit the revenue/expense side of their root.
func (n node) request(parentID *snowflake.ID, root node) chartdomain.CreateRequest {
	planType := n.planType
	if parentID != nil {
		planType = chartdomain.PlanTypeAnalytic
	}
	req := chartdomain.CreateRequest{
		Code:             n.code,
		Description:      n.description,
		PlanType:         planType,
		ParentID:         parentID,
		RevenueOrExpense: root.kind,
		DebitOrCredit:    root.side,
		Global:           true,
	}
	if n.fixedOrVariable != "" {
		fixedOrVariable := n.fixedOrVariable
		req.FixedOrVariable = &fixedOrVariable
	}
	if n.costOrExpense != "" {
		costOrExpense := n.costOrExpense
		req.CostOrExpense = &costOrExpense
	}
	return req
}
