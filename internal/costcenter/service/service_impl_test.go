package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	auditrepo "github.com/smallbiznis/bookkeeper/internal/audit/repository"
	auditservice "github.com/smallbiznis/bookkeeper/internal/audit/service"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/costcenter/domain"
	"github.com/smallbiznis/bookkeeper/internal/costcenter/repository"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	"github.com/smallbiznis/bookkeeper/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCostCenterService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db := testsupport.OpenDB(t)
	node := testsupport.Node(t)
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
		AuditSvc: auditservice.NewService(auditservice.Params{
			DB: db, Log: zap.NewNop(), GenID: node, Clock: clk, Repo: auditrepo.Provide(),
		}),
	})
	return svc, db, node
}

func TestCostCenterLifecycle(t *testing.T) {
	svc, db, node := setupCostCenterService(t)
	ctx := context.Background()
	orgID := node.Generate()

	sales, err := svc.Create(ctx, orgID, domain.CreateRequest{Code: "CC1", Description: "Sales"})
	require.NoError(t, err)
	ops, err := svc.Create(ctx, orgID, domain.CreateRequest{Code: "CC2", Description: "Operations"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, orgID, domain.CreateRequest{Code: "CC1", Description: "Dup"})
	assert.ErrorIs(t, err, domain.ErrCodeExists)
	_, err = svc.Create(ctx, orgID, domain.CreateRequest{Code: " ", Description: "Blank"})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	listed, err := svc.List(ctx, orgID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	_, err = svc.Get(ctx, node.Generate(), sales.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	accountID := testsupport.SeedAccount(t, db, node, orgID, "001")
	chartID := testsupport.SeedChartAccount(t, db, node, &orgID, "1", chartdomain.Expense)
	now := time.Now().UTC()
	entryID := node.Generate()
	require.NoError(t, db.Create(&ledgerdomain.LedgerEntry{
		ID:        entryID,
		OrgID:     orgID,
		Code:      1,
		IssueDate: ledgerdomain.NormalizeDate(now),
		AccountID: accountID,
		Amount:    decimal.NewFromInt(10),
		Operation: ledgerdomain.OperationDebit,
		CreatedAt: now,
		UpdatedAt: now,
		Splits: []ledgerdomain.LedgerEntrySplit{{
			ID:             node.Generate(),
			OrgID:          orgID,
			ChartAccountID: chartID,
			CostCenterID:   &sales.ID,
			SplitAmount:    decimal.NewFromInt(10),
			CreatedAt:      now,
		}},
	}).Error)

	assert.ErrorIs(t, svc.Delete(ctx, orgID, sales.ID), domain.ErrCannotDeleteInUse)
	require.NoError(t, svc.Delete(ctx, orgID, ops.ID))
	assert.ErrorIs(t, svc.Delete(ctx, orgID, ops.ID), domain.ErrNotFound)
}

func TestCostCenterMutationsAreAudited(t *testing.T) {
	svc, db, node := setupCostCenterService(t)
	ctx := context.Background()
	orgID := node.Generate()

	center, err := svc.Create(ctx, orgID, domain.CreateRequest{Code: "CC1", Description: "Sales"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, orgID, center.ID))
	require.ErrorIs(t, svc.Delete(ctx, orgID, center.ID), domain.ErrNotFound)

	var actions []string
	require.NoError(t, db.Model(&auditdomain.AuditLog{}).
		Where("target_id = ?", center.ID.String()).
		Order("created_at asc, id asc").
		Pluck("action", &actions).Error)
	assert.Equal(t, []string{"cost_center.created", "cost_center.deleted"}, actions)
}
