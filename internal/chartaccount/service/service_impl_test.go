package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	auditrepo "github.com/smallbiznis/bookkeeper/internal/audit/repository"
	auditservice "github.com/smallbiznis/bookkeeper/internal/audit/service"
	"github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	"github.com/smallbiznis/bookkeeper/internal/chartaccount/repository"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/config"
	"github.com/smallbiznis/bookkeeper/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type chartFixture struct {
	svc   domain.Service
	db    *gorm.DB
	node  *snowflake.Node
	orgID snowflake.ID
}

func setupChartService(t *testing.T, repo domain.Repository) chartFixture {
	t.Helper()

	db := testsupport.OpenDB(t)
	node := testsupport.Node(t)
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	if repo == nil {
		repo = repository.Provide()
	}

	audit := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  auditrepo.Provide(),
	})

	svc := NewService(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Repo:     repo,
		AuditSvc: audit,
		Settings: config.NewStaticLedgerSettings(config.DefaultLedgerSettings()),
	})
	return chartFixture{svc: svc, db: db, node: node, orgID: node.Generate()}
}

func synthetic(code string) domain.CreateRequest {
	return domain.CreateRequest{
		Code:             code,
		Description:      "Revenue",
		PlanType:         domain.PlanTypeSynthetic,
		RevenueOrExpense: domain.Revenue,
		DebitOrCredit:    domain.Credit,
	}
}

func analytic(parentID snowflake.ID) domain.CreateRequest {
	return domain.CreateRequest{
		Description:      "Sales",
		PlanType:         domain.PlanTypeAnalytic,
		ParentID:         &parentID,
		RevenueOrExpense: domain.Revenue,
		DebitOrCredit:    domain.Credit,
	}
}

func TestCreateGeneratesChildCodes(t *testing.T) {
	f := setupChartService(t, nil)
	ctx := context.Background()

	root, err := f.svc.Create(ctx, f.orgID, synthetic("1"), false)
	require.NoError(t, err)

	first, err := f.svc.Create(ctx, f.orgID, analytic(root.ID), false)
	require.NoError(t, err)
	assert.Equal(t, "1.01", first.Code)
	assert.True(t, first.Active)

	second, err := f.svc.Create(ctx, f.orgID, analytic(root.ID), false)
	require.NoError(t, err)
	assert.Equal(t, "1.02", second.Code)

	var audits int64
	require.NoError(t, f.db.Model(&auditdomain.AuditLog{}).Where("action = ?", "chart_account.created").Count(&audits).Error)
	assert.EqualValues(t, 3, audits)
}

func TestCreateGeneratesRootCodes(t *testing.T) {
	f := setupChartService(t, nil)
	ctx := context.Background()

	req := synthetic("")
	first, err := f.svc.Create(ctx, f.orgID, req, false)
	require.NoError(t, err)
	assert.Equal(t, "1", first.Code)

	second, err := f.svc.Create(ctx, f.orgID, req, false)
	require.NoError(t, err)
	assert.Equal(t, "2", second.Code)

	// another tenant starts its own sequence
	other, err := f.svc.Create(ctx, f.node.Generate(), req, false)
	require.NoError(t, err)
	assert.Equal(t, "1", other.Code)
}

func TestCreateRules(t *testing.T) {
	f := setupChartService(t, nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.orgID, domain.CreateRequest{
		Description:      "Orphan",
		PlanType:         domain.PlanTypeAnalytic,
		RevenueOrExpense: domain.Expense,
		DebitOrCredit:    domain.Debit,
	}, false)
	assert.ErrorIs(t, err, domain.ErrAnaliticaRequiresParent)

	globalReq := synthetic("9")
	globalReq.Global = true
	_, err = f.svc.Create(ctx, f.orgID, globalReq, false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	global, err := f.svc.Create(ctx, f.orgID, globalReq, true)
	require.NoError(t, err)
	assert.True(t, global.IsGlobal())

	_, err = f.svc.Create(ctx, f.orgID, analytic(global.ID), false)
	assert.ErrorIs(t, err, domain.ErrParentScopeMismatch)

	_, err = f.svc.Create(ctx, f.orgID, analytic(f.node.Generate()), false)
	assert.ErrorIs(t, err, domain.ErrParentNotFound)

	_, err = f.svc.Create(ctx, f.orgID, globalReq, true)
	assert.ErrorIs(t, err, domain.ErrCodeExists)

	_, err = f.svc.Create(ctx, f.orgID, synthetic("9"), false)
	require.NoError(t, err, "tenant and global scopes have separate codes")
	_, err = f.svc.Create(ctx, f.orgID, synthetic("9"), false)
	assert.ErrorIs(t, err, domain.ErrCodeExists)

	bad := synthetic("")
	bad.PlanType = "LEAF"
	_, err = f.svc.Create(ctx, f.orgID, bad, false)
	assert.ErrorIs(t, err, domain.ErrInvalidPlanType)
}

type collidingRepo struct {
	domain.Repository
	inserts int
}

func (r *collidingRepo) Insert(ctx context.Context, db *gorm.DB, account *domain.ChartAccount) error {
	r.inserts++
	return gorm.ErrDuplicatedKey
}

func TestCreateGivesUpAfterConfiguredAttempts(t *testing.T) {
	repo := &collidingRepo{Repository: repository.Provide()}
	f := setupChartService(t, repo)

	_, err := f.svc.Create(context.Background(), f.orgID, synthetic(""), false)
	assert.ErrorIs(t, err, domain.ErrCodeGenerationExhausted)
	assert.Equal(t, 3, repo.inserts)
}

func TestUpdateParentRules(t *testing.T) {
	f := setupChartService(t, nil)
	ctx := context.Background()

	root, err := f.svc.Create(ctx, f.orgID, synthetic("1"), false)
	require.NoError(t, err)
	child, err := f.svc.Create(ctx, f.orgID, analytic(root.ID), false)
	require.NoError(t, err)
	grandchild, err := f.svc.Create(ctx, f.orgID, analytic(child.ID), false)
	require.NoError(t, err)
	assert.Equal(t, "1.01.01", grandchild.Code)

	_, err = f.svc.Update(ctx, f.orgID, root.ID, domain.UpdateRequest{ParentID: &root.ID}, false)
	assert.ErrorIs(t, err, domain.ErrInvalidParent)

	_, err = f.svc.Update(ctx, f.orgID, root.ID, domain.UpdateRequest{ParentID: &grandchild.ID}, false)
	assert.ErrorIs(t, err, domain.ErrInvalidParent)

	_, err = f.svc.Update(ctx, f.orgID, child.ID, domain.UpdateRequest{ClearParent: true}, false)
	assert.ErrorIs(t, err, domain.ErrAnaliticaRequiresParent)

	description := "Product sales"
	updated, err := f.svc.Update(ctx, f.orgID, child.ID, domain.UpdateRequest{Description: &description}, false)
	require.NoError(t, err)
	assert.Equal(t, description, updated.Description)

	var audit auditdomain.AuditLog
	require.NoError(t, f.db.Where("action = ?", "chart_account.updated").First(&audit).Error)
	before, ok := audit.Metadata["before"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Sales", before["description"])
}

func TestUpdateScopeRules(t *testing.T) {
	f := setupChartService(t, nil)
	ctx := context.Background()

	root, err := f.svc.Create(ctx, f.orgID, synthetic("1"), false)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.orgID, analytic(root.ID), false)
	require.NoError(t, err)
	lone, err := f.svc.Create(ctx, f.orgID, synthetic("5"), false)
	require.NoError(t, err)

	global := true
	_, err = f.svc.Update(ctx, f.orgID, lone.ID, domain.UpdateRequest{Global: &global}, false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Update(ctx, f.orgID, root.ID, domain.UpdateRequest{Global: &global}, true)
	assert.ErrorIs(t, err, domain.ErrCannotChangeScopeWithChildren)

	_, err = f.svc.Update(ctx, f.orgID, lone.ID, domain.UpdateRequest{Global: &global, ClearParent: true}, true)
	assert.ErrorIs(t, err, domain.ErrCannotChangeScopeAndParent)

	moved, err := f.svc.Update(ctx, f.orgID, lone.ID, domain.UpdateRequest{Global: &global}, true)
	require.NoError(t, err)
	assert.True(t, moved.IsGlobal())

	description := "edited"
	_, err = f.svc.Update(ctx, f.orgID, moved.ID, domain.UpdateRequest{Description: &description}, false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	code := "1"
	_, err = f.svc.Update(ctx, f.orgID, moved.ID, domain.UpdateRequest{Code: &code}, true)
	require.NoError(t, err, "global scope does not see tenant code 1")

	_, err = f.svc.Update(ctx, f.node.Generate(), root.ID, domain.UpdateRequest{Description: &description}, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteGuards(t *testing.T) {
	f := setupChartService(t, nil)
	ctx := context.Background()

	root, err := f.svc.Create(ctx, f.orgID, synthetic("1"), false)
	require.NoError(t, err)
	child, err := f.svc.Create(ctx, f.orgID, analytic(root.ID), false)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.orgID, root.ID, false), domain.ErrCannotDeleteWithChildren)

	now := time.Now().UTC()
	entryID := f.node.Generate()
	require.NoError(t, f.db.Exec(
		`INSERT INTO ledger_entries (id, org_id, code, issue_date, account_id, amount, operation, history, document_number, confirmed, created_at, updated_at)
		 VALUES (?, ?, 1, ?, ?, '10.00', 'CREDIT', '', '', false, ?, ?)`,
		entryID, f.orgID, now, f.node.Generate(), now, now,
	).Error)
	require.NoError(t, f.db.Exec(
		`INSERT INTO ledger_entry_splits (id, org_id, entry_id, chart_account_id, split_amount, created_at)
		 VALUES (?, ?, ?, ?, '10.00', ?)`,
		f.node.Generate(), f.orgID, entryID, child.ID, now,
	).Error)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.orgID, child.ID, false), domain.ErrCannotDeleteInUse)

	lone, err := f.svc.Create(ctx, f.orgID, synthetic("7"), false)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, f.orgID, lone.ID, false))
	_, err = f.svc.Get(ctx, f.orgID, lone.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListVisibility(t *testing.T) {
	f := setupChartService(t, nil)
	ctx := context.Background()

	globalReq := synthetic("2")
	globalReq.Global = true
	_, err := f.svc.Create(ctx, f.orgID, globalReq, true)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.orgID, synthetic("1"), false)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.node.Generate(), synthetic("3"), false)
	require.NoError(t, err)

	own, err := f.svc.List(ctx, f.orgID, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "1", own[0].Code)

	visible, err := f.svc.List(ctx, f.orgID, domain.ListFilter{IncludeGlobal: true})
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "1", visible[0].Code)
	assert.Equal(t, "2", visible[1].Code)
}
