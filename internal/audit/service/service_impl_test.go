package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	"github.com/smallbiznis/bookkeeper/internal/audit/repository"
	"github.com/smallbiznis/bookkeeper/internal/auditcontext"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuditService(t *testing.T) (auditdomain.Service, *gorm.DB, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	db := testsupport.OpenDB(t)
	node := testsupport.Node(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	})
	return svc, db, clk, node
}

func TestRecordStoresSnapshotsAndActor(t *testing.T) {
	svc, db, _, node := setupAuditService(t)
	orgID := node.Generate()

	ctx := auditcontext.WithActor(context.Background(), auditcontext.ActorTypeUser, "u-1")
	ctx = auditcontext.WithRequestID(ctx, "req-9")

	err := svc.Record(ctx, nil, auditdomain.Entry{
		OrgID:      &orgID,
		Action:     "ledger_entry.updated",
		TargetType: "ledger_entry",
		TargetID:   "123",
		Before:     map[string]any{"amount": "10"},
		After:      map[string]any{"amount": "12"},
	})
	require.NoError(t, err)

	var row auditdomain.AuditLog
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, "user", row.ActorType)
	require.NotNil(t, row.ActorID)
	assert.Equal(t, "u-1", *row.ActorID)
	assert.Equal(t, "req-9", row.Metadata["request_id"])
	assert.Equal(t, map[string]any{"amount": "10"}, row.Metadata["before"])
	assert.Equal(t, map[string]any{"amount": "12"}, row.Metadata["after"])
}

func TestRecordRequiresAction(t *testing.T) {
	svc, _, _, _ := setupAuditService(t)
	err := svc.Record(context.Background(), nil, auditdomain.Entry{Action: "  "})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}

func TestRecordInsideRolledBackTransactionLeavesNoRow(t *testing.T) {
	svc, db, _, node := setupAuditService(t)
	orgID := node.Generate()

	boom := fmt.Errorf("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.Record(context.Background(), tx, auditdomain.Entry{OrgID: &orgID, Action: "x.created", TargetType: "x"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&auditdomain.AuditLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc, _, clk, node := setupAuditService(t)
	orgID := node.Generate()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(ctx, nil, auditdomain.Entry{
			OrgID:      &orgID,
			Action:     fmt.Sprintf("step.%d", i),
			TargetType: "test",
		}))
		clk.Advance(time.Minute)
	}

	req := auditdomain.ListAuditLogRequest{OrgID: orgID}
	req.PageSize = 2
	first, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, first.AuditLogs, 2)
	assert.True(t, first.HasMore)
	assert.Equal(t, "step.2", first.AuditLogs[0].Action)

	req.PageToken = first.NextPageToken
	second, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, second.AuditLogs, 1)
	assert.False(t, second.HasMore)
	assert.Equal(t, "step.0", second.AuditLogs[0].Action)
}

func TestListRejectsBadToken(t *testing.T) {
	svc, _, _, node := setupAuditService(t)
	req := auditdomain.ListAuditLogRequest{OrgID: node.Generate()}
	req.PageToken = "not-a-token"
	_, err := svc.List(context.Background(), req)
	assert.ErrorIs(t, err, auditdomain.ErrInvalidPageToken)
}

func TestListMatchesActionPrefix(t *testing.T) {
	svc, _, _, node := setupAuditService(t)
	orgID := node.Generate()
	ctx := context.Background()

	for _, action := range []string{"ledger_entry.created", "ledger_entry.confirmed", "chart_account.created"} {
		require.NoError(t, svc.Record(ctx, nil, auditdomain.Entry{OrgID: &orgID, Action: action, TargetType: "test"}))
	}

	resp, err := svc.List(ctx, auditdomain.ListAuditLogRequest{OrgID: orgID, Action: "ledger_entry.*"})
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 2)

	resp, err = svc.List(ctx, auditdomain.ListAuditLogRequest{OrgID: orgID, Action: "chart_account.created"})
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 1)
}
