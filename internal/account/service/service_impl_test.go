package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/account/repository"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	auditrepo "github.com/smallbiznis/bookkeeper/internal/audit/repository"
	auditservice "github.com/smallbiznis/bookkeeper/internal/audit/service"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	"github.com/smallbiznis/bookkeeper/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedBalances map[snowflake.ID]decimal.Decimal

func (f fixedBalances) AccountBalance(_ context.Context, _ snowflake.ID, accountID snowflake.ID) (decimal.Decimal, error) {
	return f[accountID], nil
}

func setupAccountService(t *testing.T, balances domain.BalanceReader) (domain.Service, *gorm.DB, *snowflake.Node) {
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
		Balances: balances,
	})
	return svc, db, node
}

func TestCreateAccount(t *testing.T) {
	svc, _, node := setupAccountService(t, nil)
	ctx := context.Background()
	orgID := node.Generate()

	account, err := svc.Create(ctx, orgID, domain.CreateRequest{Code: " 001 ", Description: "Main bank"})
	require.NoError(t, err)
	assert.Equal(t, "001", account.Code)
	assert.Equal(t, domain.AccountTypeBank, account.AccountType)

	_, err = svc.Create(ctx, orgID, domain.CreateRequest{Code: "001", Description: "Again"})
	assert.ErrorIs(t, err, domain.ErrCodeExists)

	// codes are unique per tenant only
	_, err = svc.Create(ctx, node.Generate(), domain.CreateRequest{Code: "001", Description: "Elsewhere"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, orgID, domain.CreateRequest{Code: "002", Description: "Petty", AccountType: "cash"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, orgID, domain.CreateRequest{Code: "003", Description: "Odd", AccountType: "CRYPTO"})
	assert.ErrorIs(t, err, domain.ErrInvalidAccountType)
	_, err = svc.Create(ctx, orgID, domain.CreateRequest{Code: "", Description: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
	_, err = svc.Create(ctx, orgID, domain.CreateRequest{Code: "004"})
	assert.ErrorIs(t, err, domain.ErrInvalidDescription)
}

func TestGetIncludesBalance(t *testing.T) {
	balances := fixedBalances{}
	svc, _, node := setupAccountService(t, balances)
	ctx := context.Background()
	orgID := node.Generate()

	account, err := svc.Create(ctx, orgID, domain.CreateRequest{Code: "001", Description: "Main bank"})
	require.NoError(t, err)
	balances[account.ID] = decimal.RequireFromString("13149.55")

	got, err := svc.Get(ctx, orgID, account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("13149.55")))

	listed, err := svc.List(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Balance.Equal(got.Balance))

	_, err = svc.Get(ctx, node.Generate(), account.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteAccountInUse(t *testing.T) {
	svc, db, node := setupAccountService(t, nil)
	ctx := context.Background()
	orgID := node.Generate()

	used, err := svc.Create(ctx, orgID, domain.CreateRequest{Code: "001", Description: "Used"})
	require.NoError(t, err)
	unused, err := svc.Create(ctx, orgID, domain.CreateRequest{Code: "002", Description: "Unused"})
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, db.Create(&ledgerdomain.LedgerEntry{
		ID:        node.Generate(),
		OrgID:     orgID,
		Code:      1,
		IssueDate: ledgerdomain.NormalizeDate(now),
		AccountID: used.ID,
		Amount:    decimal.NewFromInt(10),
		Operation: ledgerdomain.OperationCredit,
		DeletedAt: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error)

	assert.ErrorIs(t, svc.Delete(ctx, orgID, used.ID), domain.ErrCannotDeleteInUse, "deleted entries still reference the account")
	require.NoError(t, svc.Delete(ctx, orgID, unused.ID))
	assert.ErrorIs(t, svc.Delete(ctx, orgID, unused.ID), domain.ErrNotFound)
}

func TestAccountMutationsAreAudited(t *testing.T) {
	svc, db, node := setupAccountService(t, nil)
	ctx := context.Background()
	orgID := node.Generate()

	account, err := svc.Create(ctx, orgID, domain.CreateRequest{Code: "001", Description: "Main bank"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, orgID, domain.CreateRequest{Code: "001", Description: "Again"})
	require.ErrorIs(t, err, domain.ErrCodeExists)
	require.NoError(t, svc.Delete(ctx, orgID, account.ID))

	var logs []auditdomain.AuditLog
	require.NoError(t, db.Where("target_type = ?", "account").Order("created_at asc, id asc").Find(&logs).Error)
	require.Len(t, logs, 2, "a rejected create leaves no audit row")
	assert.Equal(t, "account.created", logs[0].Action)
	assert.Equal(t, "account.deleted", logs[1].Action)
	require.NotNil(t, logs[1].TargetID)
	assert.Equal(t, account.ID.String(), *logs[1].TargetID)
	require.NotNil(t, logs[1].OrgID)
	assert.Equal(t, orgID, *logs[1].OrgID)

	before, ok := logs[1].Metadata["before"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "001", before["code"])
}
