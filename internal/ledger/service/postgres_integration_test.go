package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	auditrepo "github.com/smallbiznis/bookkeeper/internal/audit/repository"
	auditservice "github.com/smallbiznis/bookkeeper/internal/audit/service"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/config"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	"github.com/smallbiznis/bookkeeper/internal/ledger/repository"
	"github.com/smallbiznis/bookkeeper/internal/migration"
	"github.com/smallbiznis/bookkeeper/internal/testsupport"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() || os.Getenv("BOOKKEEPER_INTEGRATION") != "1" {
		t.Skip("set BOOKKEEPER_INTEGRATION=1 to run postgres integration tests")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("bookkeeper_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.Run(conn))
	return conn
}

func TestPostgresConcurrentCreatesKeepCodesUnique(t *testing.T) {
	conn := openPostgres(t)
	node := testsupport.Node(t)
	clk := clock.NewFakeClock(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	orgID := node.Generate()

	settings := config.DefaultLedgerSettings()
	settings.CodeGenerationAttempts = 20

	svc := NewService(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
		AuditSvc: auditservice.NewService(auditservice.Params{
			DB: conn, Log: zap.NewNop(), GenID: node, Clock: clk, Repo: auditrepo.Provide(),
		}),
		Settings: config.NewStaticLedgerSettings(settings),
	})
	f := ledgerFixture{
		svc:       svc,
		db:        conn,
		orgID:     orgID,
		accountID: testsupport.SeedAccount(t, conn, node, orgID, "001"),
	}

	const workers = 6
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), orgID, ledgerdomain.CreateRequest{EntryInput: f.input("1", false)})
			if err != nil {
				assert.True(t, errors.Is(err, ledgerdomain.ErrCodeGenerationExhausted), "unexpected error: %v", err)
				return
			}
			mu.Lock()
			created++
			mu.Unlock()
		}()
	}
	wg.Wait()

	var codes []int64
	require.NoError(t, conn.Model(&ledgerdomain.LedgerEntry{}).Where("org_id = ?", orgID).Order("code asc").Pluck("code", &codes).Error)
	require.Len(t, codes, created)
	seen := make(map[int64]bool, len(codes))
	for _, code := range codes {
		assert.False(t, seen[code], "duplicate code %d", code)
		seen[code] = true
	}
}

func TestPostgresGlobalCodesAreUnique(t *testing.T) {
	conn := openPostgres(t)
	node := testsupport.Node(t)

	testsupport.SeedChartAccount(t, conn, node, nil, "9", chartdomain.Revenue)

	now := time.Now().UTC()
	duplicate := chartdomain.ChartAccount{
		ID:               node.Generate(),
		Code:             "9",
		Description:      "Duplicate",
		PlanType:         chartdomain.PlanTypeSynthetic,
		RevenueOrExpense: chartdomain.Revenue,
		DebitOrCredit:    chartdomain.Credit,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err := conn.Create(&duplicate).Error
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKeyErr(err))

	// the same code stays free for tenants
	orgID := node.Generate()
	testsupport.SeedChartAccount(t, conn, node, &orgID, "9", chartdomain.Revenue)
}
