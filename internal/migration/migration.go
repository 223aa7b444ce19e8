package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	costcenterdomain "github.com/smallbiznis/bookkeeper/internal/costcenter/domain"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, parents first.
func Models() []any {
	return []any{
		&chartdomain.ChartAccount{},
		&accountdomain.Account{},
		&costcenterdomain.CostCenter{},
		&ledgerdomain.LedgerEntry{},
		&ledgerdomain.LedgerEntrySplit{},
		&auditdomain.AuditLog{},
	}
}

// Run applies the SQL migrations on Postgres and falls back to AutoMigrate elsewhere.
func Run(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if db.IsPostgres(conn) {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}
	return AutoMigrate(conn)
}

func RunMigrations(sqlDB *sql.DB) error {
	if sqlDB == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// migrator.Close would close the shared *sql.DB.

	return nil
}

// AutoMigrate builds the schema from the models and adds the partial index
// gorm tags cannot express.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if conn.Dialector.Name() == "mysql" {
		// MySQL has no partial indexes; the service pre-checks global codes instead.
		return nil
	}
	return conn.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_chart_accounts_global_code ON chart_accounts (code) WHERE org_id IS NULL`,
	).Error
}
