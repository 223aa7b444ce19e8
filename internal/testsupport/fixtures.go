package testsupport

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	costcenterdomain "github.com/smallbiznis/bookkeeper/internal/costcenter/domain"
	"gorm.io/gorm"
)

// SeedAccount inserts a BANK account for orgID.
func SeedAccount(t testing.TB, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID, code string) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	account := accountdomain.Account{
		ID:          node.Generate(),
		OrgID:       orgID,
		Code:        code,
		Description: "Account " + code,
		AccountType: accountdomain.AccountTypeBank,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account.ID
}

// SeedChartAccount inserts a SYNTHETIC node; a nil orgID makes it global.
func SeedChartAccount(t testing.TB, db *gorm.DB, node *snowflake.Node, orgID *snowflake.ID, code string, kind chartdomain.RevenueOrExpense) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	debitOrCredit := chartdomain.Credit
	if kind == chartdomain.Expense {
		debitOrCredit = chartdomain.Debit
	}
	account := chartdomain.ChartAccount{
		ID:               node.Generate(),
		OrgID:            orgID,
		Code:             code,
		Description:      "Chart " + code,
		PlanType:         chartdomain.PlanTypeSynthetic,
		RevenueOrExpense: kind,
		DebitOrCredit:    debitOrCredit,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("seed chart account: %v", err)
	}
	return account.ID
}

func SeedCostCenter(t testing.TB, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID, code string) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	center := costcenterdomain.CostCenter{
		ID:          node.Generate(),
		OrgID:       orgID,
		Code:        code,
		Description: "Cost center " + code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&center).Error; err != nil {
		t.Fatalf("seed cost center: %v", err)
	}
	return center.ID
}
