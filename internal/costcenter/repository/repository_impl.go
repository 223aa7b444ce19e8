package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookkeeper/internal/costcenter/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, center *domain.CostCenter) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO cost_centers (id, org_id, code, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		center.ID,
		center.OrgID,
		center.Code,
		center.Description,
		center.CreatedAt,
		center.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.CostCenter, error) {
	var centers []*domain.CostCenter
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Limit(1).
		Find(&centers).Error
	if err != nil {
		return nil, err
	}
	if len(centers) == 0 {
		return nil, nil
	}
	return centers[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*domain.CostCenter, error) {
	var centers []*domain.CostCenter
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("code asc").
		Find(&centers).Error
	return centers, err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM cost_centers WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}

func (r *repo) CountSplitReferences(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM ledger_entry_splits WHERE org_id = ? AND cost_center_id = ?`,
		orgID,
		id,
	).Scan(&count).Error
	return count, err
}
