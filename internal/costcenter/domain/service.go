package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateRequest struct {
	Code        string
	Description string
}

type Service interface {
	Create(ctx context.Context, orgID snowflake.ID, req CreateRequest) (CostCenter, error)
	List(ctx context.Context, orgID snowflake.ID) ([]CostCenter, error)
	Get(ctx context.Context, orgID snowflake.ID, id snowflake.ID) (CostCenter, error)
	Delete(ctx context.Context, orgID snowflake.ID, id snowflake.ID) error
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, center *CostCenter) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*CostCenter, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*CostCenter, error)
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	CountSplitReferences(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (int64, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidCode         = errors.New("invalid_code")
	ErrInvalidDescription  = errors.New("invalid_description")
	ErrNotFound            = errors.New("cost_center_not_found")
	ErrCodeExists          = errors.New("cost_center_code_exists")
	ErrCannotDeleteInUse   = errors.New("cannot_delete_in_use")
)
