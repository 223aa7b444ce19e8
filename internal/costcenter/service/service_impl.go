package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/costcenter/domain"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	AuditSvc auditdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	auditSvc auditdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("costcenter.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, orgID snowflake.ID, req domain.CreateRequest) (domain.CostCenter, error) {
	if orgID == 0 {
		return domain.CostCenter{}, domain.ErrInvalidOrganization
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.CostCenter{}, domain.ErrInvalidCode
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.CostCenter{}, domain.ErrInvalidDescription
	}

	now := s.clock.Now().UTC()
	center := domain.CostCenter{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		Code:        code,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &center); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			OrgID:      &orgID,
			Action:     "cost_center.created",
			TargetType: "cost_center",
			TargetID:   center.ID.String(),
			After:      center.Snapshot(),
		})
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.CostCenter{}, domain.ErrCodeExists
		}
		return domain.CostCenter{}, err
	}
	return center, nil
}

func (s *Service) List(ctx context.Context, orgID snowflake.ID) ([]domain.CostCenter, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	items, err := s.repo.List(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	centers := make([]domain.CostCenter, 0, len(items))
	for _, item := range items {
		if item != nil {
			centers = append(centers, *item)
		}
	}
	return centers, nil
}

func (s *Service) Get(ctx context.Context, orgID snowflake.ID, id snowflake.ID) (domain.CostCenter, error) {
	if orgID == 0 {
		return domain.CostCenter{}, domain.ErrInvalidOrganization
	}
	if id == 0 {
		return domain.CostCenter{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.CostCenter{}, err
	}
	if item == nil {
		return domain.CostCenter{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, orgID snowflake.ID, id snowflake.ID) error {
	if orgID == 0 {
		return domain.ErrInvalidOrganization
	}
	if id == 0 {
		return domain.ErrInvalidID
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		references, err := s.repo.CountSplitReferences(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if references > 0 {
			return domain.ErrCannotDeleteInUse
		}
		if err := s.repo.Delete(ctx, tx, orgID, id); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			OrgID:      &orgID,
			Action:     "cost_center.deleted",
			TargetType: "cost_center",
			TargetID:   id.String(),
			Before:     item.Snapshot(),
		})
	})
}
