package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookkeeper/internal/dre/domain"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/bookkeeper/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const reportName = "dre"

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository

	ObsMetrics   *obsmetrics.Metrics      `optional:"true"`
	StoreMetrics *obsmetrics.StoreMetrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	repo         domain.Repository
	obsMetrics   *obsmetrics.Metrics
	storeMetrics *obsmetrics.StoreMetrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("dre.service"),
		repo:         p.Repo,
		obsMetrics:   p.ObsMetrics,
		storeMetrics: p.StoreMetrics,
	}
}

func (s *Service) Run(ctx context.Context, orgID snowflake.ID, req domain.DRERequest) (domain.Report, error) {
	if orgID == 0 {
		return domain.Report{}, domain.ErrInvalidOrganization
	}
	if req.DateFrom.IsZero() {
		return domain.Report{}, domain.ErrInvalidDateFrom
	}
	if req.DateTo.IsZero() {
		return domain.Report{}, domain.ErrInvalidDateTo
	}
	from := ledgerdomain.NormalizeDate(req.DateFrom)
	to := ledgerdomain.NormalizeDate(req.DateTo)
	if from.After(to) {
		return domain.Report{}, domain.ErrInvalidDateRange
	}

	started := time.Now()
	defer func() { s.storeMetrics.ObserveReport(reportName, time.Since(started)) }()
	s.obsMetrics.RecordReport(ctx, reportName)

	totals, err := s.repo.AccountTotals(ctx, s.db, orgID, from, to)
	if err != nil {
		return domain.Report{}, err
	}
	return domain.Build(domain.DRERequest{DateFrom: from, DateTo: to}, totals), nil
}
