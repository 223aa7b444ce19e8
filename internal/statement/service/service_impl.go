package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/bookkeeper/internal/observability/metrics"
	"github.com/smallbiznis/bookkeeper/internal/statement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const reportName = "statement"

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repo       domain.Repository
	LedgerRepo ledgerdomain.Repository

	ObsMetrics   *obsmetrics.Metrics      `optional:"true"`
	StoreMetrics *obsmetrics.StoreMetrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	repo         domain.Repository
	ledgerRepo   ledgerdomain.Repository
	obsMetrics   *obsmetrics.Metrics
	storeMetrics *obsmetrics.StoreMetrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("statement.service"),
		repo:         p.Repo,
		ledgerRepo:   p.LedgerRepo,
		obsMetrics:   p.ObsMetrics,
		storeMetrics: p.StoreMetrics,
	}
}

func (s *Service) Statement(ctx context.Context, orgID snowflake.ID, req domain.StatementRequest) (domain.Statement, error) {
	if orgID == 0 {
		return domain.Statement{}, domain.ErrInvalidOrganization
	}
	started := time.Now()
	defer func() { s.storeMetrics.ObserveReport(reportName, time.Since(started)) }()
	s.obsMetrics.RecordReport(ctx, reportName)

	dateFrom := normalizeOptional(req.DateFrom)
	dateTo := normalizeOptional(req.DateTo)
	if dateFrom != nil && dateTo != nil && dateFrom.After(*dateTo) {
		return domain.Statement{}, domain.ErrInvalidDateRange
	}

	opening := decimal.Zero
	if dateFrom != nil {
		sum, err := s.repo.SignedSum(ctx, s.db, orgID, domain.BalanceFilter{
			Before:    dateFrom,
			AccountID: req.AccountID,
		})
		if err != nil {
			return domain.Statement{}, err
		}
		opening = sum
	}

	entries, err := s.ledgerRepo.List(ctx, s.db, orgID, ledgerdomain.ListFilter{
		DateFrom:  dateFrom,
		DateTo:    dateTo,
		AccountID: req.AccountID,
		Operation: req.Operation,
		Confirmed: req.Confirmed,
	})
	if err != nil {
		return domain.Statement{}, err
	}

	totals := domain.Totals{
		OpeningBalance: opening,
		TotalInputs:    decimal.Zero,
		TotalOutputs:   decimal.Zero,
		ToConfirmValue: decimal.Zero,
	}
	balance := opening
	lines := make([]domain.StatementLine, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		line := domain.StatementLine{
			EntryID:        entry.ID,
			Code:           entry.Code,
			IssueDate:      entry.IssueDate,
			PaymentDate:    entry.PaymentDate,
			AccountID:      entry.AccountID,
			Operation:      entry.Operation,
			Amount:         entry.Amount,
			History:        entry.History,
			DocumentNumber: entry.DocumentNumber,
			Confirmed:      entry.Confirmed,
		}

		if entry.Confirmed {
			balance = balance.Add(entry.Operation.Signed(entry.Amount))
			after := balance
			line.BalanceAfter = &after
			if entry.Operation == ledgerdomain.OperationCredit {
				totals.TotalInputs = totals.TotalInputs.Add(entry.Amount)
			} else {
				totals.TotalOutputs = totals.TotalOutputs.Add(entry.Amount)
			}
		} else {
			totals.ToConfirmQty++
			totals.ToConfirmValue = totals.ToConfirmValue.Add(entry.Amount)
		}
		lines = append(lines, line)
	}
	totals.ClosingBalance = balance

	return domain.Statement{
		DateFrom:  dateFrom,
		DateTo:    dateTo,
		AccountID: req.AccountID,
		Lines:     lines,
		Totals:    totals,
	}, nil
}

func (s *Service) AccountBalance(ctx context.Context, orgID snowflake.ID, accountID snowflake.ID) (decimal.Decimal, error) {
	if orgID == 0 {
		return decimal.Zero, domain.ErrInvalidOrganization
	}
	if accountID == 0 {
		return decimal.Zero, domain.ErrInvalidAccount
	}
	return s.repo.SignedSum(ctx, s.db, orgID, domain.BalanceFilter{AccountID: &accountID})
}

func normalizeOptional(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	normalized := ledgerdomain.NormalizeDate(*t)
	return &normalized
}
