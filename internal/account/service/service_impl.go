package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bookkeeper/internal/account/domain"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	"github.com/smallbiznis/bookkeeper/internal/clock"
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
	Balances domain.BalanceReader
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	auditSvc auditdomain.Service
	balances domain.BalanceReader
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("account.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
		balances: p.Balances,
	}
}

func (s *Service) Create(ctx context.Context, orgID snowflake.ID, req domain.CreateRequest) (domain.Account, error) {
	if orgID == 0 {
		return domain.Account{}, domain.ErrInvalidOrganization
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.Account{}, domain.ErrInvalidCode
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.Account{}, domain.ErrInvalidDescription
	}
	accountType := domain.AccountType(strings.ToUpper(strings.TrimSpace(string(req.AccountType))))
	if accountType == "" {
		accountType = domain.AccountTypeBank
	}
	if !accountType.Valid() {
		return domain.Account{}, domain.ErrInvalidAccountType
	}

	now := s.clock.Now().UTC()
	account := domain.Account{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		Code:        code,
		Description: description,
		AccountType: accountType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &account); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			OrgID:      &orgID,
			Action:     "account.created",
			TargetType: "account",
			TargetID:   account.ID.String(),
			After:      account.Snapshot(),
		})
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Account{}, domain.ErrCodeExists
		}
		return domain.Account{}, err
	}
	return account, nil
}

func (s *Service) List(ctx context.Context, orgID snowflake.ID) ([]domain.AccountWithBalance, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	items, err := s.repo.List(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.AccountWithBalance, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		balance, err := s.balance(ctx, orgID, item.ID)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, domain.AccountWithBalance{Account: *item, Balance: balance})
	}
	return accounts, nil
}

func (s *Service) Get(ctx context.Context, orgID snowflake.ID, id snowflake.ID) (domain.AccountWithBalance, error) {
	if orgID == 0 {
		return domain.AccountWithBalance{}, domain.ErrInvalidOrganization
	}
	if id == 0 {
		return domain.AccountWithBalance{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.AccountWithBalance{}, err
	}
	if item == nil {
		return domain.AccountWithBalance{}, domain.ErrNotFound
	}

	balance, err := s.balance(ctx, orgID, item.ID)
	if err != nil {
		return domain.AccountWithBalance{}, err
	}
	return domain.AccountWithBalance{Account: *item, Balance: balance}, nil
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
		references, err := s.repo.CountEntryReferences(ctx, tx, orgID, id)
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
			Action:     "account.deleted",
			TargetType: "account",
			TargetID:   id.String(),
			Before:     item.Snapshot(),
		})
	})
}

func (s *Service) balance(ctx context.Context, orgID, accountID snowflake.ID) (decimal.Decimal, error) {
	if s.balances == nil {
		return decimal.Zero, nil
	}
	return s.balances.AccountBalance(ctx, orgID, accountID)
}
