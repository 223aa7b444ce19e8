package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	"github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/config"
	"github.com/smallbiznis/bookkeeper/internal/observability/metrics"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxTreeDepth bounds the ancestor walk used for cycle detection.
const maxTreeDepth = 64

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	AuditSvc auditdomain.Service
	Settings *config.LedgerSettingsHolder

	Metrics      *metrics.Metrics      `optional:"true"`
	StoreMetrics *metrics.StoreMetrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	auditSvc     auditdomain.Service
	settings     *config.LedgerSettingsHolder
	metrics      *metrics.Metrics
	storeMetrics *metrics.StoreMetrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("chartaccount.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		auditSvc:     p.AuditSvc,
		settings:     p.Settings,
		metrics:      p.Metrics,
		storeMetrics: p.StoreMetrics,
	}
}

func (s *Service) List(ctx context.Context, orgID snowflake.ID, filter domain.ListFilter) ([]domain.ChartAccount, error) {
	if orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	items, err := s.repo.List(ctx, s.db, orgID, filter)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.ChartAccount, 0, len(items))
	for _, item := range items {
		if item != nil {
			accounts = append(accounts, *item)
		}
	}
	return accounts, nil
}

func (s *Service) Get(ctx context.Context, orgID snowflake.ID, id snowflake.ID) (domain.ChartAccount, error) {
	if orgID == 0 {
		return domain.ChartAccount{}, domain.ErrInvalidOrganization
	}
	if id == 0 {
		return domain.ChartAccount{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindVisible(ctx, s.db, orgID, id)
	if err != nil {
		return domain.ChartAccount{}, err
	}
	if item == nil {
		return domain.ChartAccount{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Create(ctx context.Context, orgID snowflake.ID, req domain.CreateRequest, isAdmin bool) (domain.ChartAccount, error) {
	if orgID == 0 {
		return domain.ChartAccount{}, domain.ErrInvalidOrganization
	}
	if err := validateCreate(req); err != nil {
		return domain.ChartAccount{}, err
	}
	if req.Global && !isAdmin {
		return domain.ChartAccount{}, domain.ErrForbidden
	}
	if req.PlanType == domain.PlanTypeAnalytic && req.ParentID == nil {
		return domain.ChartAccount{}, domain.ErrAnaliticaRequiresParent
	}

	scope := scopeFor(orgID, req.Global)

	var parent *domain.ChartAccount
	if req.ParentID != nil {
		found, err := s.repo.FindVisible(ctx, s.db, orgID, *req.ParentID)
		if err != nil {
			return domain.ChartAccount{}, err
		}
		if found == nil {
			return domain.ChartAccount{}, domain.ErrParentNotFound
		}
		if !sameScope(found.OrgID, scope) {
			return domain.ChartAccount{}, domain.ErrParentScopeMismatch
		}
		parent = found
	}

	code := strings.TrimSpace(req.Code)
	if code != "" {
		exists, err := s.repo.CodeExists(ctx, s.db, scope, code, 0)
		if err != nil {
			return domain.ChartAccount{}, err
		}
		if exists {
			return domain.ChartAccount{}, domain.ErrCodeExists
		}
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	account := domain.ChartAccount{
		OrgID:            scope,
		Code:             code,
		Description:      strings.TrimSpace(req.Description),
		PlanType:         req.PlanType,
		ParentID:         req.ParentID,
		RevenueOrExpense: req.RevenueOrExpense,
		DebitOrCredit:    req.DebitOrCredit,
		FixedOrVariable:  req.FixedOrVariable,
		CostOrExpense:    req.CostOrExpense,
		Active:           active,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	settings := s.settings.Get()
	attempts := settings.CodeGenerationAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		account.ID = s.genID.Generate()
		if code == "" {
			account.Code = ""
		}

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// The parent stays locked so its scope cannot move under the new child.
			if parent != nil {
				locked, err := s.repo.FindVisibleForUpdate(ctx, tx, orgID, parent.ID)
				if err != nil {
					return err
				}
				if locked == nil {
					return domain.ErrParentNotFound
				}
				if !sameScope(locked.OrgID, scope) {
					return domain.ErrParentScopeMismatch
				}
				parent = locked
			}
			if account.Code == "" {
				generated, err := s.generateCode(ctx, tx, scope, parent, settings.ChildCodeWidth)
				if err != nil {
					return err
				}
				account.Code = generated
			}
			if err := s.repo.Insert(ctx, tx, &account); err != nil {
				return err
			}
			return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
				OrgID:      &orgID,
				Action:     "chart_account.created",
				TargetType: "chart_account",
				TargetID:   account.ID.String(),
				After:      account.Snapshot(),
			})
		})
		if err == nil {
			s.metrics.RecordChartAccount(ctx, "created", account.Scope())
			return account, nil
		}
		if errors.Is(err, domain.ErrParentNotFound) || errors.Is(err, domain.ErrParentScopeMismatch) {
			return domain.ChartAccount{}, err
		}

		if !db.IsDuplicateKeyErr(err) {
			s.storeMetrics.IncError(metrics.OperationChartAccountCreate, err)
			return domain.ChartAccount{}, err
		}
		if code != "" {
			return domain.ChartAccount{}, domain.ErrCodeExists
		}
		s.storeMetrics.IncRetry(metrics.OperationChartAccountCreate, err)
		if attempt >= attempts {
			s.log.Error("chart account code generation exhausted",
				zap.String("org_id", orgID.String()),
				zap.Int("attempts", attempts),
			)
			return domain.ChartAccount{}, domain.ErrCodeGenerationExhausted
		}
		s.log.Warn("chart account code collided, retrying",
			zap.String("code", account.Code),
			zap.Int("attempt", attempt),
		)
	}
}

func (s *Service) Update(ctx context.Context, orgID snowflake.ID, id snowflake.ID, req domain.UpdateRequest, isAdmin bool) (domain.ChartAccount, error) {
	if orgID == 0 {
		return domain.ChartAccount{}, domain.ErrInvalidOrganization
	}
	if id == 0 {
		return domain.ChartAccount{}, domain.ErrInvalidID
	}
	if err := validateUpdate(req); err != nil {
		return domain.ChartAccount{}, err
	}

	var next domain.ChartAccount
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.findOwned(ctx, tx, orgID, id, isAdmin)
		if err != nil {
			return err
		}
		next, err = s.applyUpdate(ctx, tx, orgID, current, req, isAdmin)
		if err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, &next); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			OrgID:      &orgID,
			Action:     "chart_account.updated",
			TargetType: "chart_account",
			TargetID:   next.ID.String(),
			Before:     current.Snapshot(),
			After:      next.Snapshot(),
		})
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ChartAccount{}, domain.ErrCodeExists
		}
		return domain.ChartAccount{}, err
	}

	s.metrics.RecordChartAccount(ctx, "updated", next.Scope())
	return next, nil
}

// applyUpdate validates req against the locked current row and returns the
// row to store. Every read goes through tx.
func (s *Service) applyUpdate(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, current *domain.ChartAccount, req domain.UpdateRequest, isAdmin bool) (domain.ChartAccount, error) {
	targetGlobal := current.IsGlobal()
	scopeChanged := false
	if req.Global != nil && *req.Global != current.IsGlobal() {
		if !isAdmin {
			return domain.ChartAccount{}, domain.ErrForbidden
		}
		if req.ParentID != nil || req.ClearParent {
			return domain.ChartAccount{}, domain.ErrCannotChangeScopeAndParent
		}
		children, err := s.repo.CountChildren(ctx, tx, current.ID)
		if err != nil {
			return domain.ChartAccount{}, err
		}
		if children > 0 {
			return domain.ChartAccount{}, domain.ErrCannotChangeScopeWithChildren
		}
		targetGlobal = *req.Global
		scopeChanged = true
	}
	scope := scopeFor(orgID, targetGlobal)

	next := *current
	next.OrgID = scope

	switch {
	case req.ClearParent:
		next.ParentID = nil
	case req.ParentID != nil:
		if err := s.checkParent(ctx, tx, orgID, current.ID, *req.ParentID, scope); err != nil {
			return domain.ChartAccount{}, err
		}
		parentID := *req.ParentID
		next.ParentID = &parentID
	case next.ParentID != nil && scopeChanged:
		parent, err := s.repo.FindVisibleForUpdate(ctx, tx, orgID, *next.ParentID)
		if err != nil {
			return domain.ChartAccount{}, err
		}
		if parent == nil || !sameScope(parent.OrgID, scope) {
			return domain.ChartAccount{}, domain.ErrParentScopeMismatch
		}
	}

	codeChanged := false
	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		codeChanged = code != current.Code
		next.Code = code
	}
	if req.Description != nil {
		next.Description = strings.TrimSpace(*req.Description)
	}
	if req.PlanType != nil {
		next.PlanType = *req.PlanType
	}
	if req.RevenueOrExpense != nil {
		next.RevenueOrExpense = *req.RevenueOrExpense
	}
	if req.DebitOrCredit != nil {
		next.DebitOrCredit = *req.DebitOrCredit
	}
	if req.FixedOrVariable != nil {
		next.FixedOrVariable = req.FixedOrVariable
	}
	if req.CostOrExpense != nil {
		next.CostOrExpense = req.CostOrExpense
	}
	if req.Active != nil {
		next.Active = *req.Active
	}

	if next.PlanType == domain.PlanTypeAnalytic && next.ParentID == nil {
		return domain.ChartAccount{}, domain.ErrAnaliticaRequiresParent
	}
	if codeChanged || scopeChanged {
		exists, err := s.repo.CodeExists(ctx, tx, scope, next.Code, current.ID)
		if err != nil {
			return domain.ChartAccount{}, err
		}
		if exists {
			return domain.ChartAccount{}, domain.ErrCodeExists
		}
	}

	next.UpdatedAt = s.clock.Now().UTC()
	return next, nil
}

func (s *Service) Delete(ctx context.Context, orgID snowflake.ID, id snowflake.ID, isAdmin bool) error {
	if orgID == 0 {
		return domain.ErrInvalidOrganization
	}
	if id == 0 {
		return domain.ErrInvalidID
	}

	var deleted *domain.ChartAccount
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.findOwned(ctx, tx, orgID, id, isAdmin)
		if err != nil {
			return err
		}
		children, err := s.repo.CountChildren(ctx, tx, current.ID)
		if err != nil {
			return err
		}
		if children > 0 {
			return domain.ErrCannotDeleteWithChildren
		}
		references, err := s.repo.CountSplitReferences(ctx, tx, current.ID)
		if err != nil {
			return err
		}
		if references > 0 {
			return domain.ErrCannotDeleteInUse
		}

		if err := s.repo.Delete(ctx, tx, current.ID); err != nil {
			return err
		}
		deleted = current
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			OrgID:      &orgID,
			Action:     "chart_account.deleted",
			TargetType: "chart_account",
			TargetID:   current.ID.String(),
			Before:     current.Snapshot(),
		})
	})
	if err != nil {
		return err
	}

	s.metrics.RecordChartAccount(ctx, "deleted", deleted.Scope())
	return nil
}

// findOwned locks a visible node and rejects writes to global nodes by non-admins.
func (s *Service) findOwned(ctx context.Context, tx *gorm.DB, orgID, id snowflake.ID, isAdmin bool) (*domain.ChartAccount, error) {
	current, err := s.repo.FindVisibleForUpdate(ctx, tx, orgID, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if current.IsGlobal() && !isAdmin {
		return nil, domain.ErrForbidden
	}
	return current, nil
}

func (s *Service) checkParent(ctx context.Context, tx *gorm.DB, orgID, nodeID, parentID snowflake.ID, scope *snowflake.ID) error {
	if parentID == nodeID {
		return domain.ErrInvalidParent
	}
	parent, err := s.repo.FindVisibleForUpdate(ctx, tx, orgID, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return domain.ErrParentNotFound
	}
	if !sameScope(parent.OrgID, scope) {
		return domain.ErrParentScopeMismatch
	}

	// Walk up from the new parent; meeting the node means it would become its own ancestor.
	cursor := parent.ParentID
	for depth := 0; cursor != nil; depth++ {
		if *cursor == nodeID || depth >= maxTreeDepth {
			return domain.ErrInvalidParent
		}
		cursor, err = s.repo.ParentOf(ctx, tx, *cursor)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) generateCode(ctx context.Context, tx *gorm.DB, scope *snowflake.ID, parent *domain.ChartAccount, width int) (string, error) {
	if parent == nil {
		roots, err := s.repo.RootCodes(ctx, tx, scope)
		if err != nil {
			return "", err
		}
		return domain.NextRootCode(roots), nil
	}
	siblings, err := s.repo.ChildCodes(ctx, tx, scope, parent.ID)
	if err != nil {
		return "", err
	}
	return domain.NextChildCode(parent.Code, siblings, width), nil
}

func validateCreate(req domain.CreateRequest) error {
	if strings.TrimSpace(req.Description) == "" {
		return domain.ErrInvalidDescription
	}
	if !req.PlanType.Valid() {
		return domain.ErrInvalidPlanType
	}
	if !req.RevenueOrExpense.Valid() {
		return domain.ErrInvalidRevenueOrExpense
	}
	if !req.DebitOrCredit.Valid() {
		return domain.ErrInvalidDebitOrCredit
	}
	return validateOptional(req.FixedOrVariable, req.CostOrExpense)
}

func validateUpdate(req domain.UpdateRequest) error {
	if req.Code != nil && strings.TrimSpace(*req.Code) == "" {
		return domain.ErrInvalidCode
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		return domain.ErrInvalidDescription
	}
	if req.PlanType != nil && !req.PlanType.Valid() {
		return domain.ErrInvalidPlanType
	}
	if req.RevenueOrExpense != nil && !req.RevenueOrExpense.Valid() {
		return domain.ErrInvalidRevenueOrExpense
	}
	if req.DebitOrCredit != nil && !req.DebitOrCredit.Valid() {
		return domain.ErrInvalidDebitOrCredit
	}
	if req.ParentID != nil && req.ClearParent {
		return domain.ErrInvalidParent
	}
	return validateOptional(req.FixedOrVariable, req.CostOrExpense)
}

func validateOptional(fixedOrVariable *domain.FixedOrVariable, costOrExpense *domain.CostOrExpense) error {
	if fixedOrVariable != nil && !fixedOrVariable.Valid() {
		return domain.ErrInvalidFixedOrVariable
	}
	if costOrExpense != nil && !costOrExpense.Valid() {
		return domain.ErrInvalidCostOrExpense
	}
	return nil
}

func scopeFor(orgID snowflake.ID, global bool) *snowflake.ID {
	if global {
		return nil
	}
	return &orgID
}

func sameScope(a, b *snowflake.ID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
