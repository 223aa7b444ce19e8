package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	"github.com/smallbiznis/bookkeeper/internal/auditcontext"
	"github.com/smallbiznis/bookkeeper/internal/clock"
	"github.com/smallbiznis/bookkeeper/internal/config"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/bookkeeper/internal/observability/metrics"
	"github.com/smallbiznis/bookkeeper/pkg/db"
	"github.com/smallbiznis/bookkeeper/pkg/rls"
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
	Repo     ledgerdomain.Repository
	AuditSvc auditdomain.Service
	Settings *config.LedgerSettingsHolder

	ObsMetrics   *obsmetrics.Metrics      `optional:"true"`
	StoreMetrics *obsmetrics.StoreMetrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         ledgerdomain.Repository
	auditSvc     auditdomain.Service
	settings     *config.LedgerSettingsHolder
	obsMetrics   *obsmetrics.Metrics
	storeMetrics *obsmetrics.StoreMetrics
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("ledger.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		auditSvc:     p.AuditSvc,
		settings:     p.Settings,
		obsMetrics:   p.ObsMetrics,
		storeMetrics: p.StoreMetrics,
	}
}

func (s *Service) List(ctx context.Context, orgID snowflake.ID, filter ledgerdomain.ListFilter) ([]ledgerdomain.LedgerEntry, error) {
	if orgID == 0 {
		return nil, ledgerdomain.ErrInvalidOrganization
	}

	if filter.DateFrom != nil {
		from := ledgerdomain.NormalizeDate(*filter.DateFrom)
		filter.DateFrom = &from
	}
	if filter.DateTo != nil {
		to := ledgerdomain.NormalizeDate(*filter.DateTo)
		filter.DateTo = &to
	}

	items, err := s.repo.List(ctx, s.db, orgID, filter)
	if err != nil {
		return nil, err
	}

	entries := make([]ledgerdomain.LedgerEntry, 0, len(items))
	for _, item := range items {
		if item != nil {
			entries = append(entries, *item)
		}
	}
	return entries, nil
}

func (s *Service) Get(ctx context.Context, orgID snowflake.ID, id snowflake.ID, withSplits bool) (ledgerdomain.LedgerEntry, error) {
	if orgID == 0 {
		return ledgerdomain.LedgerEntry{}, ledgerdomain.ErrInvalidOrganization
	}
	if id == 0 {
		return ledgerdomain.LedgerEntry{}, ledgerdomain.ErrInvalidID
	}

	entry, err := s.repo.FindActive(ctx, s.db, orgID, id, withSplits)
	if err != nil {
		return ledgerdomain.LedgerEntry{}, err
	}
	if entry == nil {
		return ledgerdomain.LedgerEntry{}, ledgerdomain.ErrNotFound
	}
	return *entry, nil
}

func (s *Service) Create(ctx context.Context, orgID snowflake.ID, req ledgerdomain.CreateRequest) (ledgerdomain.LedgerEntry, error) {
	if orgID == 0 {
		return ledgerdomain.LedgerEntry{}, ledgerdomain.ErrInvalidOrganization
	}
	input, err := s.validateInput(ctx, orgID, req.EntryInput)
	if err != nil {
		return ledgerdomain.LedgerEntry{}, err
	}

	now := s.clock.Now().UTC()
	entry := ledgerdomain.LedgerEntry{
		OrgID:     orgID,
		CreatedAt: now,
		UpdatedAt: now,
		UpdatedBy: actorID(ctx),
	}
	applyInput(&entry, input)

	attempts := s.settings.Get().CodeGenerationAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		entry.ID = s.genID.Generate()
		splits := s.buildSplits(orgID, entry.ID, input.Splits, now)

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := rls.WithTenant(tx, orgID); err != nil {
				return err
			}
			maxCode, err := s.repo.MaxCode(ctx, tx, orgID)
			if err != nil {
				return err
			}
			entry.Code = maxCode + 1

			if err := s.repo.Insert(ctx, tx, &entry); err != nil {
				return err
			}
			if err := s.repo.InsertSplits(ctx, tx, splits); err != nil {
				return err
			}
			return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
				OrgID:      &orgID,
				Action:     "ledger_entry.created",
				TargetType: "ledger_entry",
				TargetID:   entry.ID.String(),
				After:      entry.Snapshot(splits),
			})
		})
		if err == nil {
			s.obsMetrics.RecordLedgerEntry(ctx, "created")
			return entry, nil
		}

		if !db.IsDuplicateKeyErr(err) {
			s.storeMetrics.IncError(obsmetrics.OperationLedgerEntryCreate, err)
			return ledgerdomain.LedgerEntry{}, err
		}
		s.storeMetrics.IncRetry(obsmetrics.OperationLedgerEntryCreate, err)
		if attempt >= attempts {
			s.log.Error("ledger entry code generation exhausted",
				zap.String("org_id", orgID.String()),
				zap.Int("attempts", attempts),
			)
			return ledgerdomain.LedgerEntry{}, ledgerdomain.ErrCodeGenerationExhausted
		}
		s.log.Warn("ledger entry code collided, retrying",
			zap.Int64("code", entry.Code),
			zap.Int("attempt", attempt),
		)
	}
}

func (s *Service) Update(ctx context.Context, orgID snowflake.ID, id snowflake.ID, req ledgerdomain.UpdateRequest) (ledgerdomain.LedgerEntry, error) {
	if orgID == 0 {
		return ledgerdomain.LedgerEntry{}, ledgerdomain.ErrInvalidOrganization
	}
	if id == 0 {
		return ledgerdomain.LedgerEntry{}, ledgerdomain.ErrInvalidID
	}
	input, err := s.validateInput(ctx, orgID, req.EntryInput)
	if err != nil {
		return ledgerdomain.LedgerEntry{}, err
	}

	now := s.clock.Now().UTC()
	var next ledgerdomain.LedgerEntry
	var splits []ledgerdomain.LedgerEntrySplit

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := rls.WithTenant(tx, orgID); err != nil {
			return err
		}
		current, err := s.repo.FindActiveForUpdate(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ledgerdomain.ErrNotFound
		}
		stored, err := s.repo.ListSplits(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		before := current.Snapshot(stored)

		next = *current
		next.Splits = nil
		next.UpdatedAt = now
		next.UpdatedBy = actorID(ctx)
		applyInput(&next, input)
		splits = s.buildSplits(orgID, next.ID, input.Splits, now)

		updated, err := s.repo.Update(ctx, tx, &next)
		if err != nil {
			return err
		}
		if !updated {
			return ledgerdomain.ErrNotFound
		}
		if err := s.repo.DeleteSplits(ctx, tx, orgID, next.ID); err != nil {
			return err
		}
		if err := s.repo.InsertSplits(ctx, tx, splits); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			OrgID:      &orgID,
			Action:     "ledger_entry.updated",
			TargetType: "ledger_entry",
			TargetID:   next.ID.String(),
			Before:     before,
			After:      next.Snapshot(splits),
		})
	})
	if err != nil {
		if !errors.Is(err, ledgerdomain.ErrNotFound) {
			s.storeMetrics.IncError(obsmetrics.OperationLedgerEntryUpdate, err)
		}
		return ledgerdomain.LedgerEntry{}, err
	}

	s.obsMetrics.RecordLedgerEntry(ctx, "updated")
	next.Splits = splits
	return next, nil
}

// Confirm validates against the splits stored at the time the row is locked,
// not against whatever the caller last read.
func (s *Service) Confirm(ctx context.Context, orgID snowflake.ID, id snowflake.ID, confirmed bool) (ledgerdomain.LedgerEntry, error) {
	if orgID == 0 {
		return ledgerdomain.LedgerEntry{}, ledgerdomain.ErrInvalidOrganization
	}
	if id == 0 {
		return ledgerdomain.LedgerEntry{}, ledgerdomain.ErrInvalidID
	}

	action := "ledger_entry.unconfirmed"
	if confirmed {
		action = "ledger_entry.confirmed"
	}
	tolerance := s.settings.Get().SplitTolerance

	var next ledgerdomain.LedgerEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := rls.WithTenant(tx, orgID); err != nil {
			return err
		}
		current, err := s.repo.FindActiveForUpdate(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ledgerdomain.ErrNotFound
		}
		stored, err := s.repo.ListSplits(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if confirmed && !ledgerdomain.SplitsMatch(current.Amount, ledgerdomain.StoredSplitInputs(stored), tolerance) {
			return ledgerdomain.ErrCannotConfirmSplitsMismatch
		}

		next = *current
		next.Splits = stored
		next.Confirmed = confirmed
		next.UpdatedAt = s.clock.Now().UTC()
		next.UpdatedBy = actorID(ctx)

		updated, err := s.repo.SetConfirmed(ctx, tx, &next)
		if err != nil {
			return err
		}
		if !updated {
			return ledgerdomain.ErrNotFound
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			OrgID:      &orgID,
			Action:     action,
			TargetType: "ledger_entry",
			TargetID:   next.ID.String(),
			Before:     map[string]any{"confirmed": current.Confirmed},
			After:      map[string]any{"confirmed": next.Confirmed},
		})
	})
	if err != nil {
		if !errors.Is(err, ledgerdomain.ErrNotFound) && !errors.Is(err, ledgerdomain.ErrCannotConfirmSplitsMismatch) {
			s.storeMetrics.IncError(obsmetrics.OperationLedgerEntryConfirm, err)
		}
		return ledgerdomain.LedgerEntry{}, err
	}

	s.obsMetrics.RecordLedgerEntry(ctx, strings.TrimPrefix(action, "ledger_entry."))
	return next, nil
}

func (s *Service) SoftDelete(ctx context.Context, orgID snowflake.ID, id snowflake.ID) error {
	if orgID == 0 {
		return ledgerdomain.ErrInvalidOrganization
	}
	if id == 0 {
		return ledgerdomain.ErrInvalidID
	}

	deletedAt := s.clock.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := rls.WithTenant(tx, orgID); err != nil {
			return err
		}
		current, err := s.repo.FindActiveForUpdate(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ledgerdomain.ErrNotFound
		}
		deleted, err := s.repo.SoftDelete(ctx, tx, orgID, id, deletedAt, actorID(ctx))
		if err != nil {
			return err
		}
		if !deleted {
			return ledgerdomain.ErrNotFound
		}
		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			OrgID:      &orgID,
			Action:     "ledger_entry.deleted",
			TargetType: "ledger_entry",
			TargetID:   id.String(),
			Before:     current.Snapshot(nil),
			After:      map[string]any{"deleted_at": deletedAt},
		})
	})
	if err != nil {
		if !errors.Is(err, ledgerdomain.ErrNotFound) {
			s.storeMetrics.IncError(obsmetrics.OperationLedgerEntryDelete, err)
		}
		return err
	}

	s.obsMetrics.RecordLedgerEntry(ctx, "deleted")
	return nil
}

func actorID(ctx context.Context) *string {
	_, id := auditcontext.ActorFromContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return &id
}
