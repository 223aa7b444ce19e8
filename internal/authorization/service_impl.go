package authorization

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectChartAccountGlobal = "chart_account_global"
	ObjectLedger             = "ledger"
	ObjectAuditLog           = "audit_log"
)

const (
	ActionManage = "manage"
	ActionView   = "view"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleOwner  = "owner"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role string, object string, action string) error {
	subject, err := roleSubject(role)
	if err != nil {
		return err
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) IsAdmin(ctx context.Context, role string) bool {
	err := s.Authorize(ctx, role, ObjectChartAccountGlobal, ActionManage)
	if err != nil && !errors.Is(err, ErrForbidden) && !errors.Is(err, ErrInvalidRole) {
		s.log.Warn("admin check failed", zap.String("role", role), zap.Error(err))
	}
	return err == nil
}

func roleSubject(role string) (string, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	role = strings.TrimPrefix(role, "role:")
	if role == "" {
		return "", ErrInvalidRole
	}
	return "role:" + role, nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:admin", ObjectChartAccountGlobal, ActionManage},
		{"role:admin", ObjectLedger, ActionManage},
		{"role:admin", ObjectAuditLog, ActionView},

		{"role:member", ObjectLedger, ActionManage},
	}
	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	// Owners inherit everything an admin may do.
	has, err := enforcer.HasGroupingPolicy("role:owner", "role:admin")
	if err != nil {
		return err
	}
	if !has {
		if _, err := enforcer.AddGroupingPolicy("role:owner", "role:admin"); err != nil {
			return err
		}
	}
	return nil
}
