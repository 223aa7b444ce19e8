package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/bookkeeper/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Insert runs on whatever handle it is given so the row commits with the caller's transaction.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO audit_logs (id, org_id, actor_type, actor_id, action, target_type, target_id, metadata, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.OrgID,
		entry.ActorType,
		entry.ActorID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		entry.Metadata,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	).Error
}

// List returns newest first and fetches one extra row so the caller can tell whether a next page exists.
func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.AuditLog, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.AuditLog{}).
		Scopes(byOrg(filter), byAction(filter.Action), byTarget(filter), byWindow(filter), after(filter.Cursor)).
		Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	var logs []*domain.AuditLog
	if err := stmt.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func byOrg(filter domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("org_id = ?", filter.OrgID)
	}
}

// byAction matches exactly, or by prefix when the value ends in "*" ("ledger_entry.*").
func byAction(action string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		action = strings.TrimSpace(action)
		switch {
		case action == "":
			return db
		case strings.HasSuffix(action, "*"):
			prefix := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(strings.TrimSuffix(action, "*"))
			return db.Where(`action LIKE ? ESCAPE '\'`, prefix+"%")
		default:
			return db.Where("action = ?", action)
		}
	}
}

func byTarget(filter domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if targetType := strings.TrimSpace(filter.TargetType); targetType != "" {
			db = db.Where("target_type = ?", targetType)
		}
		if targetID := strings.TrimSpace(filter.TargetID); targetID != "" {
			db = db.Where("target_id = ?", targetID)
		}
		return db
	}
}

func byWindow(filter domain.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.StartAt != nil {
			db = db.Where("created_at >= ?", filter.StartAt.UTC())
		}
		if filter.EndAt != nil {
			db = db.Where("created_at <= ?", filter.EndAt.UTC())
		}
		return db
	}
}

func after(cursor *domain.AuditCursor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if cursor == nil {
			return db
		}
		return db.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
}
