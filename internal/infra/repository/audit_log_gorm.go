package repository

import (
	"context"
	"fmt"
	"time"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"

	"gorm.io/gorm"
)

// 一覧の件数
const (
	DefaultAuditLogLimit = 50
	MaxAuditLogLimit     = 200
)

type auditLogGormRepository struct {
	db *gorm.DB
}

// メニュー・カテゴリの変更と強制ログアウトの記録
func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

// Create は対象の種類が空なら操作から決める。操作と種類が食い違う記録は保存しない
func (r *auditLogGormRepository) Create(ctx context.Context, entry model.AuditLog) error {
	want := entry.Action.ResourceType()
	if want == "" {
		return fmt.Errorf("audit log: unknown action %q", entry.Action)
	}
	if entry.ResourceType == "" {
		entry.ResourceType = want
	}
	if entry.ResourceType != want {
		return fmt.Errorf("audit log: %s is not a %s action", entry.Action, entry.ResourceType)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// List は新しい順
func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	limit := filter.Limit
	if limit <= 0 || limit > MaxAuditLogLimit {
		limit = DefaultAuditLogLimit
	}

	logs := []model.AuditLog{}
	err := r.db.WithContext(ctx).
		Scopes(auditLogFilter(filter)).
		Order("id DESC").
		Limit(limit).
		Offset(max(filter.Offset, 0)).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// nilの条件は付けない
func auditLogFilter(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		eq := map[string]any{}
		if f.ActorUserID != nil {
			eq["actor_user_id"] = *f.ActorUserID
		}
		if f.Action != nil {
			eq["action"] = *f.Action
		}
		if f.ResourceType != nil {
			eq["resource_type"] = *f.ResourceType
		}
		if f.ResourceID != nil {
			eq["resource_id"] = *f.ResourceID
		}
		if len(eq) > 0 {
			q = q.Where(eq)
		}

		if f.CreatedFrom != nil {
			q = q.Where("created_at >= ?", *f.CreatedFrom)
		}
		if f.CreatedTo != nil {
			q = q.Where("created_at <= ?", *f.CreatedTo)
		}
		return q
	}
}
