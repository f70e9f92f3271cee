package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"restaurant/internal/domain/model"
	"restaurant/internal/logger"
	repo "restaurant/internal/repository"
)

type ForceLogoutResponse struct {
	UserID          string `json:"user_id"`
	NewTokenVersion int    `json:"new_token_version"`
}

// 監査ログ一覧の条件（空文字は条件なし）
type AuditLogQuery struct {
	ActorUserID  string
	Action       string
	ResourceType string
	ResourceID   string
	Limit        int
	Offset       int
}

// AdminUsecase はユーザーの強制ログアウトと監査ログ閲覧
type AdminUsecase struct {
	users  repo.UserRepository
	audits repo.AuditLogRepository
	log    *logger.Logger
}

// DI
func NewAdminUsecase(users repo.UserRepository, audits repo.AuditLogRepository, log *logger.Logger) *AdminUsecase {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminUsecase{users: users, audits: audits, log: log}
}

// ForceLogout はtoken_versionを上げて、発行済みのJWTを全部無効にする
func (u *AdminUsecase) ForceLogout(ctx context.Context, actorID, targetUserID string) (*ForceLogoutResponse, error) {
	targetUserID = strings.TrimSpace(targetUserID)
	if targetUserID == "" {
		return nil, NewFieldError("id", "id is required")
	}

	if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "user not found")
		}
		u.log.Error(ctx, "force logout failed", err)
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//更新後を取得してnew_token_versionを返す
	user, err := u.users.FindByID(ctx, targetUserID)
	if err != nil || user == nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	entry := auditEntry(actorID, model.AuditActionForceLogout, model.AuditResourceUser, user.ID, nil, ForceLogoutResponse{
		UserID:          user.ID,
		NewTokenVersion: user.TokenVersion,
	})
	if err := u.audits.Create(ctx, entry); err != nil {
		u.log.Warn(ctx, "audit log write failed", err)
	}

	return &ForceLogoutResponse{
		UserID:          user.ID,
		NewTokenVersion: user.TokenVersion,
	}, nil
}

// ListAuditLogs は新しい順
func (u *AdminUsecase) ListAuditLogs(ctx context.Context, q AuditLogQuery) ([]model.AuditLog, error) {
	if q.Limit < 0 || q.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid paging")
	}

	f := repo.AuditLogFilter{
		ActorUserID: optional(q.ActorUserID),
		ResourceID:  optional(q.ResourceID),
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
	if a := strings.TrimSpace(q.Action); a != "" {
		action := model.AuditAction(strings.ToUpper(a))
		f.Action = &action
	}
	if rt := strings.TrimSpace(q.ResourceType); rt != "" {
		resource := model.AuditResourceType(strings.ToLower(rt))
		f.ResourceType = &resource
	}

	logs, err := u.audits.List(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
