package usecase

import (
	"context"
	"net/http"
	"testing"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdminUsecase_ForceLogout(t *testing.T) {
	users := new(UserRepoMock)
	audits := new(AuditRepoMock)
	uc := NewAdminUsecase(users, audits, nil)

	users.On("IncrementTokenVersion", mock.Anything, "u-2").Return(nil)
	users.On("FindByID", mock.Anything, "u-2").Return(&model.User{ID: "u-2", TokenVersion: 4}, nil)
	audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == "admin" && l.Action == model.AuditActionForceLogout &&
			l.ResourceType == model.AuditResourceUser && l.ResourceID == "u-2"
	})).Return(nil)

	out, err := uc.ForceLogout(context.Background(), "admin", "u-2")
	require.NoError(t, err)
	assert.Equal(t, &ForceLogoutResponse{UserID: "u-2", NewTokenVersion: 4}, out)
	users.AssertExpectations(t)
	audits.AssertExpectations(t)
}

func TestAdminUsecase_ForceLogout_UnknownUser(t *testing.T) {
	users := new(UserRepoMock)
	audits := new(AuditRepoMock)
	uc := NewAdminUsecase(users, audits, nil)

	users.On("IncrementTokenVersion", mock.Anything, "ghost").Return(repo.ErrUserNotFound)

	_, err := uc.ForceLogout(context.Background(), "admin", "ghost")
	assertStatus(t, err, http.StatusNotFound)
	audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	_, err = uc.ForceLogout(context.Background(), "admin", " ")
	assertStatus(t, err, http.StatusBadRequest)
}

func TestAdminUsecase_ListAuditLogs(t *testing.T) {
	audits := new(AuditRepoMock)
	uc := NewAdminUsecase(new(UserRepoMock), audits, nil)

	audits.On("List", mock.Anything, mock.MatchedBy(func(f repo.AuditLogFilter) bool {
		return f.Action != nil && *f.Action == model.AuditActionDeleteMenuItem &&
			f.ResourceType != nil && *f.ResourceType == model.AuditResourceMenuItem &&
			f.ActorUserID == nil && f.ResourceID != nil && *f.ResourceID == "m1" &&
			f.Limit == 10
	})).Return([]model.AuditLog{{ID: 1}}, nil)

	logs, err := uc.ListAuditLogs(context.Background(), AuditLogQuery{
		Action: "delete_menu_item", ResourceType: "MENU", ResourceID: "m1", Limit: 10,
	})
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = uc.ListAuditLogs(context.Background(), AuditLogQuery{Limit: -1})
	assertStatus(t, err, http.StatusBadRequest)
}
