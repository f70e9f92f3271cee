package usecase

import (
	"context"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type MenuRepoMock struct{ mock.Mock }

func (m *MenuRepoMock) ListAll(ctx context.Context) ([]model.MenuItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.MenuItem)
	return items, args.Error(1)
}

func (m *MenuRepoMock) FindByName(ctx context.Context, substring string) ([]model.MenuItem, error) {
	args := m.Called(ctx, substring)
	items, _ := args.Get(0).([]model.MenuItem)
	return items, args.Error(1)
}

func (m *MenuRepoMock) FindByID(ctx context.Context, id string) (model.MenuItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(model.MenuItem)
	return item, args.Error(1)
}

func (m *MenuRepoMock) Create(ctx context.Context, item model.MenuItem) (model.MenuItem, error) {
	args := m.Called(ctx, item)
	created, _ := args.Get(0).(model.MenuItem)
	return created, args.Error(1)
}

func (m *MenuRepoMock) Update(ctx context.Context, id string, patch repo.MenuItemPatch) (model.MenuItem, error) {
	args := m.Called(ctx, id, patch)
	item, _ := args.Get(0).(model.MenuItem)
	return item, args.Error(1)
}

func (m *MenuRepoMock) Delete(ctx context.Context, id string) (model.MenuItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(model.MenuItem)
	return item, args.Error(1)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) ListAll(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]model.Category)
	return cats, args.Error(1)
}

func (m *CategoryRepoMock) FindByID(ctx context.Context, id string) (model.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) Create(ctx context.Context, c model.Category) (model.Category, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(model.Category)
	return created, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, f)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// txの中でも同じmockを返す
type fakeTxRepos struct {
	menu  *MenuRepoMock
	cats  *CategoryRepoMock
	audit *AuditRepoMock
}

func (r *fakeTxRepos) Menu() repo.MenuRepository           { return r.menu }
func (r *fakeTxRepos) Categories() repo.CategoryRepository { return r.cats }
func (r *fakeTxRepos) AuditLogs() repo.AuditLogRepository  { return r.audit }

type fakeTxManager struct {
	repos *fakeTxRepos
	calls int
}

func (tm *fakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	tm.calls++
	return fn(tm.repos)
}

type seqID struct {
	ids []string
	n   int
}

func (s *seqID) NewID() string {
	id := s.ids[s.n%len(s.ids)]
	s.n++
	return id
}
