package repository

import (
	"context"

	repo "restaurant/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	menu       repo.MenuRepository
	categories repo.CategoryRepository
	auditLogs  repo.AuditLogRepository
}

func (r *txReposGorm) Menu() repo.MenuRepository           { return r.menu }
func (r *txReposGorm) Categories() repo.CategoryRepository { return r.categories }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository  { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

var _ repo.TransactionManager = (*TxManagerGorm)(nil)

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			menu:       NewMenuGormRepository(tx),
			categories: NewCategoryGormRepository(tx),
			auditLogs:  NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
