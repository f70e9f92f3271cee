package repository

import (
	"context"
	"errors"
	"strings"

	"restaurant/internal/domain/model"
	domainrepo "restaurant/internal/repository"

	"gorm.io/gorm"
)

// ログイン後に変わりうる列。email と token_version はここでは触らない
var userMutableColumns = []string{"Role", "IsActive", "LastLoginAt", "PasswordHash", "UpdatedAt"}

type userGormRepository struct {
	db *gorm.DB
}

// 客・店員・管理者のアカウント。ロールは登録時のメールで決まる
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = normalizeEmail(user.Email)
	err := r.db.WithContext(ctx).Create(user).Error
	if isUniqueViolation(err) {
		return domainrepo.ErrEmailTaken
	}
	return err
}

func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", normalizeEmail(email))
}

func (r *userGormRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

// 無ければ nil, nil
func (r *userGormRepository) first(ctx context.Context, cond string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where(cond, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update は無効化やlast_login_atの更新。false/nilもそのまま書く
func (r *userGormRepository) Update(ctx context.Context, user *model.User) error {
	res := r.db.WithContext(ctx).
		Model(user).
		Select(userMutableColumns).
		Updates(user)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrUserNotFound
	}
	return nil
}

// 強制ログアウト。発行済みトークンのtvが古くなる
func (r *userGormRepository) IncrementTokenVersion(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrUserNotFound
	}
	return nil
}
