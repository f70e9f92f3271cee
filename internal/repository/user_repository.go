package repository

import (
	"context"
	"errors"

	"restaurant/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// メール重複
var ErrEmailTaken = errors.New("email already registered")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。無ければ nil, nil
	FindByID(ctx context.Context, userID string) (*model.User, error)
	//メールからユーザーを一件取得する。無ければ nil, nil
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// 最後のログイン更新など
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID string) error
}
