package repository

import (
	"context"
	"errors"

	"restaurant/internal/domain/model"
)

// 見つからないを統一
var ErrNotFound = errors.New("not found")

// ErrInvalidCategory はメニューのcategoryが存在しないカテゴリを指すとき（FK違反）
var ErrInvalidCategory = errors.New("category does not exist")

// 部分更新。nilのフィールドは変更しない。
type MenuItemPatch struct {
	Name       *string
	Price      *string
	Discount   *int
	OrderCount *int
	Category   *string
}

// IsEmpty は変更項目が1つもないとき
func (p MenuItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Discount == nil && p.OrderCount == nil && p.Category == nil
}

// メニューの永続化
type MenuRepository interface {
	// id降順で全件
	ListAll(ctx context.Context) ([]model.MenuItem, error)
	// 名前の部分一致（大文字小文字無視）
	FindByName(ctx context.Context, substring string) ([]model.MenuItem, error)
	FindByID(ctx context.Context, id string) (model.MenuItem, error)

	Create(ctx context.Context, item model.MenuItem) (model.MenuItem, error)
	// 更新後の行を返す
	Update(ctx context.Context, id string, patch MenuItemPatch) (model.MenuItem, error)
	// 削除した行を返す
	Delete(ctx context.Context, id string) (model.MenuItem, error)
}

// カテゴリの永続化（更新・削除はない）
type CategoryRepository interface {
	ListAll(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id string) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
}
