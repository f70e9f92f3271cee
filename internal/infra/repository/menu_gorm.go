package repository

import (
	"context"
	"errors"
	"fmt"

	"restaurant/internal/domain/catalog"
	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"

	"gorm.io/gorm"
)

type MenuGormRepository struct {
	db *gorm.DB
}

// DI
func NewMenuGormRepository(db *gorm.DB) *MenuGormRepository {
	return &MenuGormRepository{db: db}
}

var _ repo.MenuRepository = (*MenuGormRepository)(nil)

// 全件をid降順で
func (r *MenuGormRepository) ListAll(ctx context.Context) ([]model.MenuItem, error) {
	items := []model.MenuItem{}
	if err := r.db.WithContext(ctx).Order("id desc").Find(&items).Error; err != nil {
		return []model.MenuItem{}, err
	}
	return items, nil
}

// 名前の部分一致。sqliteのLOWERはASCIIしか畳まないので、Go側で畳んだ name_folded と比べる
func (r *MenuGormRepository) FindByName(ctx context.Context, substring string) ([]model.MenuItem, error) {
	like := "%" + escapeLike(catalog.FoldName(substring)) + "%"

	items := []model.MenuItem{}
	err := r.db.WithContext(ctx).
		Where(`name_folded LIKE ? ESCAPE '\'`, like).
		Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.MenuItem{}, err
	}
	return items, nil
}

// IDで1件
func (r *MenuGormRepository) FindByID(ctx context.Context, id string) (model.MenuItem, error) {
	var item model.MenuItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MenuItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.MenuItem{}, err
	}
	return item, nil
}

// 作成。categoryが存在しなければ ErrInvalidCategory
func (r *MenuGormRepository) Create(ctx context.Context, item model.MenuItem) (model.MenuItem, error) {
	item.NameFolded = catalog.FoldName(item.Name)
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		if isForeignKeyViolation(err) {
			return model.MenuItem{}, repo.ErrInvalidCategory
		}
		return model.MenuItem{}, err
	}
	return item, nil
}

// 指定された項目だけ更新して、更新後の行を返す
func (r *MenuGormRepository) Update(ctx context.Context, id string, patch repo.MenuItemPatch) (model.MenuItem, error) {
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	cols := map[string]interface{}{}
	if patch.Name != nil {
		cols["name"] = *patch.Name
		cols["name_folded"] = catalog.FoldName(*patch.Name)
	}
	if patch.Price != nil {
		cols["price"] = *patch.Price
	}
	if patch.Discount != nil {
		cols["discount"] = *patch.Discount
	}
	if patch.OrderCount != nil {
		cols["order_count"] = *patch.OrderCount
	}
	if patch.Category != nil {
		cols["category"] = *patch.Category
	}

	res := r.db.WithContext(ctx).Model(&model.MenuItem{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return model.MenuItem{}, repo.ErrInvalidCategory
		}
		return model.MenuItem{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.MenuItem{}, repo.ErrNotFound
	}

	return r.FindByID(ctx, id)
}

// 削除して、消した行を返す
func (r *MenuGormRepository) Delete(ctx context.Context, id string) (model.MenuItem, error) {
	var deleted model.MenuItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&deleted).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotFound
			}
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.MenuItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.MenuItem{}, err
		}
		return model.MenuItem{}, fmt.Errorf("delete menu %s: %w", id, err)
	}
	return deleted, nil
}
