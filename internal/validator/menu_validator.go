package validator

import (
	"encoding/json"
	"strings"

	"restaurant/internal/repository"
)

// POST /admin/menu の入力
type MenuCreateRequest struct {
	Name       string          `json:"name"`
	Price      string          `json:"price"`
	Discount   json.RawMessage `json:"discount,omitempty"`
	OrderCount json.RawMessage `json:"orderCount,omitempty"`
	Category   string          `json:"category"`
}

// PATCH /admin/menu/:id の入力（指定された項目だけ）
type MenuUpdateRequest struct {
	Name       *string         `json:"name,omitempty"`
	Price      *string         `json:"price,omitempty"`
	Discount   json.RawMessage `json:"discount,omitempty"`
	OrderCount json.RawMessage `json:"orderCount,omitempty"`
	Category   *string         `json:"category,omitempty"`
}

// POST /admin/categories の入力
type CategoryCreateRequest struct {
	Category string `json:"category"`
}

// MenuDraft は検証済みの作成内容（IDは未採番）
type MenuDraft struct {
	Name       string
	Price      string
	Discount   int
	OrderCount int
	Category   string
}

type menuCreateFields struct {
	Name     string `json:"name" validate:"required,max=255"`
	Price    string `json:"price" validate:"required,max=64"`
	Category string `json:"category" validate:"required,max=64"`
}

type menuUpdateFields struct {
	ID       string  `json:"id" validate:"required,max=64"`
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Price    *string `json:"price" validate:"omitempty,min=1,max=64"`
	Category *string `json:"category" validate:"omitempty,min=1,max=64"`
}

type categoryFields struct {
	Category string `json:"category" validate:"required,max=255"`
}

type searchFields struct {
	Name string `json:"name" validate:"required,max=255"`
}

type idFields struct {
	ID string `json:"id" validate:"required,max=64"`
}

// ValidateCreateMenu は name/price/category 必須、discount/orderCount は0以上の整数（既定0）
func ValidateCreateMenu(in MenuCreateRequest) (MenuDraft, error) {
	f := menuCreateFields{
		Name:     strings.TrimSpace(in.Name),
		Price:    strings.TrimSpace(in.Price),
		Category: strings.TrimSpace(in.Category),
	}
	if err := check(f); err != nil {
		return MenuDraft{}, err
	}

	discount, _, err := coerceNonNegativeInt("discount", in.Discount)
	if err != nil {
		return MenuDraft{}, err
	}
	orderCount, _, err := coerceNonNegativeInt("orderCount", in.OrderCount)
	if err != nil {
		return MenuDraft{}, err
	}

	return MenuDraft{
		Name:       f.Name,
		Price:      f.Price,
		Discount:   discount,
		OrderCount: orderCount,
		Category:   f.Category,
	}, nil
}

// ValidateUpdateMenu は指定された項目だけを検証して部分更新にする
func ValidateUpdateMenu(id string, in MenuUpdateRequest) (repository.MenuItemPatch, error) {
	f := menuUpdateFields{
		ID:       strings.TrimSpace(id),
		Name:     trimPtr(in.Name),
		Price:    trimPtr(in.Price),
		Category: trimPtr(in.Category),
	}
	if err := check(f); err != nil {
		return repository.MenuItemPatch{}, err
	}

	patch := repository.MenuItemPatch{
		Name:     f.Name,
		Price:    f.Price,
		Category: f.Category,
	}

	discount, ok, err := coerceNonNegativeInt("discount", in.Discount)
	if err != nil {
		return repository.MenuItemPatch{}, err
	}
	if ok {
		patch.Discount = &discount
	}

	orderCount, ok, err := coerceNonNegativeInt("orderCount", in.OrderCount)
	if err != nil {
		return repository.MenuItemPatch{}, err
	}
	if ok {
		patch.OrderCount = &orderCount
	}

	return patch, nil
}

// ValidateCategory はカテゴリ名（空不可）
func ValidateCategory(in CategoryCreateRequest) (string, error) {
	f := categoryFields{Category: strings.TrimSpace(in.Category)}
	if err := check(f); err != nil {
		return "", err
	}
	return f.Category, nil
}

// ValidateSearchName は名前検索の文字列（空不可）。前後の空白は検索語に含める。
func ValidateSearchName(name string) (string, error) {
	if err := check(searchFields{Name: strings.TrimSpace(name)}); err != nil {
		return "", err
	}
	return name, nil
}

// ValidateID は空でないID
func ValidateID(id string) (string, error) {
	f := idFields{ID: strings.TrimSpace(id)}
	if err := check(f); err != nil {
		return "", err
	}
	return f.ID, nil
}
