package model

// カテゴリ（表示名はCategoryフィールド）
type Category struct {
	ID       string `gorm:"type:varchar(64);primaryKey" json:"id"`
	Category string `gorm:"column:category;type:varchar(255);not null" json:"category"`
}

func (Category) TableName() string {
	return "category"
}
