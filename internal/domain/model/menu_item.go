package model

import "time"

// メニューの1品
// priceは文字列のまま保存（"12.50" など）
type MenuItem struct {
	ID         string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	NameFolded string    `gorm:"column:name_folded;not null;default:''" json:"-"` // 検索用（小文字化したname）
	Price      string    `gorm:"type:text;not null" json:"price"`
	Discount   int       `gorm:"not null;default:0" json:"discount"`
	OrderCount int       `gorm:"column:order_count;not null;default:0" json:"orderCount"`
	Category   string    `gorm:"column:category;type:varchar(64);not null;index" json:"category"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (MenuItem) TableName() string {
	return "menu"
}
