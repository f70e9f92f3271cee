package model

import "time"

type Role string

const (
	RoleUser   Role = "USER"
	RoleWorker Role = "WORKER"
	RoleAdmin  Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleWorker, RoleAdmin:
		return true
	}
	return false
}

// ログイン後の遷移先
const (
	LandingAdmin  = "/admin"
	LandingWorker = "/worker"
	LandingMenu   = "/menu"
)

// LandingPath はロールごとの遷移先を返す
func (r Role) LandingPath() string {
	switch r {
	case RoleAdmin:
		return LandingAdmin
	case RoleWorker:
		return LandingWorker
	default:
		return LandingMenu
	}
}

type User struct {
	ID           string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	TokenVersion int        `gorm:"not null;default:0" json:"token_version"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
