package model

import "time"

// メニュー作成、カテゴリ作成など。
type AuditAction string

const (
	AuditActionCreateMenuItem AuditAction = "CREATE_MENU_ITEM"
	AuditActionUpdateMenuItem AuditAction = "UPDATE_MENU_ITEM"
	AuditActionDeleteMenuItem AuditAction = "DELETE_MENU_ITEM"
	AuditActionCreateCategory AuditAction = "CREATE_CATEGORY"
	AuditActionForceLogout    AuditAction = "FORCE_LOGOUT"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceMenuItem AuditResourceType = "menu"
	AuditResourceCategory AuditResourceType = "category"
	AuditResourceUser     AuditResourceType = "user"
)

// ResourceType は操作ごとに決まる対象の種類（未知の操作は空）
func (a AuditAction) ResourceType() AuditResourceType {
	switch a {
	case AuditActionCreateMenuItem, AuditActionUpdateMenuItem, AuditActionDeleteMenuItem:
		return AuditResourceMenuItem
	case AuditActionCreateCategory:
		return AuditResourceCategory
	case AuditActionForceLogout:
		return AuditResourceUser
	}
	return ""
}

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID。
	ActorUserID string `gorm:"type:varchar(64);not null;index" json:"actor_user_id"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   string            `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	//JSON文字列で保存する。作成時はbeforeが空、削除時はafterが空。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
