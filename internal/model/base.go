package model

import "time"

// Timestamps 账号只增不删，不使用 gorm 软删除，避免 (kind, email) 唯一索引被已删除行占用
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

// InternalID 库内自增主键，不对外暴露；对外使用 snowflake PublicID
type InternalID struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"-"`
}
