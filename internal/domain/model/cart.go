package model

import "time"

// 1ユーザーにつき未アーカイブのカートは1つ。
// チェックアウト成功でアーカイブされ、物理削除はしない。
type Cart struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	IsArchived bool      `gorm:"not null;default:false;index" json:"is_archived"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
