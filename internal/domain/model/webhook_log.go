package model

import "time"

// Webhook受信ログ。
// 署名検証に失敗した配信も event_type="error" で残す。
type WebhookLog struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventType    string    `gorm:"type:varchar(64);not null;index" json:"event_type"`
	Details      string    `gorm:"type:text" json:"details"`
	ErrorMessage string    `gorm:"type:text" json:"error_message"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
