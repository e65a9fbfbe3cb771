package model

import "time"

type InvoiceStatus string

const (
	InvoiceStatusRequiresPayment InvoiceStatus = "REQUIRES_PAYMENT"
	InvoiceStatusSucceeded       InvoiceStatus = "SUCCEEDED"
	InvoiceStatusCanceled        InvoiceStatus = "CANCELED"
)

// 注文1件につき1件の支払い追跡レコード。
// TransactionID は決済プロバイダ側のpayment intent ID。
// Amount はプロバイダへ送った最小通貨単位の整数額。
// ステータス遷移はWebhookでのみ行う。
type Invoice struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64         `gorm:"not null;uniqueIndex" json:"order_id"`
	UserID        int64         `gorm:"not null;index" json:"user_id"`
	TransactionID string        `gorm:"type:varchar(255);not null" json:"transaction_id"`
	Amount        int64         `gorm:"not null" json:"amount"`
	Status        InvoiceStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
