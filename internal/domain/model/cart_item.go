package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。
// (cart_id, product_id) で1行。同じ商品の追加はcountの上書き。
// Price / Discount はチェックアウト時のスナップショットで、それまではNULL。
type CartItem struct {
	ID        int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64            `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID int64            `gorm:"not null;uniqueIndex:idx_cart_product;index" json:"product_id"`
	Count     int64            `gorm:"not null" json:"count"`
	Price     *decimal.Decimal `gorm:"type:numeric(8,2)" json:"price"`
	Discount  *int64           `json:"discount"`
	CreatedAt time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
