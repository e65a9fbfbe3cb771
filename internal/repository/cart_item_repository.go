package repository

import (
	"context"

	"shop/internal/domain/model"

	"github.com/shopspring/decimal"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error)
	// 同一商品はcountを上書き（加算ではない）
	UpsertCount(ctx context.Context, cartID int64, productID int64, count int64) (model.CartItem, error)
	DeleteByCartAndProduct(ctx context.Context, cartID int64, productID int64) error
	//チェックアウト時の価格・割引スナップショット
	SnapshotPricing(ctx context.Context, cartItemID int64, price decimal.Decimal, discount int64) error
}
