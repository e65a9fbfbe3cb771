package repository

import (
	"context"

	"shop/internal/domain/model"
)

type CartRepository interface {
	//未アーカイブのカートを取得し、無ければ作る
	GetOrCreateOpenByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindOpenByUserID(ctx context.Context, userID int64) (model.Cart, error)
	Archive(ctx context.Context, cartID int64) error
	//ユーザーの未アーカイブカートをまとめてアーカイブする（件数0でもエラーにしない）
	ArchiveOpenByUserID(ctx context.Context, userID int64) error
	//明細の全削除
	Clear(ctx context.Context, cartID int64) error
}
