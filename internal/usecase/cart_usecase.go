package usecase

import (
	"context"
	"net/http"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
	}
}

// 表示用の明細。price / discount は現在のカタログ値。
type CartItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Discount  int64           `json:"discount"`
	Count     int64           `json:"count"`
}

type CartResponse struct {
	ID         int64              `json:"id"`
	IsArchived bool               `json:"is_archived"`
	Items      []CartItemResponse `json:"items"`
	Total      decimal.Decimal    `json:"total"`
}

type AddItemInput struct {
	ProductID int64
	Count     int64
}

// price × (100 − discount) / 100 × count
func lineTotal(price decimal.Decimal, discount int64, count int64) decimal.Decimal {
	return price.
		Mul(decimal.NewFromInt(100 - discount)).
		Div(decimal.NewFromInt(100)).
		Mul(decimal.NewFromInt(count))
}

// GetCart はカート取得（無ければ未アーカイブのものを作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateOpenByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart)
}

// AddItem はカートに追加（同一商品はcountの上書き）。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddItemInput) (CartItemResponse, error) {
	if userID <= 0 {
		return CartItemResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartItemResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Count < 1 {
		return CartItemResponse{}, NewHTTPError(http.StatusBadRequest, "invalid count")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartItemResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartItemResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartItemResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}

	// 未アーカイブカート取得（無ければ作成）
	cart, err := u.cartRepo.GetOrCreateOpenByUserID(ctx, userID)
	if err != nil {
		return CartItemResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	item, err := u.cartItemRepo.UpsertCount(ctx, cart.ID, in.ProductID, in.Count)
	if err != nil {
		return CartItemResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toCartItemResponse(item, p), nil
}

// 明細削除。対象が無いときは404
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	cart, err := u.cartRepo.FindOpenByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.DeleteByCartAndProduct(ctx, cart.ID, productID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// 全明細のクリア。カートが無ければ何もしない
func (u *CartUsecase) Clear(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindOpenByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return nil
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil && err != repo.ErrNotFound {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// 未アーカイブカートの表示は現在のカタログ価格・割引で合計する。
// チェックアウト時の確定額は明細スナップショット側で別途計算する。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cart model.Cart) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	total := decimal.Zero

	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err != nil {
			continue
		}
		if !p.IsActive {
			continue
		}

		respItems = append(respItems, toCartItemResponse(it, p))
		total = total.Add(lineTotal(p.Price, p.Discount, it.Count))
	}

	return CartResponse{
		ID:         cart.ID,
		IsArchived: cart.IsArchived,
		Items:      respItems,
		Total:      total.Round(2),
	}, nil
}

func toCartItemResponse(it model.CartItem, p model.Product) CartItemResponse {
	return CartItemResponse{
		ID:        it.ID,
		ProductID: it.ProductID,
		Name:      p.Name,
		Price:     p.Price,
		Discount:  p.Discount,
		Count:     it.Count,
	}
}
