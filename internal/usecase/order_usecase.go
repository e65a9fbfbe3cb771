package usecase

import (
	"context"
	"net/http"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	orderRepo    repo.OrderRepository
	invoiceRepo  repo.InvoiceRepository
	cartItemRepo repo.CartItemRepository
}

func NewOrderUsecase(
	orderRepo repo.OrderRepository,
	invoiceRepo repo.InvoiceRepository,
	cartItemRepo repo.CartItemRepository,
) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:    orderRepo,
		invoiceRepo:  invoiceRepo,
		cartItemRepo: cartItemRepo,
	}
}

// チェックアウトで固定された明細スナップショット。
type OrderItemOutput struct {
	ProductID int64           `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Discount  int64           `json:"discount"`
	Count     int64           `json:"count"`
}

type OrderOutput struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	CartID    int64             `json:"cart_id"`
	AddressID *int64            `json:"address_id"`
	Total     decimal.Decimal   `json:"total"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	Items     []OrderItemOutput `json:"items,omitempty"`
	Invoice   *model.Invoice    `json:"invoice,omitempty"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングはまず固定で取る
	orders, _, err := u.orderRepo.ListByUserID(ctx, userID, 1, 50)
	if err != nil {
		return []OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o, nil, nil))
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.UserID != userID {
		//他人の注文は「存在しない扱い」にする
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	//アーカイブ済みカートの明細＝注文明細スナップショット
	items, err := u.cartItemRepo.ListByCartID(ctx, o.CartID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//請求書は無いこともある（作成前に落ちた古いデータ等）
	var invoice *model.Invoice
	if inv, err := u.invoiceRepo.FindByOrderID(ctx, orderID); err == nil {
		invoice = &inv
	} else if err != repo.ErrNotFound {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toOrderOutput(o, items, invoice), nil
}

// 自分の注文のキャンセル。確定済み（COMPLETED）は不可
func (u *OrderUsecase) Cancel(ctx context.Context, userID int64, orderID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.UserID != userID {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	//すでにキャンセル済みなら何もしない（200）
	if o.Status == model.OrderStatusCanceled {
		return nil
	}
	if o.Status == model.OrderStatusCompleted {
		return NewHTTPError(http.StatusBadRequest, "cannot cancel completed order")
	}

	if err := u.orderRepo.UpdateStatus(ctx, orderID, model.OrderStatusCanceled); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

func toOrderOutput(o model.Order, items []model.CartItem, invoice *model.Invoice) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		// スナップショット前の明細は出さない
		if it.Price == nil || it.Discount == nil {
			continue
		}
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Price:     *it.Price,
			Discount:  *it.Discount,
			Count:     it.Count,
		})
	}

	return OrderOutput{
		ID:        o.ID,
		UserID:    o.UserID,
		CartID:    o.CartID,
		AddressID: o.AddressID,
		Total:     o.Total,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		Items:     outItems,
		Invoice:   invoice,
	}
}
