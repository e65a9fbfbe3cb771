package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/shopspring/decimal"
)

type CheckoutUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
	gateway   PaymentGateway
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	addresses repo.AddressRepository,
	gateway PaymentGateway,
) *CheckoutUsecase {
	return &CheckoutUsecase{tx: tx, addresses: addresses, gateway: gateway}
}

type CheckoutInput struct {
	AddressID int64
}

type CheckoutOutput struct {
	Order        OrderOutput `json:"order"`
	ClientSecret string      `json:"client_secret"`
}

// CreateOrder は未アーカイブカートを注文へ確定する。
// 明細スナップショット→合計→注文→payment intent→請求書→カートアーカイブを
// 1トランザクションで行い、途中で失敗したら全部戻す。
func (u *CheckoutUsecase) CreateOrder(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.AddressID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address_id")
	}

	//address_idの存在確認＋所有チェック
	addr, err := u.addresses.FindByID(ctx, in.AddressID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address")
		}
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//他人の住所は400
	if addr.UserID != userID {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "this is another user's address")
	}

	var out CheckoutOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//未アーカイブカート取得
		cart, err := r.Carts().FindOpenByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "the cart is empty")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カート明細取得
		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(items) == 0 {
			return NewHTTPError(http.StatusBadRequest, "the cart is empty")
		}

		//現在のカタログ値を明細へ固定してから合計する。
		//以後のカタログ価格変更はこの注文に影響しない
		total := decimal.Zero
		outItems := make([]OrderItemOutput, 0, len(items))

		for _, it := range items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid product")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			//スナップショット
			if err := r.CartItems().SnapshotPricing(ctx, it.ID, p.Price, p.Discount); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			total = total.Add(lineTotal(p.Price, p.Discount, it.Count))

			outItems = append(outItems, OrderItemOutput{
				ProductID: it.ProductID,
				Price:     p.Price,
				Discount:  p.Discount,
				Count:     it.Count,
			})
		}

		total = total.Round(2)

		// 注文作成
		now := time.Now()
		addressID := in.AddressID
		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:    userID,
			CartID:    cart.ID,
			AddressID: &addressID,
			Total:     total,
			Status:    model.OrderStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//最小通貨単位へ変換（×100で切り捨て）
		amount := total.Mul(decimal.NewFromInt(100)).IntPart()

		//Webhookで注文へ戻せるようにmetadataを付ける
		intent, err := u.gateway.CreateIntent(ctx, amount, map[string]string{
			"order_id": strconv.FormatInt(orderID, 10),
			"user_id":  strconv.FormatInt(userID, 10),
		})
		if err != nil {
			//intentが作れなかったら注文ごとロールバック
			return NewHTTPError(http.StatusBadGateway, "payment processor error")
		}

		//請求書作成
		if _, err := r.Invoices().Create(ctx, model.Invoice{
			OrderID:       orderID,
			UserID:        userID,
			TransactionID: intent.ID,
			Amount:        amount,
			Status:        model.InvoiceStatusRequiresPayment,
			CreatedAt:     now,
			UpdatedAt:     now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートを凍結（次の追加は新しいカートへ）
		if err := r.Carts().Archive(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = CheckoutOutput{
			Order: OrderOutput{
				ID:        orderID,
				UserID:    userID,
				CartID:    cart.ID,
				AddressID: &addressID,
				Total:     total,
				Status:    string(model.OrderStatusPending),
				CreatedAt: now,
				Items:     outItems,
			},
			ClientSecret: intent.ClientSecret,
		}
		return nil
	})

	if err != nil {
		return CheckoutOutput{}, err
	}
	return out, nil
}
