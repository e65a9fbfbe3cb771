package usecase

import (
	"context"
	"net/http"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

// イベント種別→注文・請求書ステータスの固定対応表。
var orderStatusByEvent = map[string]model.OrderStatus{
	"payment_intent.succeeded":      model.OrderStatusConfirmed,
	"payment_intent.canceled":       model.OrderStatusCanceled,
	"payment_intent.payment_failed": model.OrderStatusCanceled,
}

var invoiceStatusByOrderStatus = map[model.OrderStatus]model.InvoiceStatus{
	model.OrderStatusConfirmed: model.InvoiceStatusSucceeded,
	model.OrderStatusCanceled:  model.InvoiceStatusCanceled,
}

// WebhookUsecase は決済プロバイダからの非同期イベントを注文へ反映する。
// 再配信・重複配信に耐えるよう、書き込みは全てorder id指定の単一UPDATE。
type WebhookUsecase struct {
	gateway     PaymentGateway
	orderRepo   repo.OrderRepository
	invoiceRepo repo.InvoiceRepository
	cartRepo    repo.CartRepository
	logRepo     repo.WebhookLogRepository
}

func NewWebhookUsecase(
	gateway PaymentGateway,
	orderRepo repo.OrderRepository,
	invoiceRepo repo.InvoiceRepository,
	cartRepo repo.CartRepository,
	logRepo repo.WebhookLogRepository,
) *WebhookUsecase {
	return &WebhookUsecase{
		gateway:     gateway,
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		cartRepo:    cartRepo,
		logRepo:     logRepo,
	}
}

// HandleEvent は署名検証→対応表→反映の順で処理する。
// 検証に通ったら、注文が見つからなくても200で受領する
// （プロバイダに再送を繰り返させないため）。
func (u *WebhookUsecase) HandleEvent(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := u.gateway.ConstructEvent(payload, sigHeader)
	if err != nil {
		//署名不正は状態へ一切触らず拒否する。ログだけ残す
		u.writeLog(ctx, "error", string(payload), err.Error())
		return NewHTTPError(http.StatusBadRequest, "invalid signature")
	}

	u.writeLog(ctx, event.Type, string(payload), "")

	orderStatus, ok := orderStatusByEvent[event.Type]
	if !ok {
		//知らないイベントは受領だけする
		return nil
	}

	//metadataが欠けている配信も受領だけする
	if event.OrderID <= 0 {
		return nil
	}

	//該当注文なしは再配信でも同じ応答になるようスキップ
	if err := u.orderRepo.UpdateStatus(ctx, event.OrderID, orderStatus); err != nil {
		if err == repo.ErrNotFound {
			return nil
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if st, ok := invoiceStatusByOrderStatus[orderStatus]; ok {
		if err := u.invoiceRepo.UpdateStatusByOrderID(ctx, event.OrderID, st); err != nil && err != repo.ErrNotFound {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	//支払い成功時は同ユーザーの開きっぱなしカートも閉じる
	if orderStatus == model.OrderStatusConfirmed && event.UserID > 0 {
		if err := u.cartRepo.ArchiveOpenByUserID(ctx, event.UserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	return nil
}

// 受信ログはベストエフォート。書けなくても本処理は止めない
func (u *WebhookUsecase) writeLog(ctx context.Context, eventType string, details string, errorMessage string) {
	_ = u.logRepo.Create(ctx, model.WebhookLog{
		EventType:    eventType,
		Details:      details,
		ErrorMessage: errorMessage,
		CreatedAt:    time.Now(),
	})
}
