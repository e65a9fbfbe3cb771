package usecase_test

import (
	"context"
	"errors"
	"testing"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
	"shop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type webhookMocks struct {
	gateway  *GatewayMock
	orders   *OrderRepoMock
	invoices *InvoiceRepoMock
	carts    *CartRepoMock
	logs     *WebhookLogRepoMock
}

func newWebhookUC() (*usecase.WebhookUsecase, webhookMocks) {
	m := webhookMocks{
		gateway:  new(GatewayMock),
		orders:   new(OrderRepoMock),
		invoices: new(InvoiceRepoMock),
		carts:    new(CartRepoMock),
		logs:     new(WebhookLogRepoMock),
	}
	// 受信ログはベストエフォートなので既定で成功させる
	m.logs.On("Create", mock.Anything, mock.Anything).Return(nil)
	return usecase.NewWebhookUsecase(m.gateway, m.orders, m.invoices, m.carts, m.logs), m
}

func TestWebhookUsecase_InvalidSignature_NoMutation(t *testing.T) {
	uc, m := newWebhookUC()

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	m.gateway.On("ConstructEvent", payload, "bad").Return(usecase.PaymentEvent{}, errors.New("signature mismatch"))

	err := uc.HandleEvent(context.Background(), payload, "bad")
	assertErrContains(t, err, "invalid signature")

	m.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	m.invoices.AssertNotCalled(t, "UpdateStatusByOrderID", mock.Anything, mock.Anything, mock.Anything)
	m.carts.AssertNotCalled(t, "ArchiveOpenByUserID", mock.Anything, mock.Anything)
}

func TestWebhookUsecase_Succeeded_ConfirmsOrder(t *testing.T) {
	uc, m := newWebhookUC()

	payload := []byte(`{}`)
	m.gateway.On("ConstructEvent", payload, "sig").Return(usecase.PaymentEvent{
		Type:    "payment_intent.succeeded",
		OrderID: 42,
		UserID:  1,
	}, nil)

	m.orders.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusConfirmed).Return(nil)
	m.invoices.On("UpdateStatusByOrderID", mock.Anything, int64(42), model.InvoiceStatusSucceeded).Return(nil)
	m.carts.On("ArchiveOpenByUserID", mock.Anything, int64(1)).Return(nil)

	err := uc.HandleEvent(context.Background(), payload, "sig")
	assert.NoError(t, err)

	m.orders.AssertExpectations(t)
	m.invoices.AssertExpectations(t)
	m.carts.AssertExpectations(t)
}

func TestWebhookUsecase_PaymentFailed_CancelsOrder(t *testing.T) {
	uc, m := newWebhookUC()

	payload := []byte(`{}`)
	m.gateway.On("ConstructEvent", payload, "sig").Return(usecase.PaymentEvent{
		Type:    "payment_intent.payment_failed",
		OrderID: 42,
		UserID:  1,
	}, nil)

	m.orders.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusCanceled).Return(nil)
	m.invoices.On("UpdateStatusByOrderID", mock.Anything, int64(42), model.InvoiceStatusCanceled).Return(nil)

	err := uc.HandleEvent(context.Background(), payload, "sig")
	assert.NoError(t, err)

	// 失敗イベントではカートは閉じない
	m.carts.AssertNotCalled(t, "ArchiveOpenByUserID", mock.Anything, mock.Anything)
}

func TestWebhookUsecase_Canceled_CancelsOrder(t *testing.T) {
	uc, m := newWebhookUC()

	payload := []byte(`{}`)
	m.gateway.On("ConstructEvent", payload, "sig").Return(usecase.PaymentEvent{
		Type:    "payment_intent.canceled",
		OrderID: 42,
	}, nil)

	m.orders.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusCanceled).Return(nil)
	m.invoices.On("UpdateStatusByOrderID", mock.Anything, int64(42), model.InvoiceStatusCanceled).Return(nil)

	err := uc.HandleEvent(context.Background(), payload, "sig")
	assert.NoError(t, err)
}

// 同じイベントの再配信でも結果・応答は変わらない
func TestWebhookUsecase_DoubleDelivery_Idempotent(t *testing.T) {
	uc, m := newWebhookUC()

	payload := []byte(`{}`)
	m.gateway.On("ConstructEvent", payload, "sig").Return(usecase.PaymentEvent{
		Type:    "payment_intent.succeeded",
		OrderID: 42,
		UserID:  1,
	}, nil)

	m.orders.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusConfirmed).Return(nil).Twice()
	m.invoices.On("UpdateStatusByOrderID", mock.Anything, int64(42), model.InvoiceStatusSucceeded).Return(nil).Twice()
	m.carts.On("ArchiveOpenByUserID", mock.Anything, int64(1)).Return(nil).Twice()

	assert.NoError(t, uc.HandleEvent(context.Background(), payload, "sig"))
	assert.NoError(t, uc.HandleEvent(context.Background(), payload, "sig"))

	m.orders.AssertExpectations(t)
}

func TestWebhookUsecase_UnknownOrder_AckWithoutWrites(t *testing.T) {
	uc, m := newWebhookUC()

	payload := []byte(`{}`)
	m.gateway.On("ConstructEvent", payload, "sig").Return(usecase.PaymentEvent{
		Type:    "payment_intent.succeeded",
		OrderID: 999,
		UserID:  1,
	}, nil)

	m.orders.On("UpdateStatus", mock.Anything, int64(999), model.OrderStatusConfirmed).Return(repo.ErrNotFound)

	err := uc.HandleEvent(context.Background(), payload, "sig")
	assert.NoError(t, err)

	m.invoices.AssertNotCalled(t, "UpdateStatusByOrderID", mock.Anything, mock.Anything, mock.Anything)
	m.carts.AssertNotCalled(t, "ArchiveOpenByUserID", mock.Anything, mock.Anything)
}

func TestWebhookUsecase_UnrecognizedEvent_Ack(t *testing.T) {
	uc, m := newWebhookUC()

	payload := []byte(`{}`)
	m.gateway.On("ConstructEvent", payload, "sig").Return(usecase.PaymentEvent{
		Type:    "charge.refunded",
		OrderID: 42,
	}, nil)

	err := uc.HandleEvent(context.Background(), payload, "sig")
	assert.NoError(t, err)

	m.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookUsecase_MissingOrderMetadata_Ack(t *testing.T) {
	uc, m := newWebhookUC()

	payload := []byte(`{}`)
	m.gateway.On("ConstructEvent", payload, "sig").Return(usecase.PaymentEvent{
		Type: "payment_intent.succeeded",
	}, nil)

	err := uc.HandleEvent(context.Background(), payload, "sig")
	assert.NoError(t, err)

	m.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

// ログ書き込みの失敗は本処理を止めない
func TestWebhookUsecase_LogFailure_StillProcesses(t *testing.T) {
	gateway := new(GatewayMock)
	orders := new(OrderRepoMock)
	invoices := new(InvoiceRepoMock)
	carts := new(CartRepoMock)
	logs := new(WebhookLogRepoMock)

	logs.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	uc := usecase.NewWebhookUsecase(gateway, orders, invoices, carts, logs)

	payload := []byte(`{}`)
	gateway.On("ConstructEvent", payload, "sig").Return(usecase.PaymentEvent{
		Type:    "payment_intent.canceled",
		OrderID: 42,
	}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusCanceled).Return(nil)
	invoices.On("UpdateStatusByOrderID", mock.Anything, int64(42), model.InvoiceStatusCanceled).Return(nil)

	err := uc.HandleEvent(context.Background(), payload, "sig")
	assert.NoError(t, err)
}
