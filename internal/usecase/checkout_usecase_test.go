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

type checkoutMocks struct {
	tx        *TxManagerMock
	addresses *AddressRepoMock
	gateway   *GatewayMock
	orders    *OrderRepoMock
	invoices  *InvoiceRepoMock
	carts     *CartRepoMock
	cartItems *CartItemRepoMock
	products  *ProductRepoMock
}

func newCheckoutUC() (*usecase.CheckoutUsecase, checkoutMocks) {
	m := checkoutMocks{
		tx:        new(TxManagerMock),
		addresses: new(AddressRepoMock),
		gateway:   new(GatewayMock),
		orders:    new(OrderRepoMock),
		invoices:  new(InvoiceRepoMock),
		carts:     new(CartRepoMock),
		cartItems: new(CartItemRepoMock),
		products:  new(ProductRepoMock),
	}
	m.tx.Repos = &TxReposMock{
		orders:    m.orders,
		invoices:  m.invoices,
		carts:     m.carts,
		cartItems: m.cartItems,
		products:  m.products,
	}
	return usecase.NewCheckoutUsecase(m.tx, m.addresses, m.gateway), m
}

func TestCheckoutUsecase_CreateOrder_UnknownAddress(t *testing.T) {
	uc, m := newCheckoutUC()

	m.addresses.On("FindByID", mock.Anything, int64(9)).Return(model.Address{}, repo.ErrNotFound)

	_, err := uc.CreateOrder(context.Background(), 1, usecase.CheckoutInput{AddressID: 9})
	assertErrContains(t, err, "invalid address")
	m.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestCheckoutUsecase_CreateOrder_ForeignAddress(t *testing.T) {
	uc, m := newCheckoutUC()

	m.addresses.On("FindByID", mock.Anything, int64(9)).Return(model.Address{ID: 9, UserID: 2}, nil)

	_, err := uc.CreateOrder(context.Background(), 1, usecase.CheckoutInput{AddressID: 9})
	assertErrContains(t, err, "another user's address")
	m.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestCheckoutUsecase_CreateOrder_EmptyCart(t *testing.T) {
	uc, m := newCheckoutUC()

	m.addresses.On("FindByID", mock.Anything, int64(9)).Return(model.Address{ID: 9, UserID: 1}, nil)
	m.tx.On("WithinTx", mock.Anything).Return(nil)
	m.carts.On("FindOpenByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	m.cartItems.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{}, nil)

	_, err := uc.CreateOrder(context.Background(), 1, usecase.CheckoutInput{AddressID: 9})
	assertErrContains(t, err, "the cart is empty")

	m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_CreateOrder_NoOpenCart(t *testing.T) {
	uc, m := newCheckoutUC()

	m.addresses.On("FindByID", mock.Anything, int64(9)).Return(model.Address{ID: 9, UserID: 1}, nil)
	m.tx.On("WithinTx", mock.Anything).Return(nil)
	m.carts.On("FindOpenByUserID", mock.Anything, int64(1)).Return(model.Cart{}, repo.ErrNotFound)

	_, err := uc.CreateOrder(context.Background(), 1, usecase.CheckoutInput{AddressID: 9})
	assertErrContains(t, err, "the cart is empty")
}

// 99.99×2 + 11.11×1 = 211.09 / 最小通貨単位で21109
func TestCheckoutUsecase_CreateOrder_Success(t *testing.T) {
	ctx := context.Background()
	uc, m := newCheckoutUC()

	userID := int64(1)
	cartID := int64(5)
	orderID := int64(42)

	m.addresses.On("FindByID", mock.Anything, int64(9)).Return(model.Address{ID: 9, UserID: userID}, nil)
	m.tx.On("WithinTx", mock.Anything).Return(nil)

	m.carts.On("FindOpenByUserID", mock.Anything, userID).Return(model.Cart{ID: cartID, UserID: userID}, nil)
	m.cartItems.On("ListByCartID", mock.Anything, cartID).Return([]model.CartItem{
		{ID: 10, CartID: cartID, ProductID: 100, Count: 2},
		{ID: 11, CartID: cartID, ProductID: 101, Count: 1},
	}, nil)

	m.products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Price: dec("99.99"), Discount: 0, IsActive: true,
	}, nil)
	m.products.On("FindByID", mock.Anything, int64(101)).Return(model.Product{
		ID: 101, Price: dec("11.11"), Discount: 0, IsActive: true,
	}, nil)

	m.cartItems.On("SnapshotPricing", mock.Anything, int64(10), dec("99.99"), int64(0)).Return(nil)
	m.cartItems.On("SnapshotPricing", mock.Anything, int64(11), dec("11.11"), int64(0)).Return(nil)

	m.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == userID &&
			o.CartID == cartID &&
			o.Status == model.OrderStatusPending &&
			dec("211.09").Equal(o.Total)
	})).Return(orderID, nil)

	m.gateway.On("CreateIntent", mock.Anything, int64(21109), map[string]string{
		"order_id": "42",
		"user_id":  "1",
	}).Return(usecase.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil)

	m.invoices.On("Create", mock.Anything, mock.MatchedBy(func(inv model.Invoice) bool {
		return inv.OrderID == orderID &&
			inv.UserID == userID &&
			inv.TransactionID == "pi_123" &&
			inv.Amount == int64(21109) &&
			inv.Status == model.InvoiceStatusRequiresPayment
	})).Return(int64(1), nil)

	m.carts.On("Archive", mock.Anything, cartID).Return(nil)

	out, err := uc.CreateOrder(ctx, userID, usecase.CheckoutInput{AddressID: 9})
	assert.NoError(t, err)
	assert.Equal(t, orderID, out.Order.ID)
	assert.Equal(t, "PENDING", out.Order.Status)
	assert.True(t, dec("211.09").Equal(out.Order.Total))
	assert.Equal(t, 2, len(out.Order.Items))
	assert.Equal(t, "pi_123_secret", out.ClientSecret)

	m.orders.AssertExpectations(t)
	m.gateway.AssertExpectations(t)
	m.invoices.AssertExpectations(t)
	m.carts.AssertExpectations(t)
	m.cartItems.AssertExpectations(t)
}

// intent作成に失敗したら502。請求書もカートのアーカイブも行われない
func TestCheckoutUsecase_CreateOrder_GatewayError_RollsBack(t *testing.T) {
	uc, m := newCheckoutUC()

	userID := int64(1)
	cartID := int64(5)

	m.addresses.On("FindByID", mock.Anything, int64(9)).Return(model.Address{ID: 9, UserID: userID}, nil)
	m.tx.On("WithinTx", mock.Anything).Return(nil)

	m.carts.On("FindOpenByUserID", mock.Anything, userID).Return(model.Cart{ID: cartID, UserID: userID}, nil)
	m.cartItems.On("ListByCartID", mock.Anything, cartID).Return([]model.CartItem{
		{ID: 10, CartID: cartID, ProductID: 100, Count: 1},
	}, nil)
	m.products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Price: dec("10.00"), IsActive: true,
	}, nil)
	m.cartItems.On("SnapshotPricing", mock.Anything, int64(10), dec("10.00"), int64(0)).Return(nil)
	m.orders.On("Create", mock.Anything, mock.Anything).Return(int64(42), nil)

	m.gateway.On("CreateIntent", mock.Anything, int64(1000), mock.Anything).
		Return(usecase.PaymentIntent{}, errors.New("stripe down"))

	_, err := uc.CreateOrder(context.Background(), userID, usecase.CheckoutInput{AddressID: 9})
	assertErrContains(t, err, "payment processor error")

	m.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.carts.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything)
}
