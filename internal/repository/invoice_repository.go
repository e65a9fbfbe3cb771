package repository

import (
	"context"

	"shop/internal/domain/model"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice model.Invoice) (int64, error)
	FindByOrderID(ctx context.Context, orderID int64) (model.Invoice, error)
	//order_id指定の単一UPDATE。該当なしは ErrNotFound
	UpdateStatusByOrderID(ctx context.Context, orderID int64, status model.InvoiceStatus) error
}
