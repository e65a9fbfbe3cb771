package repository

import (
	"context"

	"shop/internal/domain/model"
)

type WebhookLogRepository interface {
	Create(ctx context.Context, log model.WebhookLog) error
	ListRecent(ctx context.Context, limit int) ([]model.WebhookLog, error)
}
