package repository

import (
	"context"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"gorm.io/gorm"
)

type webhookLogGormRepository struct {
	db *gorm.DB
}

func NewWebhookLogGormRepository(db *gorm.DB) repo.WebhookLogRepository {
	return &webhookLogGormRepository{db: db}
}

func (r *webhookLogGormRepository) Create(ctx context.Context, log model.WebhookLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *webhookLogGormRepository) ListRecent(ctx context.Context, limit int) ([]model.WebhookLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var logs []model.WebhookLog
	if err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return []model.WebhookLog{}, err
	}
	return logs, nil
}
