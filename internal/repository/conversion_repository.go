package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ink2deck/internal/model"
)

type ConversionRepository struct {
	db *gorm.DB
}

func NewConversionRepository(db *gorm.DB) *ConversionRepository {
	return &ConversionRepository{db: db}
}

func (r *ConversionRepository) Create(ctx context.Context, event *model.ConversionEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create conversion event failed: %w", err)
	}
	return nil
}

// ListByUsername returns at most limit events, newest first.
func (r *ConversionRepository) ListByUsername(ctx context.Context, username string, limit int) ([]model.ConversionEvent, error) {
	var events []model.ConversionEvent
	if err := r.db.WithContext(ctx).Where("username = ?", username).Order("created_at DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list conversion events failed: %w", err)
	}
	return events, nil
}
