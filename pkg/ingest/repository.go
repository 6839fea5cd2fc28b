package ingest

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&Batch{})
}

func (r *BatchRepository) Create(ctx context.Context, batch *Batch) error {
	batch.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *BatchRepository) Recent(ctx context.Context, limit int) ([]Batch, error) {
	var batches []Batch
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&batches).Error
	return batches, err
}
