package inference

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/diacare-ai/readmission/pkg/outcome"
)

// PredictionLog is the audit record of one served prediction.
type PredictionLog struct {
	ID          string            `json:"id" gorm:"primaryKey;column:id"`
	Features    datatypes.JSONMap `json:"features" gorm:"column:features"`
	RawLabel    string            `json:"raw_label" gorm:"column:raw_label"`
	Category    string            `json:"category" gorm:"column:category"`
	RiskLevel   string            `json:"risk_level" gorm:"column:risk_level"`
	Probability float64           `json:"probability" gorm:"column:probability"`
	CreatedAt   time.Time         `json:"created_at" gorm:"column:created_at"`
}

func (PredictionLog) TableName() string {
	return "prediction_logs"
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&PredictionLog{})
}

func (r *AuditRepository) Record(ctx context.Context, features map[string]interface{}, pred Prediction, result outcome.Result) error {
	entry := PredictionLog{
		ID:          uuid.New().String(),
		Features:    datatypes.JSONMap(features),
		RawLabel:    pred.RawLabel,
		Category:    result.Category,
		RiskLevel:   string(result.RiskTier),
		Probability: pred.Probability,
		CreatedAt:   time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]PredictionLog, error) {
	var logs []PredictionLog
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
