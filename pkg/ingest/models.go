package ingest

import (
	"time"

	"gorm.io/datatypes"
)

const (
	BatchAccepted = "accepted"
	BatchRejected = "rejected"
	BatchFailed   = "failed"
)

// Batch is the audit record of one upload attempt, accepted or not.
type Batch struct {
	ID        string            `json:"id" gorm:"primaryKey;column:id"`
	Filename  string            `json:"filename" gorm:"column:filename"`
	Rows      int               `json:"rows" gorm:"column:rows"`
	Status    string            `json:"status" gorm:"column:status"`
	Error     string            `json:"error,omitempty" gorm:"column:error"`
	Details   datatypes.JSONMap `json:"details,omitempty" gorm:"column:details"`
	CreatedAt time.Time         `json:"created_at" gorm:"column:created_at"`
}

func (Batch) TableName() string {
	return "upload_batches"
}
