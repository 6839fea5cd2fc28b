package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/diacare-ai/readmission/pkg/common/kafka"
	"github.com/diacare-ai/readmission/pkg/common/logger"
	"github.com/diacare-ai/readmission/pkg/common/models"
	"github.com/diacare-ai/readmission/pkg/observability/metrics"
	"github.com/diacare-ai/readmission/pkg/store"
)

// StatsInvalidator drops cached dashboard aggregates after the store
// changes, so reads issued after an accepted upload see the new rows.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

type Service struct {
	validator *Validator
	patients  *store.Repository
	batches   *BatchRepository
	producer  *kafka.Producer
	cache     StatsInvalidator
}

// NewService wires the upload pipeline. batches, producer and cache may be
// nil; auditing, eventing and cache invalidation are then skipped.
func NewService(validator *Validator, patients *store.Repository, batches *BatchRepository, producer *kafka.Producer, cache StatsInvalidator) *Service {
	return &Service{
		validator: validator,
		patients:  patients,
		batches:   batches,
		producer:  producer,
		cache:     cache,
	}
}

// Ingest validates one uploaded table and appends it to the store. The
// returned error is a SchemaError, IncompleteDataError or ErrEmptyTable for
// caller mistakes, and a store.StoreError for infrastructure faults.
func (s *Service) Ingest(ctx context.Context, filename string, table Table) (*models.UploadResponse, error) {
	records, err := s.validator.Validate(table)
	if err != nil {
		metrics.IncUploadRejected()
		s.audit(ctx, filename, len(table.Rows), err)
		logger.WithComponent("ingest").WithFields(map[string]interface{}{
			"filename": filename,
			"rows":     len(table.Rows),
		}).WithError(err).Warn("Upload rejected")
		return nil, err
	}

	if err := s.patients.AppendBatch(ctx, records); err != nil {
		s.audit(ctx, filename, len(records), err)
		return nil, err
	}

	metrics.IncUploadAccepted()
	metrics.AddRowsIngested(len(records))
	s.audit(ctx, filename, len(records), nil)

	total, err := s.patients.Count(ctx)
	if err != nil {
		// The batch is already committed; report what we know.
		logger.WithComponent("ingest").WithError(err).Warn("Count after append failed")
		total = int64(len(records))
	}
	metrics.SetStoreRows(total)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.WithComponent("ingest").WithError(err).Warn("Stats cache invalidation failed")
		}
	}

	if s.producer != nil {
		event := map[string]interface{}{
			"filename":   filename,
			"rows_added": len(records),
			"total_rows": total,
		}
		if err := s.producer.PublishEvent(ctx, "records-ingested", "readmission-service", event); err != nil {
			logger.WithComponent("ingest").WithError(err).Warn("Ingest event publish failed")
		}
	}

	logger.WithComponent("ingest").WithFields(map[string]interface{}{
		"filename":   filename,
		"rows_added": len(records),
		"total_rows": total,
	}).Info("Upload accepted")

	return &models.UploadResponse{
		Status:        "success",
		Message:       fmt.Sprintf("added %d records", len(records)),
		RowsAdded:     len(records),
		TotalRowsInDB: total,
	}, nil
}

func (s *Service) RecentBatches(ctx context.Context, limit int) ([]Batch, error) {
	if s.batches == nil {
		return nil, nil
	}
	return s.batches.Recent(ctx, limit)
}

func (s *Service) audit(ctx context.Context, filename string, rows int, cause error) {
	if s.batches == nil {
		return
	}

	batch := &Batch{
		ID:       uuid.New().String(),
		Filename: filename,
		Rows:     rows,
		Status:   BatchAccepted,
	}

	var se *SchemaError
	var ie *IncompleteDataError
	switch {
	case cause == nil:
	case errors.As(cause, &se):
		batch.Status = BatchRejected
		batch.Error = cause.Error()
		batch.Details = datatypes.JSONMap{"missing_columns": se.MissingColumns}
	case errors.As(cause, &ie):
		batch.Status = BatchRejected
		batch.Error = cause.Error()
		batch.Details = datatypes.JSONMap{"rows_with_missing_values": ie.Rows}
	case errors.Is(cause, ErrEmptyTable):
		batch.Status = BatchRejected
		batch.Error = cause.Error()
	default:
		batch.Status = BatchFailed
		batch.Error = cause.Error()
	}

	if err := s.batches.Create(ctx, batch); err != nil {
		logger.WithComponent("ingest").WithError(err).Warn("Upload audit write failed")
	}
}
