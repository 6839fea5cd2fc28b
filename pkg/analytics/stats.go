// Package analytics answers aggregate questions about the record store: the
// dashboard stats payload and the per-feature readmission breakdowns behind
// the charts. Everything here is a pure read over store.Repository.All; the
// only state is an optional Redis cache of the stats payload.
package analytics

import (
	"context"
	"math"

	"github.com/diacare-ai/readmission/pkg/common/logger"
	"github.com/diacare-ai/readmission/pkg/common/models"
	"github.com/diacare-ai/readmission/pkg/schema"
	"github.com/diacare-ai/readmission/pkg/store"
)

type Service struct {
	patients *store.Repository
	cache    *Cache
}

func NewService(patients *store.Repository, opts ...Option) *Service {
	svc := &Service{patients: patients}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Stats computes the dashboard summary over the whole store. An empty store
// yields a zeroed payload with an explanatory message rather than an error.
func (s *Service) Stats(ctx context.Context) (models.StatsPayload, error) {
	if cached, ok := s.cache.GetStats(ctx); ok {
		return cached, nil
	}
	records, err := s.patients.All(ctx)
	if err != nil {
		return models.StatsPayload{}, err
	}
	payload := computeStats(records)
	if err := s.cache.SetStats(ctx, payload); err != nil {
		logger.Log.WithError(err).Warn("Failed to cache dashboard stats")
	}
	return payload, nil
}

func computeStats(records []models.PatientRecord) models.StatsPayload {
	payload := models.StatsPayload{Features: len(schema.RequiredNames())}
	if len(records) == 0 {
		payload.Message = "data store is empty"
		return payload
	}
	for _, rec := range records {
		switch rec.Readmitted {
		case schema.LabelNo:
			payload.NoReadmission++
		case schema.LabelLess30:
			payload.ReadmissionLess++
		case schema.LabelMore30:
			payload.ReadmissionMore++
		}
	}
	payload.Rows = len(records)
	payload.ReadmissionCount = payload.ReadmissionLess + payload.ReadmissionMore
	payload.ReadmissionRate = round2(float64(payload.ReadmissionCount) / float64(payload.Rows) * 100)
	return payload
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type Option func(*Service)

func WithCache(cache *Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}
