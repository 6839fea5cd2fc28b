package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/diacare-ai/readmission/pkg/common/logger"
	"github.com/diacare-ai/readmission/pkg/common/models"
	"github.com/diacare-ai/readmission/pkg/observability/metrics"
	"github.com/diacare-ai/readmission/pkg/outcome"
	"github.com/diacare-ai/readmission/pkg/schema"
)

type HTTPHandler struct {
	engine   *Engine
	taxonomy *outcome.Taxonomy
	audit    *AuditRepository
}

// NewHTTPHandler builds the prediction endpoints. A nil audit repository
// disables prediction logging without affecting the predictions themselves.
func NewHTTPHandler(engine *Engine, taxonomy *outcome.Taxonomy, audit *AuditRepository) *HTTPHandler {
	return &HTTPHandler{engine: engine, taxonomy: taxonomy, audit: audit}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/model/predict", h.handlePredict).Methods(http.MethodPost)
	router.HandleFunc("/model/predictions", h.handleRecentPredictions).Methods(http.MethodGet)
}

func (h *HTTPHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req models.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid request body"})
		return
	}
	if req.Data == nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "data object required"})
		return
	}

	pred, err := h.engine.Predict(req.Data)
	if err != nil {
		h.writePredictError(w, err)
		return
	}
	metrics.IncPrediction()

	result := h.taxonomy.Normalize(pred.RawLabel)

	// Audit failures must not fail the prediction the caller already has.
	if h.audit != nil {
		if err := h.audit.Record(r.Context(), req.Data, pred, result); err != nil {
			logger.WithComponent("inference").WithError(err).Warn("Failed to record prediction")
		}
	}

	writeJSON(w, http.StatusOK, models.PredictResponse{
		Status:             "success",
		Prediction:         pred.RawLabel,
		PredictionCategory: result.Category,
		RiskLevel:          string(result.RiskTier),
		Probability:        pred.Probability,
		Message:            fmt.Sprintf("%s (risk level: %s)", result.Category, result.RiskTier),
	})
}

func (h *HTTPHandler) writePredictError(w http.ResponseWriter, err error) {
	metrics.IncPredictionFailure()

	var mfe *schema.MissingFeaturesError
	if errors.As(err, &mfe) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":            mfe.Error(),
			"missing_features": mfe.Names,
		})
		return
	}

	if errors.Is(err, ErrModelUnavailable) {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "predictive model unavailable",
		})
		return
	}

	logger.WithComponent("inference").WithError(err).Error("Prediction failed")
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal error"})
}

func (h *HTTPHandler) handleRecentPredictions(w http.ResponseWriter, r *http.Request) {
	logs := []PredictionLog{}
	if h.audit != nil {
		recent, err := h.audit.Recent(r.Context(), parseLimit(r, 20))
		if err != nil {
			logger.WithComponent("inference").WithError(err).Error("Listing predictions failed")
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal error"})
			return
		}
		if recent != nil {
			logs = recent
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": logs,
		"count":       len(logs),
	})
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
