package analytics

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/diacare-ai/readmission/pkg/common/logger"
	"github.com/diacare-ai/readmission/pkg/common/models"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/dashboard/stats", h.handleStats).Methods(http.MethodGet)
	router.HandleFunc("/dashboard/chart", h.handleChart).Methods(http.MethodGet)
	router.HandleFunc("/dashboard/charts/list", h.handleChartsList).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.Stats(r.Context())
	if err != nil {
		logger.WithComponent("analytics").WithError(err).Error("Computing dashboard stats failed")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *HTTPHandler) handleChart(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	chartType := query.Get("chart_type")
	if chartType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "chart_type parameter is required",
		})
		return
	}

	payload, err := h.service.Chart(r.Context(), chartType, query.Get("feature"), query.Get("chart_style"))
	if err != nil {
		h.writeChartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *HTTPHandler) writeChartError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrStoreEmpty) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error": "no records in the data store, upload data via /data/upload first",
		})
		return
	}

	var ce *ChartError
	if errors.As(err, &ce) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": ce.Reason})
		return
	}

	logger.WithComponent("analytics").WithError(err).Error("Building chart failed")
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal error"})
}

func (h *HTTPHandler) handleChartsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ChartsListResponse{AvailableCharts: ChartDescriptors()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
