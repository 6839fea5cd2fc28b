package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/diacare-ai/readmission/pkg/common/logger"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/data/upload", h.handleUpload).Methods(http.MethodPost)
	router.HandleFunc("/data/uploads", h.handleRecentUploads).Methods(http.MethodGet)
}

// handleUpload accepts a CSV either as a multipart "file" part or as the raw
// request body.
func (h *HTTPHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var (
		src      io.Reader = r.Body
		filename           = "upload.csv"
	)
	if ct := r.Header.Get("Content-Type"); strings.HasPrefix(ct, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error": "multipart form must carry a 'file' part",
			})
			return
		}
		defer file.Close()
		src = file
		if header.Filename != "" {
			filename = header.Filename
		}
	}

	table, err := ParseCSV(src)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": fmt.Sprintf("invalid csv: %v", err),
		})
		return
	}

	resp, err := h.service.Ingest(r.Context(), filename, table)
	if err != nil {
		h.writeIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) writeIngestError(w http.ResponseWriter, err error) {
	var se *SchemaError
	if errors.As(err, &se) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":           se.Error(),
			"missing_columns": se.MissingColumns,
		})
		return
	}

	var ie *IncompleteDataError
	if errors.As(err, &ie) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":                    ie.Error(),
			"rows_with_missing_values": ie.Rows,
		})
		return
	}

	if errors.Is(err, ErrEmptyTable) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		return
	}

	logger.WithComponent("ingest").WithError(err).Error("Upload failed")
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal error"})
}

func (h *HTTPHandler) handleRecentUploads(w http.ResponseWriter, r *http.Request) {
	batches, err := h.service.RecentBatches(r.Context(), parseLimit(r, 20))
	if err != nil {
		logger.WithComponent("ingest").WithError(err).Error("Listing uploads failed")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal error"})
		return
	}
	if batches == nil {
		batches = []Batch{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uploads": batches,
		"count":   len(batches),
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
