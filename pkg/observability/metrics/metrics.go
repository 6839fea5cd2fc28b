package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	uploadsAccepted    atomic.Int64
	uploadsRejected    atomic.Int64
	rowsIngested       atomic.Int64
	predictions        atomic.Int64
	predictionFailures atomic.Int64
	storeRows          atomic.Int64
)

func IncUploadAccepted() {
	uploadsAccepted.Add(1)
}

func IncUploadRejected() {
	uploadsRejected.Add(1)
}

func AddRowsIngested(n int) {
	rowsIngested.Add(int64(n))
}

func IncPrediction() {
	predictions.Add(1)
}

func IncPredictionFailure() {
	predictionFailures.Add(1)
}

func SetStoreRows(n int64) {
	storeRows.Store(n)
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP readmission_uploads_accepted_total Number of upload batches accepted into the store.\n")
	fmt.Fprintf(w, "# TYPE readmission_uploads_accepted_total counter\n")
	fmt.Fprintf(w, "readmission_uploads_accepted_total %d\n", uploadsAccepted.Load())

	fmt.Fprintf(w, "# HELP readmission_uploads_rejected_total Number of upload batches rejected by validation.\n")
	fmt.Fprintf(w, "# TYPE readmission_uploads_rejected_total counter\n")
	fmt.Fprintf(w, "readmission_uploads_rejected_total %d\n", uploadsRejected.Load())

	fmt.Fprintf(w, "# HELP readmission_rows_ingested_total Number of patient rows appended to the store.\n")
	fmt.Fprintf(w, "# TYPE readmission_rows_ingested_total counter\n")
	fmt.Fprintf(w, "readmission_rows_ingested_total %d\n", rowsIngested.Load())

	fmt.Fprintf(w, "# HELP readmission_predictions_total Number of predictions served.\n")
	fmt.Fprintf(w, "# TYPE readmission_predictions_total counter\n")
	fmt.Fprintf(w, "readmission_predictions_total %d\n", predictions.Load())

	fmt.Fprintf(w, "# HELP readmission_prediction_failures_total Number of prediction requests that failed.\n")
	fmt.Fprintf(w, "# TYPE readmission_prediction_failures_total counter\n")
	fmt.Fprintf(w, "readmission_prediction_failures_total %d\n", predictionFailures.Load())

	fmt.Fprintf(w, "# HELP readmission_store_rows Current number of rows in the patient store.\n")
	fmt.Fprintf(w, "# TYPE readmission_store_rows gauge\n")
	fmt.Fprintf(w, "readmission_store_rows %d\n", storeRows.Load())
}
