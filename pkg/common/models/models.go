package models

import (
	"time"
)

// PatientRecord is one hospital encounter of a diabetic patient: the ten
// model features plus the readmission outcome. JSON tags follow the column
// names of the source dataset.
type PatientRecord struct {
	ID               int64  `json:"id,omitempty"`
	NumberInpatient  int    `json:"number_inpatient"`
	NumberDiagnoses  int    `json:"number_diagnoses"`
	NumberEmergency  int    `json:"number_emergency"`
	NumberOutpatient int    `json:"number_outpatient"`
	TimeInHospital   int    `json:"time_in_hospital"`
	Diag1            string `json:"diag_1"`
	Diag2            string `json:"diag_2"`
	Diag3            string `json:"diag_3"`
	MedicalSpecialty string `json:"medical_specialty"`
	DiabetesMed      string `json:"diabetesMed"`
	Readmitted       string `json:"readmitted"`
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // records-ingested, model-scored
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Ingestion surface
type UploadResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	RowsAdded     int    `json:"rows_added"`
	TotalRowsInDB int64  `json:"total_rows_in_db"`
}

// Inference surface
type PredictRequest struct {
	Data map[string]interface{} `json:"data"`
}

type PredictResponse struct {
	Status             string  `json:"status"`
	Prediction         string  `json:"prediction"`
	PredictionCategory string  `json:"prediction_category"`
	RiskLevel          string  `json:"risk_level"`
	Probability        float64 `json:"probability"`
	Message            string  `json:"message"`
}

// Dashboard surface
type StatsPayload struct {
	Rows             int     `json:"rows"`
	ReadmissionRate  float64 `json:"readmission_rate"`
	Features         int     `json:"features"`
	ReadmissionCount int     `json:"readmission_count"`
	NoReadmission    int     `json:"no_readmission"`
	ReadmissionLess  int     `json:"readmission_less_30"`
	ReadmissionMore  int     `json:"readmission_more_30"`
	Message          string  `json:"message,omitempty"`
}

type ChartPayload struct {
	ChartType string                   `json:"chart_type"`
	Title     string                   `json:"title"`
	Style     string                   `json:"chart_style,omitempty"`
	Data      []map[string]interface{} `json:"data"`
}

type ChartDescriptor struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ChartsListResponse struct {
	AvailableCharts []ChartDescriptor `json:"available_charts"`
}
