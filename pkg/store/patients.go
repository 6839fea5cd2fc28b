// Package store persists patient encounter records behind gorm. It is the
// only package that talks to the patients table; everything else goes
// through the Repository.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/diacare-ai/readmission/pkg/common/models"
)

// StoreError wraps any database failure crossing the package boundary so
// callers can tell infrastructure faults apart from validation errors.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("patient store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

type patientModel struct {
	ID               int64  `gorm:"primaryKey;autoIncrement;column:id"`
	NumberInpatient  int    `gorm:"column:number_inpatient"`
	NumberDiagnoses  int    `gorm:"column:number_diagnoses"`
	NumberEmergency  int    `gorm:"column:number_emergency"`
	NumberOutpatient int    `gorm:"column:number_outpatient"`
	TimeInHospital   int    `gorm:"column:time_in_hospital"`
	Diag1            string `gorm:"column:diag_1"`
	Diag2            string `gorm:"column:diag_2"`
	Diag3            string `gorm:"column:diag_3"`
	MedicalSpecialty string `gorm:"column:medical_specialty"`
	DiabetesMed      string `gorm:"column:diabetesMed"`
	Readmitted       string `gorm:"column:readmitted"`
}

func (patientModel) TableName() string {
	return "patients_top10"
}

type Repository struct {
	db *gorm.DB

	// Appends are serialized: sqlite permits a single writer, and batch
	// inserts must not interleave.
	mu sync.Mutex
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	if err := r.db.AutoMigrate(&patientModel{}); err != nil {
		return &StoreError{Op: "migrate", Err: err}
	}
	return nil
}

// AppendBatch inserts all records in one transaction. Either every row lands
// or none does.
func (r *Repository) AppendBatch(ctx context.Context, records []models.PatientRecord) error {
	if len(records) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]patientModel, len(records))
	for i, rec := range records {
		rows[i] = toModel(rec)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, 500).Error
	})
	if err != nil {
		return &StoreError{Op: "append", Err: err}
	}
	return nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&patientModel{}).Count(&n).Error; err != nil {
		return 0, &StoreError{Op: "count", Err: err}
	}
	return n, nil
}

// All returns every stored record in insertion order.
func (r *Repository) All(ctx context.Context) ([]models.PatientRecord, error) {
	var rows []patientModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}

	records := make([]models.PatientRecord, len(rows))
	for i, row := range rows {
		records[i] = toDomain(row)
	}
	return records, nil
}

func toModel(rec models.PatientRecord) patientModel {
	return patientModel{
		NumberInpatient:  rec.NumberInpatient,
		NumberDiagnoses:  rec.NumberDiagnoses,
		NumberEmergency:  rec.NumberEmergency,
		NumberOutpatient: rec.NumberOutpatient,
		TimeInHospital:   rec.TimeInHospital,
		Diag1:            rec.Diag1,
		Diag2:            rec.Diag2,
		Diag3:            rec.Diag3,
		MedicalSpecialty: rec.MedicalSpecialty,
		DiabetesMed:      rec.DiabetesMed,
		Readmitted:       rec.Readmitted,
	}
}

func toDomain(row patientModel) models.PatientRecord {
	return models.PatientRecord{
		ID:               row.ID,
		NumberInpatient:  row.NumberInpatient,
		NumberDiagnoses:  row.NumberDiagnoses,
		NumberEmergency:  row.NumberEmergency,
		NumberOutpatient: row.NumberOutpatient,
		TimeInHospital:   row.TimeInHospital,
		Diag1:            row.Diag1,
		Diag2:            row.Diag2,
		Diag3:            row.Diag3,
		MedicalSpecialty: row.MedicalSpecialty,
		DiabetesMed:      row.DiabetesMed,
		Readmitted:       row.Readmitted,
	}
}
