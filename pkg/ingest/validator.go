package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/diacare-ai/readmission/pkg/common/models"
	"github.com/diacare-ai/readmission/pkg/schema"
)

var ErrEmptyTable = errors.New("upload contains no data rows")

// SchemaError reports required columns absent from an upload header. The
// whole batch is rejected.
type SchemaError struct {
	MissingColumns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.MissingColumns, ", "))
}

func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IncompleteDataError reports rows with empty or unparseable cells. Rows is
// the count of offending rows, not their positions.
type IncompleteDataError struct {
	Rows int
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("%d row(s) contain missing values", e.Rows)
}

func IsIncompleteDataError(err error) bool {
	var ie *IncompleteDataError
	return errors.As(err, &ie)
}

type Validator struct {
	features []schema.Feature
}

func NewValidator() *Validator {
	return &Validator{features: schema.Required()}
}

// Validate checks an upload against the feature schema and converts it to
// patient records. Acceptance is all-or-nothing: one bad row rejects the
// whole table, so a partial batch can never reach the store.
func (v *Validator) Validate(table Table) ([]models.PatientRecord, error) {
	if table.Empty() {
		return nil, ErrEmptyTable
	}

	colIdx := make(map[string]int, len(table.Columns))
	for i, name := range table.Columns {
		colIdx[name] = i
	}

	var missing []string
	for _, f := range v.features {
		if _, ok := colIdx[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	if _, ok := colIdx[schema.Target]; !ok {
		missing = append(missing, schema.Target)
	}
	if len(missing) > 0 {
		return nil, &SchemaError{MissingColumns: missing}
	}

	records := make([]models.PatientRecord, 0, len(table.Rows))
	badRows := 0
	for _, row := range table.Rows {
		rec, ok := v.convertRow(colIdx, row)
		if !ok {
			badRows++
			continue
		}
		records = append(records, rec)
	}
	if badRows > 0 {
		return nil, &IncompleteDataError{Rows: badRows}
	}

	return records, nil
}

func (v *Validator) convertRow(colIdx map[string]int, row []string) (models.PatientRecord, bool) {
	numeric := make(map[string]int, 5)
	categorical := make(map[string]string, 5)

	for _, f := range v.features {
		cell := fieldAt(colIdx, row, f.Name)
		if f.Kind == schema.KindNumeric {
			val, ok := parseNumericCell(cell)
			if !ok {
				return models.PatientRecord{}, false
			}
			numeric[f.Name] = val
		} else {
			if missingCell(cell) {
				return models.PatientRecord{}, false
			}
			categorical[f.Name] = cell
		}
	}

	target := fieldAt(colIdx, row, schema.Target)
	if missingCell(target) {
		return models.PatientRecord{}, false
	}

	return models.PatientRecord{
		NumberInpatient:  numeric["number_inpatient"],
		NumberDiagnoses:  numeric["number_diagnoses"],
		NumberEmergency:  numeric["number_emergency"],
		NumberOutpatient: numeric["number_outpatient"],
		TimeInHospital:   numeric["time_in_hospital"],
		Diag1:            categorical["diag_1"],
		Diag2:            categorical["diag_2"],
		Diag3:            categorical["diag_3"],
		MedicalSpecialty: categorical["medical_specialty"],
		DiabetesMed:      categorical["diabetesMed"],
		Readmitted:       target,
	}, true
}

func fieldAt(colIdx map[string]int, row []string, name string) string {
	idx, ok := colIdx[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Markers pandas-style exporters write for absent cells.
func missingCell(cell string) bool {
	switch strings.ToLower(cell) {
	case "", "na", "n/a", "nan", "null", "none":
		return true
	}
	return false
}

// Numeric cells accept integers and integral-looking floats; "5.0" counts,
// fractions truncate toward zero.
func parseNumericCell(cell string) (int, bool) {
	if missingCell(cell) {
		return 0, false
	}
	if v, err := strconv.Atoi(cell); err == nil {
		return v, true
	}
	if fv, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsNaN(fv) && !math.IsInf(fv, 0) {
		return int(fv), true
	}
	return 0, false
}
