package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/diacare-ai/readmission/pkg/common/logger"
	"github.com/diacare-ai/readmission/pkg/common/models"
	"github.com/diacare-ai/readmission/pkg/schema"
)

// EnsureSeeded loads the bootstrap CSV into an empty store. Seeding is
// deliberately tolerant: gaps and unparseable numerics are filled column-wise
// with the column median (numeric) or most frequent value (categorical), so a
// partially dirty export still yields a usable store. A populated store is
// never touched.
func (r *Repository) EnsureSeeded(ctx context.Context, csvPath string) (int, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.WithComponent("store").WithField("rows", count).Debug("Store already populated, skipping seed")
		return 0, nil
	}
	if csvPath == "" {
		return 0, nil
	}

	f, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("store").WithField("path", csvPath).Info("No seed file, starting with an empty store")
			return 0, nil
		}
		return 0, fmt.Errorf("open seed csv: %w", err)
	}
	defer f.Close()

	records, err := readSeedCSV(f)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	if err := r.AppendBatch(ctx, records); err != nil {
		return 0, err
	}

	logger.WithComponent("store").WithFields(map[string]interface{}{
		"rows": len(records),
		"path": csvPath,
	}).Info("Seeded store from csv")
	return len(records), nil
}

func readSeedCSV(rd io.Reader) ([]models.PatientRecord, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read seed rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	fills := computeFills(colIdx, rows)

	records := make([]models.PatientRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, seedRecord(colIdx, row, fills))
	}
	return records, nil
}

type seedFills struct {
	numeric     map[string]int
	categorical map[string]string
	target      string
}

func computeFills(colIdx map[string]int, rows [][]string) seedFills {
	fills := seedFills{
		numeric:     make(map[string]int),
		categorical: make(map[string]string),
	}

	for _, feat := range schema.Required() {
		if feat.Kind == schema.KindNumeric {
			var vals []int
			for _, row := range rows {
				if v, ok := parseIntCell(cellAt(colIdx, row, feat.Name)); ok {
					vals = append(vals, v)
				}
			}
			fills.numeric[feat.Name] = median(vals)
		} else {
			fills.categorical[feat.Name] = mode(columnValues(colIdx, rows, feat.Name), "Unknown")
		}
	}

	fills.target = mode(columnValues(colIdx, rows, schema.Target), schema.LabelNo)
	return fills
}

func seedRecord(colIdx map[string]int, row []string, fills seedFills) models.PatientRecord {
	num := func(name string) int {
		if v, ok := parseIntCell(cellAt(colIdx, row, name)); ok {
			return v
		}
		return fills.numeric[name]
	}
	cat := func(name string) string {
		if cell := cellAt(colIdx, row, name); !cellMissing(cell) {
			return cell
		}
		return fills.categorical[name]
	}

	target := fills.target
	if cell := cellAt(colIdx, row, schema.Target); !cellMissing(cell) {
		target = cell
	}

	return models.PatientRecord{
		NumberInpatient:  num("number_inpatient"),
		NumberDiagnoses:  num("number_diagnoses"),
		NumberEmergency:  num("number_emergency"),
		NumberOutpatient: num("number_outpatient"),
		TimeInHospital:   num("time_in_hospital"),
		Diag1:            cat("diag_1"),
		Diag2:            cat("diag_2"),
		Diag3:            cat("diag_3"),
		MedicalSpecialty: cat("medical_specialty"),
		DiabetesMed:      cat("diabetesMed"),
		Readmitted:       target,
	}
}

func cellAt(colIdx map[string]int, row []string, name string) string {
	idx, ok := colIdx[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Markers pandas-style exporters write for absent cells.
func cellMissing(cell string) bool {
	switch strings.ToLower(cell) {
	case "", "na", "n/a", "nan", "null", "none":
		return true
	}
	return false
}

func parseIntCell(cell string) (int, bool) {
	if cellMissing(cell) {
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

func columnValues(colIdx map[string]int, rows [][]string, name string) []string {
	var vals []string
	for _, row := range rows {
		if cell := cellAt(colIdx, row, name); !cellMissing(cell) {
			vals = append(vals, cell)
		}
	}
	return vals
}

func median(vals []int) int {
	if len(vals) == 0 {
		return 0
	}
	sort.Ints(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}

func mode(vals []string, fallback string) string {
	if len(vals) == 0 {
		return fallback
	}
	counts := make(map[string]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}

	best, bestCount := "", -1
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best
}
