package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/diacare-ai/readmission/pkg/common/models"
	"github.com/diacare-ai/readmission/pkg/schema"
)

const (
	ChartByDiagnoses       = "readmission_by_diagnoses"
	ChartByInpatientVisits = "readmission_by_inpatient_visits"
	ChartByDiabetesMed     = "readmission_by_diabetes_med"
	ChartCustom            = "custom"
)

const (
	StyleBar  = "bar"
	StyleLine = "line"
	StylePie  = "pie"
)

// ErrStoreEmpty is returned when a chart is requested before any records
// have been loaded.
var ErrStoreEmpty = errors.New("no records in the data store")

// ChartError marks a chart request the client got wrong: unknown type or
// feature, or a style that does not fit the feature kind.
type ChartError struct {
	Reason string
}

func (e *ChartError) Error() string {
	return e.Reason
}

func IsChartError(err error) bool {
	var ce *ChartError
	return errors.As(err, &ce)
}

// Chart builds the data series for one of the named charts, or a custom
// series over any schema feature. The result carries data points only;
// rendering is left to the caller.
func (s *Service) Chart(ctx context.Context, chartType, feature, style string) (models.ChartPayload, error) {
	records, err := s.patients.All(ctx)
	if err != nil {
		return models.ChartPayload{}, err
	}
	if len(records) == 0 {
		return models.ChartPayload{}, ErrStoreEmpty
	}
	switch chartType {
	case ChartByDiagnoses:
		return diagnosesChart(records), nil
	case ChartByInpatientVisits:
		return inpatientVisitsChart(records), nil
	case ChartByDiabetesMed:
		return diabetesMedChart(records), nil
	case ChartCustom:
		return customChart(records, feature, style)
	default:
		return models.ChartPayload{}, &ChartError{Reason: fmt.Sprintf(
			"unknown chart type: %s. available types: %s, %s, %s, %s",
			chartType, ChartByDiagnoses, ChartByInpatientVisits, ChartByDiabetesMed, ChartCustom)}
	}
}

func ChartDescriptors() []models.ChartDescriptor {
	return []models.ChartDescriptor{
		{
			Type:        ChartByDiagnoses,
			Name:        "Readmissions by number of diagnoses",
			Description: "Readmission rate for each number of recorded diagnoses",
		},
		{
			Type:        ChartByInpatientVisits,
			Name:        "Readmissions by number of inpatient visits",
			Description: "Readmission rate across prior inpatient visit counts, up to 10 visits",
		},
		{
			Type:        ChartByDiabetesMed,
			Name:        "Readmissions by diabetes medication",
			Description: "Outcome distribution for patients with and without diabetes medication",
		},
		{
			Type:        ChartCustom,
			Name:        "Custom chart",
			Description: "Readmission rate against any dataset feature as a bar, line or pie series",
		},
	}
}

func diagnosesChart(records []models.PatientRecord) models.ChartPayload {
	return models.ChartPayload{
		ChartType: ChartByDiagnoses,
		Title:     "Readmissions by number of diagnoses",
		Data:      numericRateRows("number_diagnoses", numericRates(records, "number_diagnoses")),
	}
}

// inpatientVisitsChart drops groups above 10 visits; the long tail of rare
// high counts drowns out the readable part of the series.
func inpatientVisitsChart(records []models.PatientRecord) models.ChartPayload {
	var capped []numericRate
	for _, g := range numericRates(records, "number_inpatient") {
		if g.key > 10 {
			continue
		}
		capped = append(capped, g)
	}
	return models.ChartPayload{
		ChartType: ChartByInpatientVisits,
		Title:     "Readmissions by number of inpatient visits",
		Data:      numericRateRows("number_inpatient", capped),
	}
}

func diabetesMedChart(records []models.PatientRecord) models.ChartPayload {
	groups := outcomeCounts(records, "diabetesMed")
	rows := make([]map[string]interface{}, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, map[string]interface{}{
			"diabetesMed":      g.key,
			schema.LabelNo:     pct(g.no, g.rows),
			schema.LabelLess30: pct(g.less, g.rows),
			schema.LabelMore30: pct(g.more, g.rows),
		})
	}
	return models.ChartPayload{
		ChartType: ChartByDiabetesMed,
		Title:     "Readmissions by diabetes medication",
		Data:      rows,
	}
}

func customChart(records []models.PatientRecord, feature, style string) (models.ChartPayload, error) {
	if feature == "" {
		return models.ChartPayload{}, &ChartError{Reason: "the custom chart requires a 'feature' parameter"}
	}
	if feature == schema.Target {
		return models.ChartPayload{}, &ChartError{Reason: "cannot chart the target column"}
	}
	if !schema.IsFeature(feature) {
		return models.ChartPayload{}, &ChartError{Reason: fmt.Sprintf(
			"unknown feature %q. available features: %s",
			feature, strings.Join(schema.RequiredNames(), ", "))}
	}
	if style == "" {
		style = StyleBar
	}

	var rows []map[string]interface{}
	switch style {
	case StyleBar:
		rows = customBar(records, feature)
	case StyleLine:
		if !schema.IsNumeric(feature) {
			return models.ChartPayload{}, &ChartError{Reason: "line charts require a numeric feature"}
		}
		groups := numericRates(records, feature)
		if len(groups) > 50 {
			groups = groups[:50]
		}
		rows = numericRateRows(feature, groups)
	case StylePie:
		if schema.IsNumeric(feature) {
			return models.ChartPayload{}, &ChartError{Reason: "pie charts require a categorical feature"}
		}
		rows = customPie(records, feature)
	default:
		return models.ChartPayload{}, &ChartError{Reason: fmt.Sprintf(
			"unknown chart style: %s. available styles: %s, %s, %s", style, StyleBar, StyleLine, StylePie)}
	}

	return models.ChartPayload{
		ChartType: "custom_" + style,
		Title:     "Readmissions by " + displayName(feature),
		Style:     style,
		Data:      rows,
	}, nil
}

// customBar keeps the first 20 groups of a numeric feature (ascending), or
// the 15 highest-rate groups of a categorical one.
func customBar(records []models.PatientRecord, feature string) []map[string]interface{} {
	if schema.IsNumeric(feature) {
		groups := numericRates(records, feature)
		if len(groups) > 20 {
			groups = groups[:20]
		}
		return numericRateRows(feature, groups)
	}
	groups := categoricalRates(records, feature)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].rate > groups[j].rate })
	if len(groups) > 15 {
		groups = groups[:15]
	}
	rows := make([]map[string]interface{}, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, map[string]interface{}{
			feature:            g.key,
			"readmission_rate": g.rate,
		})
	}
	return rows
}

// customPie keeps the 10 groups with the most labeled rows and reports the
// raw outcome counts per group.
func customPie(records []models.PatientRecord, feature string) []map[string]interface{} {
	groups := outcomeCounts(records, feature)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].labeled() > groups[j].labeled() })
	if len(groups) > 10 {
		groups = groups[:10]
	}
	rows := make([]map[string]interface{}, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, map[string]interface{}{
			feature:            g.key,
			schema.LabelNo:     g.no,
			schema.LabelLess30: g.less,
			schema.LabelMore30: g.more,
		})
	}
	return rows
}

type numericRate struct {
	key  int
	rate float64
}

type categoricalRate struct {
	key  string
	rate float64
}

// numericRates groups records by an integer feature and computes the share
// of readmitted rows per group, in ascending key order.
func numericRates(records []models.PatientRecord, feature string) []numericRate {
	totals := make(map[int]int)
	readmits := make(map[int]int)
	for _, rec := range records {
		k := numericValue(rec, feature)
		totals[k]++
		if isReadmission(rec.Readmitted) {
			readmits[k]++
		}
	}
	keys := make([]int, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]numericRate, 0, len(keys))
	for _, k := range keys {
		out = append(out, numericRate{key: k, rate: pct(readmits[k], totals[k])})
	}
	return out
}

func categoricalRates(records []models.PatientRecord, feature string) []categoricalRate {
	totals := make(map[string]int)
	readmits := make(map[string]int)
	for _, rec := range records {
		k := categoricalValue(rec, feature)
		totals[k]++
		if isReadmission(rec.Readmitted) {
			readmits[k]++
		}
	}
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]categoricalRate, 0, len(keys))
	for _, k := range keys {
		out = append(out, categoricalRate{key: k, rate: pct(readmits[k], totals[k])})
	}
	return out
}

type outcomeCount struct {
	key  string
	rows int
	no   int
	less int
	more int
}

// labeled counts only rows carrying one of the three known outcome labels.
func (c outcomeCount) labeled() int {
	return c.no + c.less + c.more
}

func outcomeCounts(records []models.PatientRecord, feature string) []outcomeCount {
	byKey := make(map[string]*outcomeCount)
	for _, rec := range records {
		k := categoricalValue(rec, feature)
		c, ok := byKey[k]
		if !ok {
			c = &outcomeCount{key: k}
			byKey[k] = c
		}
		c.rows++
		switch rec.Readmitted {
		case schema.LabelNo:
			c.no++
		case schema.LabelLess30:
			c.less++
		case schema.LabelMore30:
			c.more++
		}
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]outcomeCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}

func numericRateRows(feature string, groups []numericRate) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, map[string]interface{}{
			feature:            g.key,
			"readmission_rate": g.rate,
		})
	}
	return rows
}

func numericValue(rec models.PatientRecord, feature string) int {
	switch feature {
	case "number_inpatient":
		return rec.NumberInpatient
	case "number_diagnoses":
		return rec.NumberDiagnoses
	case "number_emergency":
		return rec.NumberEmergency
	case "number_outpatient":
		return rec.NumberOutpatient
	case "time_in_hospital":
		return rec.TimeInHospital
	default:
		return 0
	}
}

func categoricalValue(rec models.PatientRecord, feature string) string {
	switch feature {
	case "diag_1":
		return rec.Diag1
	case "diag_2":
		return rec.Diag2
	case "diag_3":
		return rec.Diag3
	case "medical_specialty":
		return rec.MedicalSpecialty
	case "diabetesMed":
		return rec.DiabetesMed
	default:
		return ""
	}
}

func isReadmission(label string) bool {
	return label == schema.LabelLess30 || label == schema.LabelMore30
}

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

var featureTitles = map[string]string{
	"number_inpatient":  "number of inpatient visits",
	"number_diagnoses":  "number of diagnoses",
	"number_emergency":  "number of emergency visits",
	"number_outpatient": "number of outpatient visits",
	"time_in_hospital":  "time in hospital (days)",
	"diag_1":            "primary diagnosis",
	"diag_2":            "secondary diagnosis",
	"diag_3":            "additional diagnosis",
	"medical_specialty": "medical specialty",
	"diabetesMed":       "diabetes medication",
}

func displayName(feature string) string {
	if title, ok := featureTitles[feature]; ok {
		return title
	}
	return feature
}
