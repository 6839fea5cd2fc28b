// Package schema is the single definition of the model's feature contract:
// which columns a patient record must carry, which of them are numeric, and
// what the readmission target looks like. Ingestion, inference and analytics
// all consult it instead of keeping their own column lists.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

type Feature struct {
	Name string
	Kind Kind
}

// Target is the outcome column. Its raw values are the three labels below.
const Target = "readmitted"

const (
	LabelNo     = "NO"
	LabelLess30 = "<30"
	LabelMore30 = ">30"
)

var required = []Feature{
	{Name: "number_inpatient", Kind: KindNumeric},
	{Name: "number_diagnoses", Kind: KindNumeric},
	{Name: "number_emergency", Kind: KindNumeric},
	{Name: "number_outpatient", Kind: KindNumeric},
	{Name: "time_in_hospital", Kind: KindNumeric},
	{Name: "diag_1", Kind: KindCategorical},
	{Name: "diag_2", Kind: KindCategorical},
	{Name: "diag_3", Kind: KindCategorical},
	{Name: "medical_specialty", Kind: KindCategorical},
	{Name: "diabetesMed", Kind: KindCategorical},
}

// Required returns the ten model features in their canonical order.
func Required() []Feature {
	out := make([]Feature, len(required))
	copy(out, required)
	return out
}

func RequiredNames() []string {
	names := make([]string, len(required))
	for i, f := range required {
		names[i] = f.Name
	}
	return names
}

func NumericNames() []string {
	var names []string
	for _, f := range required {
		if f.Kind == KindNumeric {
			names = append(names, f.Name)
		}
	}
	return names
}

func CategoricalNames() []string {
	var names []string
	for _, f := range required {
		if f.Kind == KindCategorical {
			names = append(names, f.Name)
		}
	}
	return names
}

func IsNumeric(name string) bool {
	for _, f := range required {
		if f.Name == name {
			return f.Kind == KindNumeric
		}
	}
	return false
}

func IsFeature(name string) bool {
	for _, f := range required {
		if f.Name == name {
			return true
		}
	}
	return false
}

type MissingFeaturesError struct {
	Names []string
}

func (e *MissingFeaturesError) Error() string {
	return fmt.Sprintf("missing required features: %s", strings.Join(e.Names, ", "))
}

func IsMissingFeatures(err error) bool {
	var mfe *MissingFeaturesError
	return errors.As(err, &mfe)
}

// ValidatePresence checks that every required feature key is present in the
// map. Extra keys are allowed; values are not inspected here.
func ValidatePresence(features map[string]interface{}) error {
	var missing []string
	for _, f := range required {
		if _, ok := features[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return &MissingFeaturesError{Names: missing}
	}
	return nil
}
