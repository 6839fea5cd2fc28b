package inference

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Model scores one coerced feature map. Predict returns the raw label in
// whatever shape the artifact emits, typically a single-element list;
// PredictProba returns the per-class probability vector.
type Model interface {
	Predict(features map[string]interface{}) (interface{}, error)
	PredictProba(features map[string]interface{}) ([]float64, error)
}

// Artifact is a multinomial linear classifier serialized as JSON by the
// training pipeline. Numeric features carry one coefficient per class,
// categorical features one coefficient vector per observed value.
type Artifact struct {
	Model struct {
		Type      string   `json:"type"`
		Algorithm string   `json:"algorithm"`
		Version   string   `json:"version"`
		Classes   []string `json:"classes"`
		Weights   struct {
			Bias        []float64                       `json:"bias"`
			Numeric     map[string][]float64            `json:"numeric"`
			Categorical map[string]map[string][]float64 `json:"categorical"`
		} `json:"weights"`
	} `json:"model"`
}

func LoadArtifact(path string) (*Artifact, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var artifact Artifact
	if err := json.Unmarshal(content, &artifact); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if err := artifact.validate(); err != nil {
		return nil, err
	}
	return &artifact, nil
}

func (a *Artifact) validate() error {
	k := len(a.Model.Classes)
	if k == 0 {
		return fmt.Errorf("artifact declares no classes")
	}
	if len(a.Model.Weights.Bias) != k {
		return fmt.Errorf("artifact bias has %d entries for %d classes", len(a.Model.Weights.Bias), k)
	}
	for name, coeffs := range a.Model.Weights.Numeric {
		if len(coeffs) != k {
			return fmt.Errorf("numeric weights for %s have %d entries for %d classes", name, len(coeffs), k)
		}
	}
	for name, values := range a.Model.Weights.Categorical {
		for value, coeffs := range values {
			if len(coeffs) != k {
				return fmt.Errorf("categorical weights for %s=%s have %d entries for %d classes", name, value, len(coeffs), k)
			}
		}
	}
	return nil
}

// Predict returns the highest-probability class, shaped as the
// single-element list the training pipeline's native scorer produces.
func (a *Artifact) Predict(features map[string]interface{}) (interface{}, error) {
	probs, err := a.PredictProba(features)
	if err != nil {
		return nil, err
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return []string{a.Model.Classes[best]}, nil
}

// PredictProba computes softmax over the per-class linear scores. NaN
// numerics and unseen categorical values contribute nothing, so one
// unusable field degrades the score instead of failing the request.
func (a *Artifact) PredictProba(features map[string]interface{}) ([]float64, error) {
	scores := make([]float64, len(a.Model.Classes))
	copy(scores, a.Model.Weights.Bias)

	for name, coeffs := range a.Model.Weights.Numeric {
		v, ok := features[name].(float64)
		if !ok || math.IsNaN(v) {
			continue
		}
		for i := range scores {
			scores[i] += coeffs[i] * v
		}
	}

	for name, values := range a.Model.Weights.Categorical {
		s, ok := features[name].(string)
		if !ok {
			continue
		}
		coeffs, ok := values[s]
		if !ok {
			continue
		}
		for i := range scores {
			scores[i] += coeffs[i]
		}
	}

	return softmax(scores), nil
}

func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}

	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
