package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/diacare-ai/readmission/pkg/common/logger"
	"github.com/diacare-ai/readmission/pkg/schema"
)

var ErrModelUnavailable = errors.New("predictive model unavailable")

// Prediction carries the model's raw label and the winning class
// probability.
type Prediction struct {
	RawLabel    string
	Probability float64
}

type Engine struct {
	model   Model
	loadErr error
}

// NewEngine loads the model artifact once at startup. A failed load leaves
// the engine permanently degraded: every Predict call reports
// ErrModelUnavailable until the process restarts with a good artifact. The
// rest of the service keeps running either way.
func NewEngine(artifactPath string) *Engine {
	artifact, err := LoadArtifact(artifactPath)
	if err != nil {
		logger.WithComponent("inference").WithError(err).WithField("path", artifactPath).
			Warn("Model artifact unavailable, predictions disabled")
		return &Engine{loadErr: fmt.Errorf("%w: %v", ErrModelUnavailable, err)}
	}

	logger.WithComponent("inference").WithFields(map[string]interface{}{
		"path":    artifactPath,
		"classes": artifact.Model.Classes,
	}).Info("Model artifact loaded")
	return &Engine{model: artifact}
}

// NewEngineWithModel wires an already built model, bypassing artifact
// loading.
func NewEngineWithModel(m Model) *Engine {
	return &Engine{model: m}
}

func (e *Engine) Ready() bool {
	return e.loadErr == nil
}

func (e *Engine) Predict(features map[string]interface{}) (Prediction, error) {
	if e.loadErr != nil {
		return Prediction{}, e.loadErr
	}
	if err := schema.ValidatePresence(features); err != nil {
		return Prediction{}, err
	}

	coerced := coerceFeatures(features)

	raw, err := e.model.Predict(coerced)
	if err != nil {
		return Prediction{}, fmt.Errorf("model predict: %w", err)
	}
	probs, err := e.model.PredictProba(coerced)
	if err != nil {
		return Prediction{}, fmt.Errorf("model probabilities: %w", err)
	}

	return Prediction{
		RawLabel:    rawLabelString(raw),
		Probability: maxProbability(probs),
	}, nil
}

// coerceFeatures projects the request onto the schema: numerics become
// float64 with NaN standing in for unparseable values, categoricals become
// strings. Keys outside the schema are dropped.
func coerceFeatures(features map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(schema.Required()))
	for _, f := range schema.Required() {
		value := features[f.Name]
		if f.Kind == schema.KindNumeric {
			v, err := toFloat(value)
			if err != nil {
				v = math.NaN()
			}
			out[f.Name] = v
		} else {
			out[f.Name] = toString(value)
		}
	}
	return out
}

func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", value)
	}
}

func toString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// rawLabelString flattens whatever label shape a model emits into a plain
// string: single-element lists are unwrapped and stray brackets or quotes
// from stringified sequences are stripped. Downstream normalization only
// ever sees the bare label.
func rawLabelString(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return trimLabel(v)
	case []string:
		if len(v) > 0 {
			return trimLabel(v[0])
		}
		return ""
	case []interface{}:
		if len(v) > 0 {
			return rawLabelString(v[0])
		}
		return ""
	case fmt.Stringer:
		return trimLabel(v.String())
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return trimLabel(fmt.Sprintf("%v", v))
	}
}

func trimLabel(s string) string {
	return strings.Trim(s, "[]'\" \t\n")
}

func maxProbability(probs []float64) float64 {
	var max float64
	for _, p := range probs {
		if p > max {
			max = p
		}
	}
	return max
}
