package inference

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const testArtifactJSON = `{
  "model": {
    "type": "classification",
    "algorithm": "multinomial_logistic",
    "version": "test",
    "classes": ["NO", "<30", ">30"],
    "weights": {
      "bias": [1.0, -1.0, -0.5],
      "numeric": {"number_inpatient": [-2.0, 2.0, 1.0]},
      "categorical": {"diabetesMed": {"Yes": [-0.5, 0.5, 0.2]}}
    }
  }
}`

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func loadTestArtifact(t *testing.T) *Artifact {
	t.Helper()
	artifact, err := LoadArtifact(writeArtifact(t, testArtifactJSON))
	if err != nil {
		t.Fatalf("load artifact: %v", err)
	}
	return artifact
}

func TestLoadArtifact(t *testing.T) {
	artifact := loadTestArtifact(t)

	if len(artifact.Model.Classes) != 3 {
		t.Fatalf("expected 3 classes, got %d", len(artifact.Model.Classes))
	}
	if artifact.Model.Algorithm != "multinomial_logistic" {
		t.Fatalf("unexpected algorithm %q", artifact.Model.Algorithm)
	}
}

func TestLoadArtifactRejectsMalformed(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"not json", "{"},
		{"no classes", `{"model": {"classes": [], "weights": {"bias": []}}}`},
		{"bias mismatch", `{"model": {"classes": ["A", "B"], "weights": {"bias": [0.1]}}}`},
		{"numeric mismatch", `{"model": {"classes": ["A", "B"], "weights": {"bias": [0.1, 0.2], "numeric": {"x": [0.3]}}}}`},
		{"categorical mismatch", `{"model": {"classes": ["A", "B"], "weights": {"bias": [0.1, 0.2], "categorical": {"x": {"v": [0.3]}}}}}`},
	}

	for _, tc := range cases {
		if _, err := LoadArtifact(writeArtifact(t, tc.content)); err == nil {
			t.Fatalf("%s: expected load error", tc.name)
		}
	}
}

func TestLoadArtifactMissingFile(t *testing.T) {
	if _, err := LoadArtifact(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestPredictProbaIsDistribution(t *testing.T) {
	artifact := loadTestArtifact(t)

	inputs := []map[string]interface{}{
		{"number_inpatient": 0.0, "diabetesMed": "Yes"},
		{"number_inpatient": 3.0, "diabetesMed": "No"},
		{"number_inpatient": math.NaN(), "diabetesMed": "Yes"},
		{},
	}

	for _, features := range inputs {
		probs, err := artifact.PredictProba(features)
		if err != nil {
			t.Fatalf("proba: %v", err)
		}
		if len(probs) != 3 {
			t.Fatalf("expected 3 probabilities, got %d", len(probs))
		}
		var sum float64
		for _, p := range probs {
			if p < 0 || p > 1 {
				t.Fatalf("probability out of range: %v", probs)
			}
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("probabilities sum to %v", sum)
		}
	}
}

func TestPredictReturnsArgmaxAsList(t *testing.T) {
	artifact := loadTestArtifact(t)

	raw, err := artifact.Predict(map[string]interface{}{"number_inpatient": 0.0})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	labels, ok := raw.([]string)
	if !ok || len(labels) != 1 {
		t.Fatalf("expected single-element label list, got %#v", raw)
	}
	if labels[0] != "NO" {
		t.Fatalf("expected NO at zero utilization, got %q", labels[0])
	}

	raw, err = artifact.Predict(map[string]interface{}{"number_inpatient": 3.0})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if raw.([]string)[0] != "<30" {
		t.Fatalf("expected <30 at high utilization, got %v", raw)
	}
}

func TestPredictProbaSkipsNaNAndUnseenValues(t *testing.T) {
	artifact := loadTestArtifact(t)

	baseline, err := artifact.PredictProba(map[string]interface{}{})
	if err != nil {
		t.Fatalf("proba: %v", err)
	}
	withGaps, err := artifact.PredictProba(map[string]interface{}{
		"number_inpatient": math.NaN(),
		"diabetesMed":      "Maybe",
	})
	if err != nil {
		t.Fatalf("proba: %v", err)
	}

	for i := range baseline {
		if math.Abs(baseline[i]-withGaps[i]) > 1e-12 {
			t.Fatalf("NaN and unseen values must contribute nothing: %v vs %v", baseline, withGaps)
		}
	}
}

func TestSoftmaxHandlesLargeScores(t *testing.T) {
	probs := softmax([]float64{1000, 999, -1000})
	var sum float64
	for _, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("softmax not stable: %v", probs)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("softmax sums to %v", sum)
	}
	if probs[0] <= probs[1] || probs[1] <= probs[2] {
		t.Fatalf("softmax order broken: %v", probs)
	}
}
