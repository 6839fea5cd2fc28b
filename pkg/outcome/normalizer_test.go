package outcome

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeKnownLabels(t *testing.T) {
	tax := Default()

	cases := []struct {
		label    string
		category string
		tier     RiskTier
	}{
		{"NO", "no readmission", RiskLow},
		{"N", "no readmission", RiskLow},
		{"0", "no readmission", RiskLow},
		{"FALSE", "no readmission", RiskLow},
		{"<30", "readmission within 30 days", RiskHigh},
		{"LESS30", "readmission within 30 days", RiskHigh},
		{"LESS_THAN_30", "readmission within 30 days", RiskHigh},
		{">30", "readmission after 30 days", RiskMedium},
		{"MORE30", "readmission after 30 days", RiskMedium},
		{"GREATER30", "readmission after 30 days", RiskMedium},
		{"MORE_THAN_30", "readmission after 30 days", RiskMedium},
	}

	for _, tc := range cases {
		got := tax.Normalize(tc.label)
		if got.Category != tc.category || got.RiskTier != tc.tier {
			t.Fatalf("Normalize(%q) = %+v, expected %s/%s", tc.label, got, tc.category, tc.tier)
		}
	}
}

func TestNormalizeIsCaseInsensitive(t *testing.T) {
	tax := Default()

	for _, label := range []string{"no", "No", "nO", "  NO  ", "false", "less30", "more_than_30"} {
		got := tax.Normalize(label)
		if got.RiskTier == RiskUndetermined {
			t.Fatalf("Normalize(%q) unexpectedly undetermined", label)
		}
	}
}

func TestNormalizeUnknownLabel(t *testing.T) {
	tax := Default()

	got := tax.Normalize("maybe")
	if got.RiskTier != RiskUndetermined {
		t.Fatalf("expected undetermined tier, got %s", got.RiskTier)
	}
	if got.Category != "unrecognized format: maybe" {
		t.Fatalf("unexpected category %q", got.Category)
	}

	// The raw label keeps its original casing in the category text.
	if got := tax.Normalize("Maybe"); got.Category != "unrecognized format: Maybe" {
		t.Fatalf("unexpected category %q", got.Category)
	}
}

func TestNormalizeEmptyLabel(t *testing.T) {
	got := Default().Normalize("")
	if got.RiskTier != RiskUndetermined {
		t.Fatalf("expected undetermined tier for empty label, got %s", got.RiskTier)
	}
}

func TestLoadDefaultsOnEmptyPath(t *testing.T) {
	tax, err := Load("")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if got := tax.Normalize("<30"); got.RiskTier != RiskHigh {
		t.Fatalf("default taxonomy incomplete: %+v", got)
	}
}

func TestLoadFromYAML(t *testing.T) {
	content := `categories:
  - category: stable
    risk_tier: low
    labels: ["OK", "GOOD"]
  - category: critical
    risk_tier: high
    labels: ["BAD"]
`
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write taxonomy: %v", err)
	}

	tax, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := tax.Normalize("good"); got.Category != "stable" || got.RiskTier != RiskLow {
		t.Fatalf("unexpected result %+v", got)
	}
	if got := tax.Normalize("BAD"); got.RiskTier != RiskHigh {
		t.Fatalf("unexpected result %+v", got)
	}
	// Labels from the replaced default taxonomy no longer resolve.
	if got := tax.Normalize("NO"); got.RiskTier != RiskUndetermined {
		t.Fatalf("expected undetermined for label outside loaded taxonomy, got %+v", got)
	}
}

func TestLoadRejectsEmptyTaxonomy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("categories: []\n"), 0o644); err != nil {
		t.Fatalf("write taxonomy: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty taxonomy")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
