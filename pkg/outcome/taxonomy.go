// Package outcome maps raw model labels onto the fixed readmission risk
// taxonomy shared by the serving surface and the dashboard.
package outcome

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type RiskTier string

const (
	RiskLow          RiskTier = "low"
	RiskMedium       RiskTier = "medium"
	RiskHigh         RiskTier = "high"
	RiskUndetermined RiskTier = "undetermined"
)

type Category struct {
	Name     string   `yaml:"category" json:"category"`
	RiskTier RiskTier `yaml:"risk_tier" json:"risk_tier"`
	Labels   []string `yaml:"labels" json:"labels"`
}

type Taxonomy struct {
	Categories []Category `yaml:"categories" json:"categories"`

	lookup map[string]Category
}

// Load reads a taxonomy from YAML, or returns the built-in default when
// path is empty.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var tax Taxonomy
	if err := yaml.Unmarshal(content, &tax); err != nil {
		return nil, fmt.Errorf("decode outcome taxonomy: %w", err)
	}
	if len(tax.Categories) == 0 {
		return nil, fmt.Errorf("outcome taxonomy has no categories")
	}

	tax.buildLookup()
	return &tax, nil
}

// Default is the taxonomy the service ships with. The tier ordering is
// intentional: readmission within 30 days is the acute outcome and ranks
// above readmission after 30 days.
func Default() *Taxonomy {
	tax := &Taxonomy{Categories: []Category{
		{
			Name:     "no readmission",
			RiskTier: RiskLow,
			Labels:   []string{"NO", "N", "0", "FALSE"},
		},
		{
			Name:     "readmission within 30 days",
			RiskTier: RiskHigh,
			Labels:   []string{"<30", "LESS30", "LESS_THAN_30"},
		},
		{
			Name:     "readmission after 30 days",
			RiskTier: RiskMedium,
			Labels:   []string{">30", "MORE30", "GREATER30", "MORE_THAN_30"},
		},
	}}
	tax.buildLookup()
	return tax
}

func (t *Taxonomy) buildLookup() {
	t.lookup = make(map[string]Category)
	for _, cat := range t.Categories {
		for _, label := range cat.Labels {
			t.lookup[normalizeKey(label)] = cat
		}
	}
}
