package outcome

import (
	"fmt"
	"strings"
)

// Result is a normalized prediction outcome.
type Result struct {
	Category string   `json:"category"`
	RiskTier RiskTier `json:"risk_tier"`
}

// Normalize maps a raw model label onto its category, case-insensitively.
// Labels outside the taxonomy degrade to the undetermined tier instead of
// failing; the raw label is preserved in the category text for debugging.
func (t *Taxonomy) Normalize(rawLabel string) Result {
	if cat, ok := t.lookup[normalizeKey(rawLabel)]; ok {
		return Result{Category: cat.Name, RiskTier: cat.RiskTier}
	}
	return Result{
		Category: fmt.Sprintf("unrecognized format: %s", rawLabel),
		RiskTier: RiskUndetermined,
	}
}

func normalizeKey(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
