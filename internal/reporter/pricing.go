package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PricingEntry holds subscription pricing defaults for one designation.
// Amounts are integers in paise.
type PricingEntry struct {
	SubscriptionEnabled bool  `json:"subscriptionEnabled"`
	MonthlyAmount       int64 `json:"monthlyAmount"`
	IDCardCharge        int64 `json:"idCardCharge"`
}

// PricingConfig is the tenant-level reporter pricing configuration.
type PricingConfig struct {
	Default      *PricingEntry           `json:"default,omitempty"`
	Designations map[string]PricingEntry `json:"designations,omitempty"`
}

// ParsePricing decodes the reporter_pricing tenant setting. Empty input
// yields nil.
func ParsePricing(raw []byte) (*PricingConfig, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var cfg PricingConfig
	if errUnmarshal := json.Unmarshal(raw, &cfg); errUnmarshal != nil {
		return nil, fmt.Errorf("reporter: parse pricing config: %w", errUnmarshal)
	}
	return &cfg, nil
}

// PricingFor returns the pricing entry for a designation, falling back to
// the tenant default, then to zeroes with subscriptions disabled.
func PricingFor(cfg *PricingConfig, designationID string) PricingEntry {
	if cfg == nil {
		return PricingEntry{}
	}
	if entry, ok := cfg.Designations[designationID]; ok {
		return entry
	}
	if cfg.Default != nil {
		return *cfg.Default
	}
	return PricingEntry{}
}
