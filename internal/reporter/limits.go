package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// fallbackMax applies when the tenant has no limits configuration at all, or
// configuration without a default. Quotas are always enforced.
const fallbackMax = 1

// LimitRule is one quota rule from tenant configuration. Level and the
// location fields are optional filters; Max is the cap for matching buckets.
type LimitRule struct {
	DesignationID          string `json:"designationId"`
	Level                  string `json:"level,omitempty"`
	StateID                string `json:"stateId,omitempty"`
	DistrictID             string `json:"districtId,omitempty"`
	MandalID               string `json:"mandalId,omitempty"`
	AssemblyConstituencyID string `json:"assemblyConstituencyId,omitempty"`
	Max                    int    `json:"max"`
}

// hasLocation reports whether any location filter is set on the rule.
func (r *LimitRule) hasLocation() bool {
	return r.StateID != "" || r.DistrictID != "" || r.MandalID != "" || r.AssemblyConstituencyID != ""
}

// locationFor returns the rule's filter value for a reporter location column.
func (r *LimitRule) locationFor(locationField string) string {
	switch locationField {
	case "state_id":
		return r.StateID
	case "district_id":
		return r.DistrictID
	case "mandal_id":
		return r.MandalID
	case "assembly_constituency_id":
		return r.AssemblyConstituencyID
	default:
		return ""
	}
}

// LimitsConfig is the tenant-level reporter quota configuration.
type LimitsConfig struct {
	DefaultMax *int        `json:"defaultMax,omitempty"`
	Rules      []LimitRule `json:"rules,omitempty"`
}

// ParseLimits decodes the reporter_limits tenant setting. Empty input means
// no configuration and yields nil.
func ParseLimits(raw []byte) (*LimitsConfig, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var cfg LimitsConfig
	if errUnmarshal := json.Unmarshal(raw, &cfg); errUnmarshal != nil {
		return nil, fmt.Errorf("reporter: parse limits config: %w", errUnmarshal)
	}
	return &cfg, nil
}

// ResolveMax computes the maximum active reporters allowed for one quota
// bucket. Rules are evaluated by precedence: exact designation+level+location
// match, then designation+level with no location, then designation with no
// level, then the configured default. A missing configuration resolves to 1.
func ResolveMax(cfg *LimitsConfig, designationID, level, locationField, locationID string) int {
	if cfg == nil {
		return fallbackMax
	}

	for i := range cfg.Rules {
		rule := &cfg.Rules[i]
		if rule.DesignationID == designationID && rule.Level == level && rule.locationFor(locationField) == locationID && rule.hasLocation() {
			return rule.Max
		}
	}
	for i := range cfg.Rules {
		rule := &cfg.Rules[i]
		if rule.DesignationID == designationID && rule.Level == level && !rule.hasLocation() {
			return rule.Max
		}
	}
	for i := range cfg.Rules {
		rule := &cfg.Rules[i]
		if rule.DesignationID == designationID && rule.Level == "" {
			return rule.Max
		}
	}

	if cfg.DefaultMax != nil {
		return *cfg.DefaultMax
	}
	return fallbackMax
}
