package taxrules

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// ruleFile is the on-disk JSON shape. A missing upper_limit marks the
// unbounded last bracket, since JSON cannot carry infinity.
type ruleFile struct {
	Version string `json:"version"`

	PersonalAllowance  float64 `json:"personal_allowance"`
	DependentAllowance float64 `json:"dependent_allowance"`

	SocialInsuranceRate       float64 `json:"social_insurance_rate"`
	HealthInsuranceRate       float64 `json:"health_insurance_rate"`
	UnemploymentInsuranceRate float64 `json:"unemployment_insurance_rate"`

	BaseSalaryForCaps      float64 `json:"base_salary_for_caps"`
	InsuranceCapMultiplier float64 `json:"insurance_cap_multiplier"`

	RegionalMinimumWages map[string]float64 `json:"regional_minimum_wages"`

	Brackets []ruleFileBracket `json:"pit_brackets"`
}

type ruleFileBracket struct {
	UpperLimit          *float64 `json:"upper_limit"`
	Rate                float64  `json:"rate"`
	CumulativeDeduction float64  `json:"cumulative_deduction"`
}

// Load reads a rule set from a JSON file and validates it. Used when
// TAX_RULES_FILE points at a newer regulation set than the built-in one.
func Load(path string) (*RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}

	var file ruleFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}

	rules := &RuleSet{
		Version:                   file.Version,
		PersonalAllowance:         file.PersonalAllowance,
		DependentAllowance:        file.DependentAllowance,
		SocialInsuranceRate:       file.SocialInsuranceRate,
		HealthInsuranceRate:       file.HealthInsuranceRate,
		UnemploymentInsuranceRate: file.UnemploymentInsuranceRate,
		BaseSalaryForCaps:         file.BaseSalaryForCaps,
		InsuranceCapMultiplier:    file.InsuranceCapMultiplier,
		RegionalMinimumWages:      make(map[int]float64, len(file.RegionalMinimumWages)),
		Brackets:                  make([]Bracket, 0, len(file.Brackets)),
	}

	for key, wage := range file.RegionalMinimumWages {
		var region int
		if _, err := fmt.Sscanf(key, "%d", &region); err != nil {
			return nil, fmt.Errorf("invalid region key %q in rule file", key)
		}
		rules.RegionalMinimumWages[region] = wage
	}

	for _, b := range file.Brackets {
		limit := math.Inf(1)
		if b.UpperLimit != nil {
			limit = *b.UpperLimit
		}
		rules.Brackets = append(rules.Brackets, Bracket{
			UpperLimit:          limit,
			Rate:                b.Rate,
			CumulativeDeduction: b.CumulativeDeduction,
		})
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("rule file %s: %w", path, err)
	}

	return rules, nil
}
