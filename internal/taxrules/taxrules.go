// Package taxrules carries the statutory constants behind the Vietnamese
// gross-to-net calculation: regional minimum wages, employee insurance
// rates and caps, personal/dependent allowances and the progressive PIT
// brackets. A RuleSet is immutable after construction; a regulation change
// is a new rule file, not a mutation.
package taxrules

import (
	"fmt"
	"math"
	"sort"
)

// Bracket is one slice of the progressive PIT table. UpperLimit is
// math.Inf(1) on the last bracket. CumulativeDeduction is the precomputed
// constant for the closed-form tax formula and must stay consistent with
// the rates and limits below it (Validate checks this).
type Bracket struct {
	UpperLimit          float64
	Rate                float64
	CumulativeDeduction float64
}

type RuleSet struct {
	Version string

	PersonalAllowance  float64
	DependentAllowance float64

	SocialInsuranceRate       float64
	HealthInsuranceRate       float64
	UnemploymentInsuranceRate float64

	// BHXH/BHYT contributions are capped at BaseSalaryForCaps x
	// InsuranceCapMultiplier regardless of region; the BHTN cap is the
	// regional minimum wage x InsuranceCapMultiplier.
	BaseSalaryForCaps      float64
	InsuranceCapMultiplier float64

	RegionalMinimumWages map[int]float64

	Brackets []Bracket
}

// Default returns the rule set effective April 2025 (Decree 74/2024/ND-CP
// minimum wages, Resolution 954/2020/UBTVQH14 allowances).
func Default() *RuleSet {
	return &RuleSet{
		Version: "2025-04",

		PersonalAllowance:  11_000_000,
		DependentAllowance: 4_400_000,

		SocialInsuranceRate:       0.08,
		HealthInsuranceRate:       0.015,
		UnemploymentInsuranceRate: 0.01,

		BaseSalaryForCaps:      2_340_000,
		InsuranceCapMultiplier: 20,

		RegionalMinimumWages: map[int]float64{
			1: 4_960_000,
			2: 4_410_000,
			3: 3_860_000,
			4: 3_450_000,
		},

		Brackets: []Bracket{
			{UpperLimit: 5_000_000, Rate: 0.05, CumulativeDeduction: 0},
			{UpperLimit: 10_000_000, Rate: 0.10, CumulativeDeduction: 250_000},
			{UpperLimit: 18_000_000, Rate: 0.15, CumulativeDeduction: 750_000},
			{UpperLimit: 32_000_000, Rate: 0.20, CumulativeDeduction: 1_650_000},
			{UpperLimit: 52_000_000, Rate: 0.25, CumulativeDeduction: 3_250_000},
			{UpperLimit: 80_000_000, Rate: 0.30, CumulativeDeduction: 5_850_000},
			{UpperLimit: math.Inf(1), Rate: 0.35, CumulativeDeduction: 9_850_000},
		},
	}
}

// MinimumWage looks up the statutory minimum wage for a region tier.
func (r *RuleSet) MinimumWage(region int) (float64, bool) {
	wage, ok := r.RegionalMinimumWages[region]
	return wage, ok
}

// Regions returns the defined region tiers in ascending order.
func (r *RuleSet) Regions() []int {
	regions := make([]int, 0, len(r.RegionalMinimumWages))
	for region := range r.RegionalMinimumWages {
		regions = append(regions, region)
	}
	sort.Ints(regions)
	return regions
}

// TaxOn computes progressive PIT on taxable income by walking the
// brackets in ascending order, taxing each slice at its marginal rate.
func (r *RuleSet) TaxOn(taxable float64) float64 {
	if taxable <= 0 {
		return 0
	}

	var pit float64
	var previousLimit float64
	for _, bracket := range r.Brackets {
		if taxable <= previousLimit {
			break
		}
		taxableAtRate := math.Min(taxable, bracket.UpperLimit) - previousLimit
		pit += taxableAtRate * bracket.Rate
		previousLimit = bracket.UpperLimit
	}

	return pit
}

// TaxOnClosedForm computes the same PIT using the bracket's precomputed
// cumulative deduction: tax = taxable x rate - deduction. Equivalent to
// TaxOn only when the deduction constants are consistent, which Validate
// enforces.
func (r *RuleSet) TaxOnClosedForm(taxable float64) float64 {
	if taxable <= 0 {
		return 0
	}

	for _, bracket := range r.Brackets {
		if taxable <= bracket.UpperLimit {
			return taxable*bracket.Rate - bracket.CumulativeDeduction
		}
	}

	// Unreachable when the last bracket is unbounded.
	last := r.Brackets[len(r.Brackets)-1]
	return taxable*last.Rate - last.CumulativeDeduction
}

// Validate checks the structural invariants of a rule set: four positive
// minimum wages, rates in (0, 1), strictly increasing bracket limits with
// an unbounded last bracket, and deduction constants derived exactly from
// the rates and limits (deduction_k = sum over i<k of (rate_k - rate_i) x
// width_i, equivalently the running sum of (rate_k - rate_{k-1}) x
// limit_{k-1}).
func (r *RuleSet) Validate() error {
	if r.Version == "" {
		return fmt.Errorf("rule set version is required")
	}
	if r.PersonalAllowance <= 0 || r.DependentAllowance <= 0 {
		return fmt.Errorf("allowances must be positive")
	}
	if r.BaseSalaryForCaps <= 0 || r.InsuranceCapMultiplier <= 0 {
		return fmt.Errorf("insurance cap parameters must be positive")
	}

	for _, rate := range []float64{
		r.SocialInsuranceRate,
		r.HealthInsuranceRate,
		r.UnemploymentInsuranceRate,
	} {
		if rate <= 0 || rate >= 1 {
			return fmt.Errorf("insurance rate %v out of range", rate)
		}
	}

	if len(r.RegionalMinimumWages) == 0 {
		return fmt.Errorf("regional minimum wages are required")
	}
	for region, wage := range r.RegionalMinimumWages {
		if wage <= 0 {
			return fmt.Errorf("minimum wage for region %d must be positive", region)
		}
	}

	if len(r.Brackets) == 0 {
		return fmt.Errorf("at least one PIT bracket is required")
	}

	var previousLimit float64
	var previousRate float64
	var expectedDeduction float64
	for i, bracket := range r.Brackets {
		if bracket.Rate <= 0 || bracket.Rate >= 1 {
			return fmt.Errorf("bracket %d: rate %v out of range", i, bracket.Rate)
		}
		if bracket.Rate <= previousRate {
			return fmt.Errorf("bracket %d: rates must be strictly increasing", i)
		}
		if bracket.UpperLimit <= previousLimit {
			return fmt.Errorf("bracket %d: limits must be strictly increasing", i)
		}
		if i < len(r.Brackets)-1 && math.IsInf(bracket.UpperLimit, 1) {
			return fmt.Errorf("bracket %d: only the last bracket may be unbounded", i)
		}

		if i > 0 {
			expectedDeduction += (bracket.Rate - previousRate) * previousLimit
		}
		if math.Abs(bracket.CumulativeDeduction-expectedDeduction) > 0.5 {
			return fmt.Errorf(
				"bracket %d: cumulative deduction %v inconsistent, expected %v",
				i, bracket.CumulativeDeduction, expectedDeduction,
			)
		}

		previousLimit = bracket.UpperLimit
		previousRate = bracket.Rate
	}

	last := r.Brackets[len(r.Brackets)-1]
	if !math.IsInf(last.UpperLimit, 1) {
		return fmt.Errorf("last bracket must be unbounded")
	}

	return nil
}
