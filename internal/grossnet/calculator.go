package grossnet

import (
	"math"

	grossneterrors "vn-payroll/internal/grossnet/errors"
	"vn-payroll/internal/shared/money"
	"vn-payroll/internal/taxrules"
)

// Calculator converts gross monthly income to net take-home pay under a
// fixed statutory rule set. It is pure: no I/O, no shared mutable state,
// safe for any number of concurrent callers.
type Calculator struct {
	rules *taxrules.RuleSet
}

func NewCalculator(rules *taxrules.RuleSet) *Calculator {
	if rules == nil {
		rules = taxrules.Default()
	}
	return &Calculator{rules: rules}
}

func (c *Calculator) Rules() *taxrules.RuleSet {
	return c.rules
}

// Calculate applies the statutory gross-to-net algorithm. The order of
// operations is fixed for reproducibility:
//
//  1. insurance base = max(gross, regional minimum wage)
//  2. clamp the base against the BHXH/BHYT cap (base salary x 20) and the
//     BHTN cap (regional minimum wage x 20), flooring at the minimum wage
//  3. contributions = base x rate, each rounded to whole VND on output,
//     while downstream income math keeps the unrounded sum
//  4. taxable = max(0, gross - unrounded insurance - allowances)
//  5. PIT = progressive bracket walk, rounded, floored at zero
//  6. net = gross - unrounded insurance - rounded PIT
//
// Rounding is half-away-from-zero to the nearest dong throughout.
func (c *Calculator) Calculate(input CalculationInput) (CalculationResult, error) {
	minWage, ok := c.rules.MinimumWage(input.Region)
	if !ok {
		return CalculationResult{}, grossneterrors.InvalidRegion(input.Region)
	}

	gross := input.GrossIncome
	insuranceBase := math.Max(gross, minWage)

	bhxhBhytCap := c.rules.BaseSalaryForCaps * c.rules.InsuranceCapMultiplier
	bhtnCap := minWage * c.rules.InsuranceCapMultiplier

	baseBhxhBhyt := math.Max(math.Min(insuranceBase, bhxhBhytCap), minWage)
	baseBhtn := math.Max(math.Min(insuranceBase, bhtnCap), minWage)

	bhxh := baseBhxhBhyt * c.rules.SocialInsuranceRate
	bhyt := baseBhxhBhyt * c.rules.HealthInsuranceRate
	bhtn := baseBhtn * c.rules.UnemploymentInsuranceRate
	totalInsurance := bhxh + bhyt + bhtn

	breakdown := InsuranceBreakdown{
		SocialInsurance:       money.Round(bhxh),
		HealthInsurance:       money.Round(bhyt),
		UnemploymentInsurance: money.Round(bhtn),
	}
	breakdown.Total = breakdown.SocialInsurance +
		breakdown.HealthInsurance +
		breakdown.UnemploymentInsurance

	// The unrounded sum feeds pre-tax and net income; only the breakdown
	// carries rounded components. Do not "fix" this, every reference
	// output depends on it.
	preTaxIncome := gross - totalInsurance

	totalAllowances := c.rules.PersonalAllowance +
		float64(input.NumDependents)*c.rules.DependentAllowance

	taxableIncome := math.Max(0, preTaxIncome-totalAllowances)

	pit := money.Round(c.rules.TaxOn(taxableIncome))
	if pit < 0 {
		pit = 0
	}

	netIncome := gross - totalInsurance - float64(pit)

	return CalculationResult{
		GrossIncome:                money.Round(gross),
		NetIncome:                  money.Round(netIncome),
		PersonalIncomeTax:          pit,
		TotalInsuranceContribution: breakdown.Total,
		TaxableIncome:              money.Round(taxableIncome),
		PreTaxIncome:               money.Round(preTaxIncome),
		InsuranceBreakdown:         breakdown,
		RuleVersion:                c.rules.Version,
	}, nil
}
