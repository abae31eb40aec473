package grossnet

// CalculationInput is what the calculator consumes. Gross income and the
// dependent count are assumed pre-validated by the caller (gross > 0,
// dependents >= 0); the region is validated here because the calculator
// is the component that owns the regional wage table.
type CalculationInput struct {
	GrossIncome   float64
	NumDependents int
	Region        int
}

// InsuranceBreakdown holds the employee-share contributions, each rounded
// independently to whole VND. Total is the sum of the three rounded
// components, so it may differ by a dong or two from rounding the raw sum.
type InsuranceBreakdown struct {
	SocialInsurance       int64
	HealthInsurance       int64
	UnemploymentInsurance int64
	Total                 int64
}

// CalculationResult is an immutable value produced once per calculation.
// All amounts are whole VND. NetIncome and PreTaxIncome are derived from
// the unrounded contribution sum, not from InsuranceBreakdown.Total; the
// asymmetry reproduces the reference output and is deliberate.
type CalculationResult struct {
	GrossIncome                int64
	NetIncome                  int64
	PersonalIncomeTax          int64
	TotalInsuranceContribution int64
	TaxableIncome              int64
	PreTaxIncome               int64
	InsuranceBreakdown         InsuranceBreakdown
	RuleVersion                string
}
