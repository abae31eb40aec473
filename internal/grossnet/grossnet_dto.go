package grossnet

// CalculateRequest mirrors the public gross-to-net contract. The
// dependent count is a pointer so that an explicit 0 survives gin's
// required check; the region deliberately carries no range tag because
// the calculator owns region validation and reports INVALID_REGION.
type CalculateRequest struct {
	GrossIncome   float64 `json:"gross_income" binding:"required,gt=0"`
	NumDependents *int    `json:"num_dependents" binding:"required,gte=0"`
	Region        int     `json:"region" binding:"required"`
}

type InsuranceBreakdownResponse struct {
	SocialInsurance       int64 `json:"social_insurance"`
	HealthInsurance       int64 `json:"health_insurance"`
	UnemploymentInsurance int64 `json:"unemployment_insurance"`
	Total                 int64 `json:"total"`
}

type CalculateResponse struct {
	GrossIncome                int64                      `json:"gross_income"`
	NetIncome                  int64                      `json:"net_income"`
	PersonalIncomeTax          int64                      `json:"personal_income_tax"`
	TotalInsuranceContribution int64                      `json:"total_insurance_contribution"`
	InsuranceBreakdown         InsuranceBreakdownResponse `json:"insurance_breakdown"`
	TaxableIncome              int64                      `json:"taxable_income"`
	PreTaxIncome               int64                      `json:"pre_tax_income"`
	RuleVersion                string                     `json:"rule_version"`
}

type BracketResponse struct {
	UpperLimit          *int64  `json:"upper_limit"` // null on the unbounded last bracket
	Rate                float64 `json:"rate"`
	CumulativeDeduction int64   `json:"cumulative_deduction"`
}

type RulesResponse struct {
	Version                   string            `json:"version"`
	PersonalAllowance         int64             `json:"personal_allowance"`
	DependentAllowance        int64             `json:"dependent_allowance"`
	SocialInsuranceRate       float64           `json:"social_insurance_rate"`
	HealthInsuranceRate       float64           `json:"health_insurance_rate"`
	UnemploymentInsuranceRate float64           `json:"unemployment_insurance_rate"`
	BaseSalaryForCaps         int64             `json:"base_salary_for_caps"`
	InsuranceCapMultiplier    float64           `json:"insurance_cap_multiplier"`
	RegionalMinimumWages      map[int]int64     `json:"regional_minimum_wages"`
	Brackets                  []BracketResponse `json:"pit_brackets"`
}

type StatsResponse struct {
	TotalCalculations int64         `json:"total_calculations"`
	ByRegion          map[int]int64 `json:"by_region"`
}
