package history

type CalculationRecordResponse struct {
	ID                string `json:"id"`
	GrossIncome       int64  `json:"gross_income"`
	NumDependents     int    `json:"num_dependents"`
	Region            int    `json:"region"`
	NetIncome         int64  `json:"net_income"`
	PersonalIncomeTax int64  `json:"personal_income_tax"`
	TotalInsurance    int64  `json:"total_insurance"`
	TaxableIncome     int64  `json:"taxable_income"`
	PreTaxIncome      int64  `json:"pre_tax_income"`
	RuleVersion       string `json:"rule_version"`
	CreatedAt         string `json:"created_at"`
}

type BatchRunResponse struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	TotalRows   int    `json:"total_rows"`
	SuccessRows int    `json:"success_rows"`
	ErrorRows   int    `json:"error_rows"`
	DurationMS  int64  `json:"duration_ms"`
	RuleVersion string `json:"rule_version"`
	CreatedAt   string `json:"created_at"`
}
