package batch

// Required input columns. Matching is exact and case-sensitive, the same
// contract the original upload template documents.
const (
	ColGrossIncome = "GrossIncome"
	ColDependents  = "Dependents"
	ColRegion      = "Region"
)

const (
	StatusSuccess = "Success"
	StatusError   = "Error"
)

// InputRow is one data row as read from the uploaded sheet, still raw:
// parsing happens per row so one bad cell fails one row, not the batch.
type InputRow struct {
	Line        int // 1-based line in the file, header is line 1
	GrossIncome string
	Dependents  string
	Region      string
}

// RowResult echoes the input cells and appends the calculated columns.
// Numeric outputs are nil on a failed row.
type RowResult struct {
	GrossIncome string `json:"gross_income"`
	Dependents  string `json:"dependents"`
	Region      string `json:"region"`

	NetIncome      *int64 `json:"net_income"`
	PIT            *int64 `json:"pit"`
	TotalInsurance *int64 `json:"total_insurance"`
	TaxableIncome  *int64 `json:"taxable_income"`
	PreTaxIncome   *int64 `json:"pre_tax_income"`
	BHXH           *int64 `json:"bhxh"`
	BHYT           *int64 `json:"bhyt"`
	BHTN           *int64 `json:"bhtn"`

	CalculationStatus string `json:"calculation_status"`
	ErrorMessage      string `json:"error_message"`
}

type BatchReport struct {
	BatchID     string      `json:"batch_id"`
	FileName    string      `json:"file_name"`
	RuleVersion string      `json:"rule_version"`
	TotalRows   int         `json:"total_rows"`
	SuccessRows int         `json:"success_rows"`
	ErrorRows   int         `json:"error_rows"`
	DurationMS  int64       `json:"duration_ms"`
	Rows        []RowResult `json:"rows"`
}
