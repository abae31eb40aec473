package history

import (
	"time"

	"github.com/google/uuid"
)

// CalculationRecord is the audit row written for every single-calculation
// API call. Amounts are whole VND.
type CalculationRecord struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID         string
	GrossIncome       int64
	NumDependents     int
	Region            int
	NetIncome         int64
	PersonalIncomeTax int64
	TotalInsurance    int64
	TaxableIncome     int64
	PreTaxIncome      int64
	RuleVersion       string
	CreatedAt         time.Time
}

func (CalculationRecord) TableName() string {
	return "calculation_records"
}

// BatchRun summarizes one spreadsheet upload. RequestID carries a unique
// constraint (uq_batch_runs_request) so an idempotency replay that slips
// past the middleware surfaces as a conflict instead of a duplicate row.
type BatchRun struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID   string    `gorm:"uniqueIndex:uq_batch_runs_request"`
	FileName    string
	TotalRows   int
	SuccessRows int
	ErrorRows   int
	DurationMS  int64
	RuleVersion string
	CreatedAt   time.Time
}

func (BatchRun) TableName() string {
	return "batch_runs"
}
