package events

import "time"

const CalculationPerformedTopic = "payroll.grossnet.calculation.v1"

type CalculationPerformedEvent struct {
	EventType         string    `json:"event_type"`
	RequestID         string    `json:"request_id,omitempty"`
	CalculationID     string    `json:"calculation_id"`
	Region            int       `json:"region"`
	NumDependents     int       `json:"num_dependents"`
	GrossIncome       int64     `json:"gross_income"`
	NetIncome         int64     `json:"net_income"`
	PersonalIncomeTax int64     `json:"personal_income_tax"`
	RuleVersion       string    `json:"rule_version"`
	OccurredAt        time.Time `json:"occurred_at"`
}
