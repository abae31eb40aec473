package events

import "time"

const BatchCompletedTopic = "payroll.grossnet.batch.v1"

type BatchCompletedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	BatchID     string    `json:"batch_id"`
	FileName    string    `json:"file_name"`
	TotalRows   int       `json:"total_rows"`
	SuccessRows int       `json:"success_rows"`
	ErrorRows   int       `json:"error_rows"`
	RuleVersion string    `json:"rule_version"`
	OccurredAt  time.Time `json:"occurred_at"`
}
