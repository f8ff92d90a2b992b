package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBillingRoyalty generates the monthly royalty invoices.
	TaskBillingRoyalty = "billing:royalty"
	// TaskBillingInterest generates the monthly interest invoices.
	TaskBillingInterest = "billing:interest"
)

// BillingPayload selects the period a billing run covers. An empty period
// means the current month.
type BillingPayload struct {
	Period string `json:"period"` // YYYY-MM
}

// NewBillingRoyaltyTask constructs a royalty billing task.
func NewBillingRoyaltyTask(payload BillingPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBillingRoyalty, data), nil
}

// NewBillingInterestTask constructs an interest billing task.
func NewBillingInterestTask(payload BillingPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBillingInterest, data), nil
}
