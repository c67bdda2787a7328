// internal/models/batch.go
package models

// BatchFailure is one item that did not transition.
type BatchFailure struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// BatchResult aggregates per-item outcomes of a bulk select or reject.
type BatchResult struct {
	TotalRequested int            `json:"totalRequested"`
	SuccessCount   int            `json:"successCount"`
	FailCount      int            `json:"failCount"`
	SuccessfulIDs  []string       `json:"successfulIds"`
	Failures       []BatchFailure `json:"failures"`
}

func NewBatchResult(total int) *BatchResult {
	return &BatchResult{
		TotalRequested: total,
		SuccessfulIDs:  []string{},
		Failures:       []BatchFailure{},
	}
}

func (r *BatchResult) AddSuccess(id string) {
	r.SuccessfulIDs = append(r.SuccessfulIDs, id)
	r.SuccessCount++
}

func (r *BatchResult) AddFailure(id, code, reason string) {
	r.Failures = append(r.Failures, BatchFailure{ID: id, Code: code, Reason: reason})
	r.FailCount++
}
