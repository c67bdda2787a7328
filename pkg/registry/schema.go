// pkg/registry/schema.go
package registry

import (
	"fmt"
	"time"
)

// ActivityRegistry is the catalog of task types the worker manager serves.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one BPMN service task: its input contract, the business
// error codes it may throw and its job timeout.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}

// TimeoutDuration parses Timeout ("30s", "1m").
func (a Activity) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("activity %s: invalid timeout %q", a.ID, a.Timeout)
	}
	return d, nil
}

// InCategory returns the activities of one category in catalog order.
func (r *ActivityRegistry) InCategory(category string) []Activity {
	var out []Activity
	for _, a := range r.Activities {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}
