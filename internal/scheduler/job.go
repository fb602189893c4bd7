package scheduler

import (
	"context"
	"time"
)

// Job is a unit of scheduled work. Implementations live in the jobs
// subpackage.
type Job interface {
	// Name identifies the job in logs and history
	Name() string

	// Run executes one job cycle
	Run(ctx context.Context) error

	// Schedule is the cron expression, with seconds field.
	// Example: "0 0 2 * * 0" runs Sundays at 02:00.
	Schedule() string
}

// Result records one job execution
type Result struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// historyLimit bounds per-job result retention
const historyLimit = 100

// History holds recent execution results for one job
type History struct {
	Results []Result
}

func (h *History) add(result Result) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Latest returns the most recent n results in execution order
func (h *History) Latest(n int) []Result {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n == 0 {
		return []Result{}
	}
	return h.Results[len(h.Results)-n:]
}

// Failed returns every retained failed result
func (h *History) Failed() []Result {
	failed := make([]Result, 0)
	for _, r := range h.Results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// SuccessRate is the fraction of retained runs that succeeded
func (h *History) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}
	ok := 0
	for _, r := range h.Results {
		if r.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(h.Results))
}
