// Package health reports the state of recent parameterized runs and serves
// run reports and metrics over HTTP.
package health

import "time"

// SystemStatus represents the overall health state of the system or a method.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// MethodHealth describes the latest run of one test method.
type MethodHealth struct {
	Method     string       `json:"method"`
	Status     SystemStatus `json:"status"`
	LastRunID  string       `json:"last_run_id"`
	FinishedAt time.Time    `json:"finished_at"`
	Tuples     int          `json:"tuples"`
	Failed     int          `json:"failed"`
	Flaky      int          `json:"flaky"`
	Retries    int          `json:"retries"`
}

// HealthReport contains the full health report.
type HealthReport struct {
	SystemStatus SystemStatus            `json:"system_status"`
	Storage      string                  `json:"storage"`
	Methods      map[string]MethodHealth `json:"methods"`
}

// Worst returns the most severe of the given statuses.
func Worst(statuses ...SystemStatus) SystemStatus {
	status := StatusHealthy
	for _, s := range statuses {
		if s == StatusCritical {
			return StatusCritical
		}
		if s == StatusDegraded {
			status = StatusDegraded
		}
	}
	return status
}
