package metrics

import "time"

//go:generate mockgen -destination=mocks/mock_recorder.go -package=mocks github.com/anstrom/scangate/internal/metrics Recorder

// Recorder is the set of metrics the scan service and the HTTP layer emit.
// It allows callers to be tested without a Prometheus registry.
type Recorder interface {
	RecordScan(outcome string, duration time.Duration)
	AddPorts(state string, count int)
	AddHosts(hosts, orphans int)
	SetActiveScans(count int)

	IncrementRejections(field, reason string)
	IncrementInjectionAttempts(field string)
	IncrementExports(format, status string)

	IncrementHTTPRequests(method, path, status string)
	RecordHTTPDuration(method, path string, duration time.Duration)
	IncrementRateLimited(limit string)
}

// Ensure that PrometheusMetrics implements Recorder.
var _ Recorder = (*PrometheusMetrics)(nil)

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordScan(string, time.Duration)                 {}
func (Nop) AddPorts(string, int)                             {}
func (Nop) AddHosts(int, int)                                {}
func (Nop) SetActiveScans(int)                               {}
func (Nop) IncrementRejections(string, string)               {}
func (Nop) IncrementInjectionAttempts(string)                {}
func (Nop) IncrementExports(string, string)                  {}
func (Nop) IncrementHTTPRequests(string, string, string)     {}
func (Nop) RecordHTTPDuration(string, string, time.Duration) {}
func (Nop) IncrementRateLimited(string)                      {}

var _ Recorder = Nop{}
