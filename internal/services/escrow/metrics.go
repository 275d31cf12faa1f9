package escrow

import "time"

// MetricsCollector receives engine measurements.
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordSettlement(approved bool, token string)
	RecordError(operation, errType string)
}

// NoopMetricsCollector discards all measurements.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
func (NoopMetricsCollector) RecordOperationResult(string, string)         {}
func (NoopMetricsCollector) RecordSettlement(bool, string)                {}
func (NoopMetricsCollector) RecordError(string, string)                   {}
