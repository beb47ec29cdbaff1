package processor

import "time"

// Metrics defines the interface for recording updater metrics.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// RecordReceived increments the count of triggers handled.
	RecordReceived()
	// RecordPublished increments the count of sink deliveries.
	RecordPublished()
	// RecordError increments the count of failed passes and sink calls.
	RecordError()
	// RecordProcessed records the duration of one evaluation pass.
	RecordProcessed(duration time.Duration)
	// IncrementCustom increments a custom counter by name.
	IncrementCustom(name string)
	// AddCustom adds a value to a custom counter by name.
	AddCustom(name string, value uint64)
}

// NoOpMetrics is a no-op implementation of Metrics.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordReceived()               {}
func (NoOpMetrics) RecordPublished()              {}
func (NoOpMetrics) RecordError()                  {}
func (NoOpMetrics) RecordProcessed(time.Duration) {}
func (NoOpMetrics) IncrementCustom(string)        {}
func (NoOpMetrics) AddCustom(string, uint64)      {}
