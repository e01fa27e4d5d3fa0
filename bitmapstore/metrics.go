package bitmapstore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives one call per store operation.
// Implement it to export store metrics to a monitoring system.
type MetricsCollector interface {
	// RecordPut is called after each Put with the stored frame size.
	RecordPut(storedBytes int, duration time.Duration, err error)
	// RecordGet is called after each Get, View or LoadMany member.
	RecordGet(storedBytes int, duration time.Duration, err error)
	// RecordDelete is called after each Delete.
	RecordDelete(duration time.Duration, err error)
	// RecordChecksumFailure is called when a stored frame fails verification.
	RecordChecksumFailure()
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPut(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordGet(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)   {}
func (NoopMetricsCollector) RecordChecksumFailure()              {}

// BasicMetricsCollector keeps in-memory counters.
type BasicMetricsCollector struct {
	PutCount         atomic.Int64
	PutErrors        atomic.Int64
	PutBytes         atomic.Int64
	PutTotalNanos    atomic.Int64
	GetCount         atomic.Int64
	GetErrors        atomic.Int64
	GetBytes         atomic.Int64
	GetTotalNanos    atomic.Int64
	DeleteCount      atomic.Int64
	DeleteErrors     atomic.Int64
	ChecksumFailures atomic.Int64
}

// RecordPut implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPut(storedBytes int, duration time.Duration, err error) {
	b.PutCount.Add(1)
	b.PutTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PutErrors.Add(1)
		return
	}
	b.PutBytes.Add(int64(storedBytes))
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(storedBytes int, duration time.Duration, err error) {
	b.GetCount.Add(1)
	b.GetTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GetErrors.Add(1)
		return
	}
	b.GetBytes.Add(int64(storedBytes))
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(_ time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordChecksumFailure implements MetricsCollector.
func (b *BasicMetricsCollector) RecordChecksumFailure() {
	b.ChecksumFailures.Add(1)
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	PutCount         int64
	PutErrors        int64
	PutBytes         int64
	PutAvgNanos      int64
	GetCount         int64
	GetErrors        int64
	GetBytes         int64
	GetAvgNanos      int64
	DeleteCount      int64
	DeleteErrors     int64
	ChecksumFailures int64
}

// GetStats returns a snapshot of the counters.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PutCount:         b.PutCount.Load(),
		PutErrors:        b.PutErrors.Load(),
		PutBytes:         b.PutBytes.Load(),
		PutAvgNanos:      avg(b.PutTotalNanos.Load(), b.PutCount.Load()),
		GetCount:         b.GetCount.Load(),
		GetErrors:        b.GetErrors.Load(),
		GetBytes:         b.GetBytes.Load(),
		GetAvgNanos:      avg(b.GetTotalNanos.Load(), b.GetCount.Load()),
		DeleteCount:      b.DeleteCount.Load(),
		DeleteErrors:     b.DeleteErrors.Load(),
		ChecksumFailures: b.ChecksumFailures.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}
