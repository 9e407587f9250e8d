package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	listingsCreated    atomic.Uint64
	purchasesSettled   atomic.Uint64
	deliveriesVerified atomic.Uint64
	callsRejected      atomic.Uint64

	// Settlement latency tracking
	settleLatencySumNs atomic.Int64
	settleLatencyCount atomic.Uint64

	// Gauges
	feedSubscribers atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordListing records a created listing.
func (m *Metrics) RecordListing() {
	m.listingsCreated.Add(1)
}

// RecordPurchase records a settled purchase with its end-to-end latency.
func (m *Metrics) RecordPurchase(latencyNs int64) {
	m.purchasesSettled.Add(1)
	m.settleLatencySumNs.Add(latencyNs)
	m.settleLatencyCount.Add(1)
}

// RecordVerification records a completed delivery verification.
func (m *Metrics) RecordVerification() {
	m.deliveriesVerified.Add(1)
}

// RecordRejected records a rejected ledger call.
func (m *Metrics) RecordRejected() {
	m.callsRejected.Add(1)
}

// IncrementSubscribers increments connected feed subscribers by 1.
func (m *Metrics) IncrementSubscribers() {
	m.feedSubscribers.Add(1)
}

// DecrementSubscribers decrements connected feed subscribers by 1.
func (m *Metrics) DecrementSubscribers() {
	m.feedSubscribers.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	ListingsCreated    uint64
	PurchasesSettled   uint64
	DeliveriesVerified uint64
	CallsRejected      uint64
	AvgSettleLatencyNs int64
	FeedSubscribers    int32
	Timestamp          time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		ListingsCreated:    m.listingsCreated.Load(),
		PurchasesSettled:   m.purchasesSettled.Load(),
		DeliveriesVerified: m.deliveriesVerified.Load(),
		CallsRejected:      m.callsRejected.Load(),
		FeedSubscribers:    m.feedSubscribers.Load(),
		Timestamp:          time.Now(),
	}
	if count := m.settleLatencyCount.Load(); count > 0 {
		snap.AvgSettleLatencyNs = m.settleLatencySumNs.Load() / int64(count)
	}
	return snap
}

// Reset clears all metrics. Intended for tests.
func (m *Metrics) Reset() {
	m.listingsCreated.Store(0)
	m.purchasesSettled.Store(0)
	m.deliveriesVerified.Store(0)
	m.callsRejected.Store(0)
	m.settleLatencySumNs.Store(0)
	m.settleLatencyCount.Store(0)
	m.feedSubscribers.Store(0)
}
