package app

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"sync"
	"time"

	"fave/go-backend/pkg/models"
)

type OpMetric struct {
	Count   int
	Errors  int
	TotalNs int64
	MaxNs   int64
	LastNs  int64
}

// NotificationEvent is one broadcast to connected fans. Seq is assigned by
// the broadcaster and is strictly increasing per daemon run.
type NotificationEvent struct {
	Seq       int64
	Method    string
	Payload   any
	Timestamp time.Time
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func DefaultLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func GeneratePrefixedID(prefix string) (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return prefix + "_" + hex.EncodeToString(buf), nil
}

type ServiceMetricsState struct {
	mu                  sync.RWMutex
	errorCounters       map[string]int
	opMetrics           map[string]*OpMetric
	reconciliationQueue int
	lastUpdatedAt       time.Time
}

func NewServiceMetricsState() *ServiceMetricsState {
	return &ServiceMetricsState{
		errorCounters: map[string]int{
			"api":     0,
			"ledger":  0,
			"storage": 0,
			"notify":  0,
		},
		opMetrics: map[string]*OpMetric{},
	}
}

func (m *ServiceMetricsState) Snapshot() (map[string]int, map[string]models.OperationMetric, int, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int, len(m.errorCounters))
	for k, v := range m.errorCounters {
		counters[k] = v
	}
	opStats := make(map[string]models.OperationMetric, len(m.opMetrics))
	for name, metric := range m.opMetrics {
		avg := int64(0)
		if metric.Count > 0 {
			avg = metric.TotalNs / int64(metric.Count) / int64(time.Millisecond)
		}
		opStats[name] = models.OperationMetric{
			Count:         metric.Count,
			Errors:        metric.Errors,
			AvgLatencyMs:  avg,
			MaxLatencyMs:  metric.MaxNs / int64(time.Millisecond),
			LastLatencyMs: metric.LastNs / int64(time.Millisecond),
		}
	}
	return counters, opStats, m.reconciliationQueue, m.lastUpdatedAt
}

func (m *ServiceMetricsState) RecordError(category string) {
	m.mu.Lock()
	m.errorCounters[category] = m.errorCounters[category] + 1
	m.lastUpdatedAt = time.Now().UTC()
	m.mu.Unlock()
}

// RecordReconciliationPending tracks listings the ledger committed but local
// persistence lost. The counter only moves when an operator resolves them.
func (m *ServiceMetricsState) RecordReconciliationPending(delta int) {
	m.mu.Lock()
	m.reconciliationQueue += delta
	if m.reconciliationQueue < 0 {
		m.reconciliationQueue = 0
	}
	m.lastUpdatedAt = time.Now().UTC()
	m.mu.Unlock()
}

func (m *ServiceMetricsState) RecordOp(operation string, started time.Time) {
	latency := time.Since(started).Nanoseconds()
	m.mu.Lock()
	defer m.mu.Unlock()
	metric, ok := m.opMetrics[operation]
	if !ok {
		metric = &OpMetric{}
		m.opMetrics[operation] = metric
	}
	metric.Count++
	metric.TotalNs += latency
	metric.LastNs = latency
	if latency > metric.MaxNs {
		metric.MaxNs = latency
	}
	m.lastUpdatedAt = time.Now().UTC()
}

func (m *ServiceMetricsState) RecordOpError(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metric, ok := m.opMetrics[operation]
	if !ok {
		metric = &OpMetric{}
		m.opMetrics[operation] = metric
	}
	metric.Errors++
	m.lastUpdatedAt = time.Now().UTC()
}
