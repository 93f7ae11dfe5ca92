package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	opStarted      = newLabeledCounter()
	opCompleted    = newLabeledCounter()
	opFailed       = newLabeledCounter()
	opRefundFailed = newLabeledCounter()

	creditsGrantedTotal     atomic.Uint64
	webhookEventsTotal      atomic.Uint64
	alertsPublishedTotal    atomic.Uint64
	reconcileSucceededTotal atomic.Uint64
	reconcileFailedTotal    atomic.Uint64

	opDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncOperationStarted counts a credit-gated operation entering the lifecycle.
func IncOperationStarted(kind string) { opStarted.inc(kind) }

// IncOperationCompleted counts an operation that charged and returned a result.
func IncOperationCompleted(kind string) { opCompleted.inc(kind) }

// IncOperationFailed counts an operation that ended without a charge, by failure kind.
func IncOperationFailed(kind, reason string) { opFailed.inc(kind + "|" + reason) }

// IncRefundFailed counts refunds that could not be written.
func IncRefundFailed(kind string) { opRefundFailed.inc(kind) }

func AddCreditsGranted(n int) {
	if n > 0 {
		creditsGrantedTotal.Add(uint64(n))
	}
}

func IncWebhookEvents()      { webhookEventsTotal.Add(1) }
func IncAlertsPublished()    { alertsPublishedTotal.Add(1) }
func IncReconcileSucceeded() { reconcileSucceededTotal.Add(1) }
func IncReconcileFailed()    { reconcileFailedTotal.Add(1) }

// ObserveOperationDurationMs records an operation duration in milliseconds.
func ObserveOperationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	opDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeLabeled(&buf, "credit_ops_started_total", "Credit-gated operations started", []string{"kind"}, opStarted.snapshot())
	writeLabeled(&buf, "credit_ops_completed_total", "Credit-gated operations completed", []string{"kind"}, opCompleted.snapshot())
	writeLabeled(&buf, "credit_ops_failed_total", "Credit-gated operations failed", []string{"kind", "reason"}, opFailed.snapshot())
	writeLabeled(&buf, "credit_refunds_failed_total", "Refunds that could not be applied", []string{"kind"}, opRefundFailed.snapshot())
	writeCounter(&buf, "credits_granted_total", "Credits granted from purchases and signups", creditsGrantedTotal.Load())
	writeCounter(&buf, "payment_webhook_events_total", "Payment webhook events accepted", webhookEventsTotal.Load())
	writeCounter(&buf, "credit_alerts_published_total", "Refund alerts published", alertsPublishedTotal.Load())
	writeCounter(&buf, "credit_reconcile_succeeded_total", "Refunds reconciled by the worker", reconcileSucceededTotal.Load())
	writeCounter(&buf, "credit_reconcile_failed_total", "Refund reconciliations that failed", reconcileFailedTotal.Load())
	writeHistogram(&buf, "credit_op_duration_ms", "Credit-gated operation duration in milliseconds", opDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[string]uint64)}
}

func (l *labeledCounter) inc(key string) {
	l.mu.Lock()
	l.values[key]++
	l.mu.Unlock()
}

func (l *labeledCounter) snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe places value in the first bucket whose bound covers it.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeled(buf *bytes.Buffer, name, help string, labels []string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(buf, "%s{%s} %d\n", name, formatLabels(labels, key), values[key])
	}
}

func formatLabels(names []string, key string) string {
	parts := splitKey(key, len(names))
	var b bytes.Buffer
	for i, n := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%q", n, parts[i])
	}
	return b.String()
}

func splitKey(key string, n int) []string {
	out := make([]string, n)
	idx := 0
	start := 0
	for i := 0; i < len(key) && idx < n-1; i++ {
		if key[i] == '|' {
			out[idx] = key[start:i]
			idx++
			start = i + 1
		}
	}
	out[idx] = key[start:]
	return out
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
