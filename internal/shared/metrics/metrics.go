package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	documentsSavedTotal     atomic.Uint64
	snapshotsPublishedTotal atomic.Uint64
	heartbeatsTotal         atomic.Uint64
	syncSessionsActive      atomic.Int64

	saveDuration = newHistogram([]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000})
)

// IncDocumentSaved increments the saved-documents counter.
func IncDocumentSaved() {
	documentsSavedTotal.Add(1)
}

// IncSnapshotPublished increments the published-snapshots counter.
func IncSnapshotPublished() {
	snapshotsPublishedTotal.Add(1)
}

// IncHeartbeat increments the presence-heartbeat counter.
func IncHeartbeat() {
	heartbeatsTotal.Add(1)
}

// SyncSessionOpened bumps the active-session gauge.
func SyncSessionOpened() {
	syncSessionsActive.Add(1)
}

// SyncSessionClosed drops the active-session gauge.
func SyncSessionClosed() {
	syncSessionsActive.Add(-1)
}

// ObserveSaveDurationMs records a document save duration in milliseconds.
func ObserveSaveDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	saveDuration.Observe(value)
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
	writeCounter(&buf, "documents_saved_total", "Total document saves", documentsSavedTotal.Load())
	writeCounter(&buf, "snapshots_published_total", "Total live-query snapshots published", snapshotsPublishedTotal.Load())
	writeCounter(&buf, "presence_heartbeats_total", "Total presence heartbeats", heartbeatsTotal.Load())
	writeGauge(&buf, "sync_sessions_active", "Currently open sync sessions", syncSessionsActive.Load())
	writeHistogram(&buf, "document_save_duration_ms", "Document save duration in milliseconds", saveDuration.Snapshot())
	return buf.String()
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
		counts:  make([]uint64, len(buckets)+1),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	idx := len(h.buckets)
	for i, upper := range h.buckets {
		if value <= upper {
			idx = i
			break
		}
	}
	h.counts[idx]++
	h.sum += value
	h.count++
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	counts := make([]uint64, len(h.counts))
	copy(counts, h.counts)
	return histogramSnapshot{
		buckets: h.buckets,
		counts:  counts,
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeGauge(buf *bytes.Buffer, name, help string, value int64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s gauge\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	cumulative := uint64(0)
	for i, upper := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=%q} %d\n", name, strconv.FormatFloat(upper, 'f', -1, 64), cumulative)
	}
	cumulative += snap.counts[len(snap.counts)-1]
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, cumulative)
	fmt.Fprintf(buf, "%s_sum %g\n", name, snap.sum)
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}
