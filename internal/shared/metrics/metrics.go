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
	candidatesCreatedTotal    atomic.Uint64
	candidatesRejectedTotal   atomic.Uint64
	candidatesConflictTotal   atomic.Uint64
	candidatesRolledBackTotal atomic.Uint64
	autocompleteDegradedTotal atomic.Uint64
	stagedFilesCleanedUpTotal atomic.Uint64

	createDuration = newHistogram([]float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000})
)

// IncCandidateCreated counts a committed submission.
func IncCandidateCreated() {
	candidatesCreatedTotal.Add(1)
}

// IncCandidateRejected counts a submission that failed validation.
func IncCandidateRejected() {
	candidatesRejectedTotal.Add(1)
}

// IncCandidateConflict counts a submission rejected for a duplicate email.
func IncCandidateConflict() {
	candidatesConflictTotal.Add(1)
}

// IncCandidateRolledBack counts a submission undone after a storage failure.
func IncCandidateRolledBack() {
	candidatesRolledBackTotal.Add(1)
}

// IncAutocompleteDegraded counts autocomplete lookups that swallowed a store error.
func IncAutocompleteDegraded() {
	autocompleteDegradedTotal.Add(1)
}

// AddStagedFilesCleanedUp counts staged files removed at the end of a request.
func AddStagedFilesCleanedUp(n int) {
	if n > 0 {
		stagedFilesCleanedUpTotal.Add(uint64(n))
	}
}

// ObserveCreateDurationMs records how long a create request took.
func ObserveCreateDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	createDuration.Observe(value)
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
	writeCounter(&buf, "candidates_created_total", "Candidate submissions committed", candidatesCreatedTotal.Load())
	writeCounter(&buf, "candidates_rejected_total", "Candidate submissions rejected by validation", candidatesRejectedTotal.Load())
	writeCounter(&buf, "candidates_conflict_total", "Candidate submissions rejected for a duplicate email", candidatesConflictTotal.Load())
	writeCounter(&buf, "candidates_rolled_back_total", "Candidate submissions rolled back after a storage failure", candidatesRolledBackTotal.Load())
	writeCounter(&buf, "autocomplete_degraded_total", "Autocomplete lookups answered empty because the store failed", autocompleteDegradedTotal.Load())
	writeCounter(&buf, "staged_files_cleaned_up_total", "Staged upload files removed after a request", stagedFilesCleanedUpTotal.Load())
	writeHistogram(&buf, "candidate_create_duration_ms", "Create candidate duration in milliseconds", createDuration.Snapshot())
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
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
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
