package main

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"
)

// OperationMetrics buckets outcomes by status class. A status of 0 means the request never got a response.
type OperationMetrics struct {
	mu        sync.Mutex
	Total     int
	Success   int
	Conflict  int
	NotFound  int
	Error     int
	Latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	om.mu.Lock()
	defer om.mu.Unlock()

	om.Total++
	switch {
	case status >= 200 && status < 300:
		om.Success++
	case status == http.StatusConflict:
		om.Conflict++
	case status == http.StatusNotFound:
		om.NotFound++
	default:
		om.Error++
	}
	om.Latencies = append(om.Latencies, latency)
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	latencies := slices.Clone(om.Latencies)
	om.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0, 0
	}
	slices.Sort(latencies)

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, pct int) int {
	idx := n * pct / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Book   OperationMetrics
	Cancel OperationMetrics
	Rebook OperationMetrics
	Attend OperationMetrics
	Read   OperationMetrics
}

func (s *Simulator) PrintReport(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(w, "SIMULATION REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "Duration: %s\n", s.config.Duration)
	fmt.Fprintf(w, "Workers: %d\n\n", s.config.Workers)

	printOperationReport(w, "Book", &s.metrics.Book)
	printOperationReport(w, "Cancel", &s.metrics.Cancel)
	printOperationReport(w, "Rebook", &s.metrics.Rebook)
	printOperationReport(w, "Attend", &s.metrics.Attend)
	printOperationReport(w, "Read", &s.metrics.Read)
}

func printOperationReport(w io.Writer, name string, om *OperationMetrics) {
	om.mu.Lock()
	total, success, conflict, notFound, errs := om.Total, om.Success, om.Conflict, om.NotFound, om.Error
	om.mu.Unlock()

	if total == 0 {
		return
	}
	pct := func(n int) float64 { return float64(n) / float64(total) * 100 }

	avg, min, max, p50, p95 := om.Stats()

	fmt.Fprintf(w, "%s:\n", name)
	fmt.Fprintf(w, "  Total: %d\n", total)
	fmt.Fprintf(w, "  Success: %d (%.1f%%)\n", success, pct(success))
	if conflict > 0 {
		fmt.Fprintf(w, "  Conflicts: %d (%.1f%%)\n", conflict, pct(conflict))
	}
	if notFound > 0 {
		fmt.Fprintf(w, "  Not found: %d (%.1f%%)\n", notFound, pct(notFound))
	}
	if errs > 0 {
		fmt.Fprintf(w, "  Errors: %d (%.1f%%)\n", errs, pct(errs))
	}
	fmt.Fprintf(w, "  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
}
