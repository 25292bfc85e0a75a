package metrics

import (
	"net/http"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metric names exposed on /metrics.
const (
	nameRequests    = "refinestack_http_requests_total"
	nameRuns        = "refinestack_pipeline_runs_total"
	nameRecords     = "refinestack_records_processed_total"
	nameRateLimited = "refinestack_rate_limited_total"
)

// Registry accumulates service counters and renders them in Prometheus text
// exposition format. All methods are safe for concurrent use.
type Registry struct {
	mu          sync.Mutex
	requests    map[requestKey]float64
	runs        map[string]float64 // "ok" | "failed"
	records     float64
	rateLimited float64
}

type requestKey struct {
	path string
	code string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		requests: make(map[requestKey]float64),
		runs:     make(map[string]float64),
	}
}

// ObserveRequest counts one completed HTTP request by path and status code.
func (r *Registry) ObserveRequest(path, code string) {
	r.mu.Lock()
	r.requests[requestKey{path: path, code: code}]++
	r.mu.Unlock()
}

// ObserveRun counts one pipeline run and, on success, the records it processed.
func (r *Registry) ObserveRun(ok bool, records int) {
	r.mu.Lock()
	if ok {
		r.runs["ok"]++
		r.records += float64(records)
	} else {
		r.runs["failed"]++
	}
	r.mu.Unlock()
}

// ObserveRateLimited counts one denied admission.
func (r *Registry) ObserveRateLimited() {
	r.mu.Lock()
	r.rateLimited++
	r.mu.Unlock()
}

// ServeHTTP renders all counters as Prometheus text exposition.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	families := r.gather()

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)
	for _, mf := range families {
		// The text encoder rejects a family with no metrics, which would
		// abort the whole response; labeled families start out empty.
		if len(mf.Metric) == 0 {
			continue
		}
		if err := enc.Encode(mf); err != nil {
			return
		}
	}
}

// gather snapshots the counters into metric families, sorted by name.
func (r *Registry) gather() []*dto.MetricFamily {
	r.mu.Lock()
	defer r.mu.Unlock()

	reqFamily := counterFamily(nameRequests, "HTTP requests served, by path and status code.")
	keys := make([]requestKey, 0, len(r.requests))
	for k := range r.requests {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].path != keys[j].path {
			return keys[i].path < keys[j].path
		}
		return keys[i].code < keys[j].code
	})
	for _, k := range keys {
		reqFamily.Metric = append(reqFamily.Metric, counter(r.requests[k],
			label("path", k.path), label("code", k.code)))
	}

	runFamily := counterFamily(nameRuns, "Pipeline runs, by outcome.")
	for _, status := range []string{"failed", "ok"} {
		if v, present := r.runs[status]; present {
			runFamily.Metric = append(runFamily.Metric, counter(v, label("status", status)))
		}
	}

	recFamily := counterFamily(nameRecords, "Records processed by successful pipeline runs.")
	recFamily.Metric = append(recFamily.Metric, counter(r.records))

	rlFamily := counterFamily(nameRateLimited, "Requests denied by the rate limiter.")
	rlFamily.Metric = append(rlFamily.Metric, counter(r.rateLimited))

	return []*dto.MetricFamily{reqFamily, rlFamily, recFamily, runFamily}
}

// --- dto construction helpers -----------------------------------------------

func counterFamily(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: strPtr(name),
		Help: strPtr(help),
		Type: dto.MetricType_COUNTER.Enum(),
	}
}

func counter(value float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{
		Label:   labels,
		Counter: &dto.Counter{Value: f64Ptr(value)},
	}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: strPtr(name), Value: strPtr(value)}
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
