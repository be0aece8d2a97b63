package observability

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	llmRequests *CounterVec
	llmLatency  *HistogramVec
	llmTokens   *CounterVec

	linkProbes     *CounterVec
	linkProbeTime  *HistogramVec
	ingestOutcomes *CounterVec
	cacheLookups   *CounterVec
	streakCheckins *CounterVec
}

var (
	initMu   sync.Mutex
	instance *Metrics
)

// Current returns the process-wide registry, or nil when metrics are off.
// Every method on *Metrics is nil-safe.
func Current() *Metrics {
	initMu.Lock()
	defer initMu.Unlock()
	return instance
}

// Init builds the registry once. Later calls return the existing one.
func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initMu.Lock()
	defer initMu.Unlock()
	if instance != nil {
		return instance
	}
	instance = newMetrics()
	if log != nil {
		log.Info("metrics enabled")
	}
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("sm_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"sm_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("sm_api_inflight_requests", "In-flight API requests."),
		llmRequests: NewCounterVec("sm_llm_requests_total", "Completion requests by model/kind/status.", []string{"model", "kind", "status"}),
		llmLatency: NewHistogramVec(
			"sm_llm_request_duration_seconds",
			"Completion latency in seconds by model/kind/status.",
			[]string{"model", "kind", "status"},
			[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		),
		llmTokens:  NewCounterVec("sm_llm_tokens_total", "Completion tokens by model/direction.", []string{"model", "direction"}),
		linkProbes: NewCounterVec("sm_link_probes_total", "Resource link probes by verdict/source.", []string{"verdict", "source"}),
		linkProbeTime: NewHistogramVec(
			"sm_link_probe_duration_seconds",
			"HEAD probe latency in seconds by verdict.",
			[]string{"verdict"},
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		ingestOutcomes: NewCounterVec("sm_ingest_outcomes_total", "Roadmap pipeline outcomes by kind/status.", []string{"kind", "status"}),
		cacheLookups:   NewCounterVec("sm_cache_lookups_total", "Cache lookups by cache/result.", []string{"cache", "result"}),
		streakCheckins: NewCounterVec("sm_streak_checkins_total", "Streak check-ins by result.", []string{"result"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.linkProbes, m.linkProbeTime,
		m.ingestOutcomes, m.cacheLookups, m.streakCheckins,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = orUnknown(method, "UNKNOWN")
	route = orUnknown(route, "unknown")
	status = orUnknown(status, "0")
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(model, kind, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = orUnknown(model, "unknown")
	kind = orUnknown(kind, "unknown")
	status = orUnknown(status, "0")
	m.llmRequests.Inc(model, kind, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), model, kind, status)
	}
	if inputTokens > 0 {
		m.llmTokens.Add(float64(inputTokens), model, "input")
	}
	if outputTokens > 0 {
		m.llmTokens.Add(float64(outputTokens), model, "output")
	}
}

// ObserveLinkProbe records one verdict. source is "probe" for a network
// round trip and "cache" for a cached verdict.
func (m *Metrics) ObserveLinkProbe(verdict, source string, dur time.Duration) {
	if m == nil {
		return
	}
	m.linkProbes.Inc(orUnknown(verdict, "unknown"), orUnknown(source, "probe"))
	if source != "cache" && dur > 0 {
		m.linkProbeTime.Observe(dur.Seconds(), orUnknown(verdict, "unknown"))
	}
}

func (m *Metrics) IncIngestOutcome(kind, status string) {
	if m == nil {
		return
	}
	m.ingestOutcomes.Inc(orUnknown(kind, "unknown"), orUnknown(status, "unknown"))
}

func (m *Metrics) IncCacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Inc(orUnknown(cache, "unknown"), result)
}

func (m *Metrics) IncStreakCheckin(result string) {
	if m == nil {
		return
	}
	m.streakCheckins.Inc(orUnknown(result, "unknown"))
}

func orUnknown(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
