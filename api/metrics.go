package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/proposal"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/workspace"
)

const namespace = "proposalgen"

// Metrics groups the server's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	proposals    *prometheus.CounterVec
	bannedClaims *prometheus.CounterVec
	reloads      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_total",
			Help:      "Generated proposals by policy decision.",
		}, []string{"decision"}),
		bannedClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "banned_claims_total",
			Help:      "Banned phrases found in generated proposals.",
		}, []string{"phrase"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workspace_reloads_total",
			Help:      "Workspace reload attempts by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.proposals, m.bannedClaims, m.reloads,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) observeRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) observeProposal(res *proposal.Result) {
	if res.Policy != nil {
		m.proposals.WithLabelValues(string(res.Policy.Decision)).Inc()
	}
	for _, phrase := range res.Claims {
		m.bannedClaims.WithLabelValues(phrase).Inc()
	}
}

// observeReloads chains onto the holder's reload hook.
func (m *Metrics) observeReloads(h *workspace.Holder) {
	prev := h.OnReload
	h.OnReload = func(err error) {
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.reloads.WithLabelValues(result).Inc()
		if prev != nil {
			prev(err)
		}
	}
}
