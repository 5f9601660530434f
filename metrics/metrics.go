package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbound_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inbound_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	IngestOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbound_ingest_outcomes_total",
			Help: "Inbound submissions by outcome",
		},
		[]string{"outcome"},
	)

	IngestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inbound_ingest_transaction_duration_seconds",
			Help:    "Duration of the header/items/approvals transaction",
			Buckets: prometheus.DefBuckets,
		},
	)

	AuditFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inbound_audit_failures_total",
			Help: "Post-commit audit rows that could not be written",
		},
	)

	HeaderCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inbound_header_cache_hits_total",
			Help: "Header detail lookups served from redis",
		},
	)
)

// Ingest outcome labels.
const (
	OutcomeSaved        = "saved"
	OutcomeUnauthorized = "unauthorized"
	OutcomeForbidden    = "forbidden"
	OutcomeBadRequest   = "bad_request"
	OutcomeFailed       = "failed"
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(IngestOutcomesTotal)
	prometheus.MustRegister(IngestDuration)
	prometheus.MustRegister(AuditFailuresTotal)
	prometheus.MustRegister(HeaderCacheHitsTotal)
}
