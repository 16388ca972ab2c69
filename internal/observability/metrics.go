// Package observability provides logging, Prometheus metrics and HTTP
// middleware for the staffing assistant.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets covers local model latencies from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts HTTP requests by method, route and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffrag_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "staffrag_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "route"},
	)

	// ChatOutcomesTotal counts chat requests by terminal outcome:
	// recommendation, no_match, generation_error, retrieval_error, compose_error.
	ChatOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffrag_chat_outcomes_total",
			Help: "Chat requests by outcome",
		},
		[]string{"outcome"},
	)

	// RetrievalDuration records query embedding plus index search time.
	RetrievalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "staffrag_retrieval_duration_seconds",
			Help:    "Retrieval duration",
			Buckets: prometheus.DefBuckets,
		},
	)

	// GenerationDuration records answer generator latency by model.
	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "staffrag_generation_duration_seconds",
			Help:    "Answer generation duration",
			Buckets: LLMBuckets,
		},
		[]string{"model"},
	)

	// QueryCacheLookups counts query embedding cache lookups by result.
	QueryCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffrag_query_cache_lookups_total",
			Help: "Query embedding cache lookups",
		},
		[]string{"result"},
	)

	// QueryCacheEntries is the number of vectors held by the query cache.
	QueryCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "staffrag_query_cache_entries",
			Help: "Query embeddings currently cached",
		},
	)

	// IndexedRecords is the number of vectors in the serving index.
	IndexedRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "staffrag_indexed_records",
			Help: "Records in the vector index",
		},
	)

	// LoadedRecords is the number of records held by the record store.
	LoadedRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "staffrag_loaded_records",
			Help: "Records loaded from the data source",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		ChatOutcomesTotal,
		RetrievalDuration,
		GenerationDuration,
		QueryCacheLookups,
		QueryCacheEntries,
		IndexedRecords,
		LoadedRecords,
	)
}
