package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campus", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campus", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	NotifierSearches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus", Subsystem: "notifier", Name: "searches_total", Help: "Saved searches by batch outcome."},
		[]string{"outcome"},
	)
	NotifierEmails = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus", Subsystem: "notifier", Name: "emails_total", Help: "Digest emails by send status."},
		[]string{"status"}, // ok|error
	)
	NotifierRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "campus", Subsystem: "notifier", Name: "run_duration_seconds",
			Help:    "Saved-search batch duration seconds.",
			Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300},
		},
	)
	MalformedDocuments = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus", Name: "malformed_documents_total", Help: "Stored documents skipped because they could not be decoded."},
		[]string{"collection"},
	)
)

// Serve exposes reg on addr in the background. An empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		NotifierSearches, NotifierEmails, NotifierRunDuration, MalformedDocuments)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

// ObserveSearch records one saved search's batch outcome.
func ObserveSearch(outcome string) {
	NotifierSearches.WithLabelValues(outcome).Inc()
}

func ObserveEmail(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	NotifierEmails.WithLabelValues(status).Inc()
}

func ObserveRun(dur time.Duration) { NotifierRunDuration.Observe(dur.Seconds()) }

func ObserveMalformed(collection string) { MalformedDocuments.WithLabelValues(collection).Inc() }

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
