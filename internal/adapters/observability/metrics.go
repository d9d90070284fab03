package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "storepulse", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storepulse", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	PagesFetched = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "storepulse", Name: "pages_fetched_total", Help: "Listing pages fetched."},
	)
	ReviewsScraped = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "storepulse", Name: "reviews_scraped_total", Help: "Distinct in-window reviews collected."},
	)
	DuplicatesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "storepulse", Name: "duplicates_skipped_total", Help: "Reviews skipped as already seen."},
	)
	Anomalies = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "storepulse", Name: "anomalies_total", Help: "Recoverable per-review failures."},
		[]string{"kind"}, // kind: date_parse|classification_input|page_load
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storepulse", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "storepulse", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(InitRegistry()))

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
	reg.MustRegister(HTTPRequests, HTTPLatency, PagesFetched, ReviewsScraped,
		DuplicatesSkipped, Anomalies, ExternalLatency, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObservePage()               { PagesFetched.Inc() }
func ObserveReview()             { ReviewsScraped.Inc() }
func ObserveDuplicate()          { DuplicatesSkipped.Inc() }
func ObserveAnomaly(kind string) { Anomalies.WithLabelValues(kind).Inc() }

func ObserveExternal(service, endpoint string, dur time.Duration) {
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
