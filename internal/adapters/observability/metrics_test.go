package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	reg := InitRegistry()

	ObserveHTTP("/v1/reviews", http.MethodGet, http.StatusOK, 42*time.Millisecond)
	ObservePage()
	ObserveReview()
	ObserveDuplicate()
	ObserveAnomaly("date_parse")
	ObserveCache("redis", "hit")
	ObserveExternal("devtools", "Runtime.evaluate", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	MetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"storepulse_http_requests_total",
		"storepulse_pages_fetched_total",
		"storepulse_reviews_scraped_total",
		"storepulse_duplicates_skipped_total",
		`storepulse_anomalies_total{kind="date_parse"}`,
		`storepulse_cache_events_total{cache="redis",event="hit"}`,
		"storepulse_external_request_duration_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %s", want)
		}
	}
}
