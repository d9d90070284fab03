package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func TestInstrumentLogsRouteAndStatus(t *testing.T) {
	var buf bytes.Buffer
	m := chi.NewRouter()
	m.Use(Instrument(zerolog.New(&buf)))
	m.Get("/v1/reviews", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reviews", nil))

	out := buf.String()
	for _, want := range []string{`"route":"/v1/reviews"`, `"status":418`, `"method":"GET"`} {
		if !strings.Contains(out, want) {
			t.Errorf("access log missing %s:\n%s", want, out)
		}
	}
}

func TestStatusRecorderDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &srw{ResponseWriter: rec}
	if _, err := sw.Write([]byte("ok")); err != nil {
		t.Fatal(err)
	}
	if sw.Status() != http.StatusOK {
		t.Errorf("status = %d, want 200", sw.Status())
	}
}

func TestStatusRecorderKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &srw{ResponseWriter: rec}
	sw.WriteHeader(http.StatusNotModified)
	sw.WriteHeader(http.StatusInternalServerError)
	if sw.Status() != http.StatusNotModified {
		t.Errorf("status = %d, want the first written status", sw.Status())
	}
}
