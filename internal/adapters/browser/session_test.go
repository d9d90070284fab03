package browser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"storepulse/internal/domain"
)

func TestConnectUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Connect(ctx, "127.0.0.1:1", Options{})
	if !errors.Is(err, domain.ErrConnectionUnavailable) {
		t.Fatalf("want ErrConnectionUnavailable, got %v", err)
	}
}

func TestConnectNoPageTargets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"type": "background_page", "url": "chrome://x", "webSocketDebuggerUrl": "ws://nope"},
		})
	}))
	defer srv.Close()

	_, err := Connect(context.Background(), strings.TrimPrefix(srv.URL, "http://"), Options{})
	if !errors.Is(err, domain.ErrConnectionUnavailable) {
		t.Fatalf("want ErrConnectionUnavailable, got %v", err)
	}
}

// fakeDevtools serves /json/list plus a websocket endpoint that answers
// Page.navigate and Runtime.evaluate the way Chrome does.
func fakeDevtools(t *testing.T, extractValue any) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	mux := http.NewServeMux()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	host := strings.TrimPrefix(srv.URL, "http://")

	mux.HandleFunc("/json/list", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"type": "page", "url": "https://business.google.com/reviews", "webSocketDebuggerUrl": "ws://" + host + "/devtools/page/1"},
		})
	})
	mux.HandleFunc("/devtools/page/1", func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req struct {
				ID     int64          `json:"id"`
				Method string         `json:"method"`
				Params map[string]any `json:"params"`
			}
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			resp := map[string]any{"id": req.ID}
			switch req.Method {
			case "Page.navigate":
				resp["result"] = map[string]any{"frameId": "1"}
			case "Runtime.evaluate":
				expr, _ := req.Params["expression"].(string)
				var value any = extractValue
				if strings.Contains(expr, "VfPpkd") {
					value = false // no next page
				}
				resp["result"] = map[string]any{"result": map[string]any{"value": value}}
			}
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	})
	return srv
}

func fastOpts() Options {
	return Options{RPS: 1000, FetchTimeout: 2 * time.Second, LoadDelay: time.Millisecond, NextDelay: time.Millisecond}
}

func TestSessionFetchPage(t *testing.T) {
	srv := fakeDevtools(t, []map[string]any{
		{"reviewer": "Ali", "text": "great salesman", "date": "2 days ago", "store": "RYD01", "stars": 5},
	})
	ctx := context.Background()

	s, err := Connect(ctx, strings.TrimPrefix(srv.URL, "http://"), fastOpts())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Close()

	if err := s.Navigate(ctx, "https://business.google.com/reviews"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	pr, err := s.FetchPage(ctx)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(pr.Reviews) != 1 {
		t.Fatalf("got %d reviews, want 1", len(pr.Reviews))
	}
	got := pr.Reviews[0]
	if got.Reviewer != "Ali" || got.DateText != "2 days ago" || got.Stars != 5 || got.StoreCode != "RYD01" {
		t.Errorf("review = %+v", got)
	}

	more, err := s.NextPage(ctx)
	if err != nil {
		t.Fatalf("NextPage: %v", err)
	}
	if more {
		t.Error("fake reports no next page")
	}
}

func TestSessionScriptException(t *testing.T) {
	up := websocket.Upgrader{}
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	host := strings.TrimPrefix(srv.URL, "http://")

	mux.HandleFunc("/json/list", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"type": "page", "url": "about:blank", "webSocketDebuggerUrl": "ws://" + host + "/ws"},
		})
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req struct {
				ID int64 `json:"id"`
			}
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			_ = conn.WriteJSON(map[string]any{
				"id": req.ID,
				"result": map[string]any{
					"result":           map[string]any{},
					"exceptionDetails": map[string]any{"text": "ReferenceError"},
				},
			})
		}
	})

	s, err := Connect(context.Background(), host, fastOpts())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Close()

	if _, err := s.FetchPage(context.Background()); err == nil {
		t.Fatal("page script exception should surface as an error")
	}
}
