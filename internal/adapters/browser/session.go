// Package browser drives an operator-owned Chrome session over the
// DevTools protocol. It only ever attaches to an existing
// remote-debugging endpoint; launching or authenticating the browser is
// the operator's job.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"storepulse/internal/adapters/observability"
	"storepulse/internal/domain"
)

type Options struct {
	// RPS paces DevTools commands against the single shared endpoint.
	RPS int
	// FetchTimeout bounds each DevTools round trip.
	FetchTimeout time.Duration
	// LoadDelay is the settle time after navigation; NextDelay after a
	// pagination click.
	LoadDelay time.Duration
	NextDelay time.Duration
}

type Session struct {
	addr string
	ws   *websocket.Conn
	rl   *rate.Limiter
	opts Options

	mu     sync.Mutex
	nextID int64
}

type target struct {
	Type                 string `json:"type"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Connect attaches to the Chrome debugging endpoint at addr (host:port).
// Failure to reach the endpoint at all is ErrConnectionUnavailable; a run
// aborts on it before producing any output.
func Connect(ctx context.Context, addr string, opts Options) (*Session, error) {
	if opts.RPS <= 0 {
		opts.RPS = 1
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 20 * time.Second
	}
	if opts.LoadDelay <= 0 {
		opts.LoadDelay = 3 * time.Second
	}
	if opts.NextDelay <= 0 {
		opts.NextDelay = 4 * time.Second
	}

	hc := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/json/list", nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectionUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: debugger returned %d", domain.ErrConnectionUnavailable, resp.StatusCode)
	}
	var targets []target
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return nil, fmt.Errorf("%w: decode targets: %v", domain.ErrConnectionUnavailable, err)
	}

	wsURL := pickTarget(targets)
	if wsURL == "" {
		return nil, fmt.Errorf("%w: no debuggable page target", domain.ErrConnectionUnavailable)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial devtools socket: %v", domain.ErrConnectionUnavailable, err)
	}

	return &Session{
		addr: addr,
		ws:   conn,
		rl:   rate.NewLimiter(rate.Limit(opts.RPS), opts.RPS),
		opts: opts,
	}, nil
}

// pickTarget prefers a page already sitting on the business listing,
// then any page target.
func pickTarget(targets []target) string {
	var first string
	for _, t := range targets {
		if t.Type != "page" || t.WebSocketDebuggerURL == "" {
			continue
		}
		if strings.Contains(t.URL, "business.google.com") {
			return t.WebSocketDebuggerURL
		}
		if first == "" {
			first = t.WebSocketDebuggerURL
		}
	}
	return first
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.rl.Wait(ctx); err != nil {
		return err
	}
	start := time.Now()
	_, err := s.call(ctx, "Page.navigate", map[string]any{"url": url})
	observability.ObserveExternal("devtools", "Page.navigate", time.Since(start))
	if err != nil {
		return err
	}
	return wait(ctx, s.opts.LoadDelay)
}

func (s *Session) FetchPage(ctx context.Context) (domain.PageResult, error) {
	if err := s.rl.Wait(ctx); err != nil {
		return domain.PageResult{}, err
	}
	start := time.Now()
	raw, err := s.eval(ctx, extractReviewsJS)
	observability.ObserveExternal("devtools", "Runtime.evaluate", time.Since(start))
	if err != nil {
		return domain.PageResult{}, fmt.Errorf("fetch page: %w", err)
	}

	var entries []struct {
		Reviewer string `json:"reviewer"`
		Text     string `json:"text"`
		Date     string `json:"date"`
		Stars    int    `json:"stars"`
		Store    string `json:"store"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return domain.PageResult{}, fmt.Errorf("decode page extraction: %w", err)
	}

	pr := domain.PageResult{Reviews: make([]domain.RawReview, 0, len(entries))}
	for _, e := range entries {
		pr.Reviews = append(pr.Reviews, domain.RawReview{
			Reviewer:  e.Reviewer,
			Text:      e.Text,
			DateText:  e.Date,
			Stars:     e.Stars,
			StoreCode: e.Store,
		})
	}
	return pr, nil
}

func (s *Session) NextPage(ctx context.Context) (bool, error) {
	if err := s.rl.Wait(ctx); err != nil {
		return false, err
	}
	raw, err := s.eval(ctx, clickNextJS)
	if err != nil {
		return false, fmt.Errorf("next page: %w", err)
	}
	var clicked bool
	if err := json.Unmarshal(raw, &clicked); err != nil {
		return false, fmt.Errorf("decode next-page result: %w", err)
	}
	if !clicked {
		return false, nil
	}
	return true, wait(ctx, s.opts.NextDelay)
}

func (s *Session) Close() error { return s.ws.Close() }

// eval runs a JS expression in the page and returns its JSON value.
func (s *Session) eval(ctx context.Context, expr string) (json.RawMessage, error) {
	res, err := s.call(ctx, "Runtime.evaluate", map[string]any{
		"expression":    expr,
		"returnByValue": true,
	})
	if err != nil {
		return nil, err
	}
	var body struct {
		Result struct {
			Value json.RawMessage `json:"value"`
		} `json:"result"`
		ExceptionDetails *struct {
			Text string `json:"text"`
		} `json:"exceptionDetails"`
	}
	if err := json.Unmarshal(res, &body); err != nil {
		return nil, err
	}
	if body.ExceptionDetails != nil {
		return nil, fmt.Errorf("page script failed: %s", body.ExceptionDetails.Text)
	}
	return body.Result.Value, nil
}

type cdpMessage struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Method string `json:"method,omitempty"`
}

// call issues one DevTools command and waits for its matching response,
// skipping interleaved protocol events. The session is single-flight:
// the controller never issues concurrent commands.
func (s *Session) call(ctx context.Context, method string, params map[string]any) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID

	deadline := time.Now().Add(s.opts.FetchTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = s.ws.SetWriteDeadline(deadline)
	_ = s.ws.SetReadDeadline(deadline)

	if err := s.ws.WriteJSON(map[string]any{"id": id, "method": method, "params": params}); err != nil {
		return nil, fmt.Errorf("devtools %s: %w", method, err)
	}

	for {
		var msg cdpMessage
		if err := s.ws.ReadJSON(&msg); err != nil {
			return nil, fmt.Errorf("devtools %s: %w", method, err)
		}
		if msg.ID != id {
			continue // event or stale response
		}
		if msg.Error != nil {
			return nil, fmt.Errorf("devtools %s: %s (%d)", method, msg.Error.Message, msg.Error.Code)
		}
		return msg.Result, nil
	}
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
