package scrape

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"storepulse/internal/adapters/observability"
	"storepulse/internal/domain"
)

// Config is everything the controller needs for one run. Components get
// this at construction; nothing reads process-wide state.
type Config struct {
	URL               string
	WindowWeeks       int
	MaxPages          int
	OldStreakLimit    int // consecutive out-of-window reviews before stopping
	PageRetries       int // retries per page load, not counting the first try
	KeepUnparsedDates bool
	RetryBase         time.Duration
}

// Result carries whatever was collected, even when the run ended early.
type Result struct {
	Reviews []domain.Review
	Report  domain.RunReport
}

// Controller paginates an operator-authenticated listing through an
// injected PageSource, normalizes dates, deduplicates, and stops on the
// window boundary, the page cap, or exhaustion.
type Controller struct {
	src   domain.PageSource
	cfg   Config
	dedup *Deduper
	now   func() time.Time
}

func NewController(src domain.PageSource, cfg Config, dedup *Deduper) *Controller {
	if cfg.WindowWeeks <= 0 {
		cfg.WindowWeeks = 4
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}
	if cfg.OldStreakLimit <= 0 {
		cfg.OldStreakLimit = 3
	}
	if cfg.PageRetries < 0 {
		cfg.PageRetries = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 200 * time.Millisecond
	}
	if dedup == nil {
		dedup = NewDeduper()
	}
	return &Controller{src: src, cfg: cfg, dedup: dedup, now: time.Now}
}

// WithClock overrides the reference clock. Tests only.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// Run scrapes until a stop condition and returns the distinct in-window
// reviews in listing order. On retry exhaustion it returns the partial
// result together with ErrScrapeIncomplete; the caller still owns the
// collected reviews.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	res := Result{Report: domain.RunReport{
		StartedAt:   c.now(),
		WindowWeeks: c.cfg.WindowWeeks,
	}}

	if err := c.src.Navigate(ctx, c.cfg.URL); err != nil {
		return res, err
	}

	cutoff := c.now().AddDate(0, 0, -7*c.cfg.WindowWeeks)
	oldStreak := 0

	for page := 1; page <= c.cfg.MaxPages; page++ {
		pr, err := c.fetchWithRetry(ctx)
		if err != nil {
			res.Report.Partial = true
			res.Report.Anomalies = append(res.Report.Anomalies, domain.Anomaly{
				Kind:   domain.AnomalyPageLoad,
				Detail: err.Error(),
			})
			res.Report.FinishedAt = c.now()
			return res, fmt.Errorf("page %d: %w", page, domain.ErrScrapeIncomplete)
		}
		res.Report.PagesFetched++
		observability.ObservePage()

		stop := false
		for _, raw := range pr.Reviews {
			res.Report.Processed++
			rv, verdict := c.admit(raw, cutoff)
			switch verdict {
			case admitOld:
				oldStreak++
				if oldStreak >= c.cfg.OldStreakLimit {
					log.Info().Int("streak", oldStreak).Str("date", raw.DateText).
						Msg("consecutive out-of-window reviews, stopping")
					stop = true
				}
			case admitUnparsed:
				res.Report.DateParseAnomalies++
				res.Report.Anomalies = append(res.Report.Anomalies, domain.Anomaly{
					Kind:     domain.AnomalyDateParse,
					Reviewer: raw.Reviewer,
					DateText: raw.DateText,
				})
				observability.ObserveAnomaly(domain.AnomalyDateParse)
				log.Warn().Str("reviewer", raw.Reviewer).Str("date", raw.DateText).
					Msg("relative date did not parse")
				if c.cfg.KeepUnparsedDates {
					c.keep(&res, rv)
				}
			case admitDuplicate:
				// A duplicate dated inside the window is still evidence the
				// listing has not gone stale; only out-of-window entries may
				// extend the streak.
				if rv.ReviewedAt != nil {
					oldStreak = 0
				}
				res.Report.DuplicatesSkipped++
				observability.ObserveDuplicate()
			case admitKeep:
				oldStreak = 0
				c.keep(&res, rv)
			}
			if stop {
				break
			}
		}
		if stop {
			break
		}

		more, err := c.nextWithRetry(ctx)
		if err != nil {
			res.Report.Partial = true
			res.Report.Anomalies = append(res.Report.Anomalies, domain.Anomaly{
				Kind:   domain.AnomalyPageLoad,
				Detail: err.Error(),
			})
			res.Report.FinishedAt = c.now()
			return res, fmt.Errorf("advance past page %d: %w", page, domain.ErrScrapeIncomplete)
		}
		if !more {
			break
		}
	}

	res.Report.FinishedAt = c.now()
	return res, nil
}

type admitVerdict int

const (
	admitKeep admitVerdict = iota
	admitOld
	admitUnparsed
	admitDuplicate
)

func (c *Controller) admit(raw domain.RawReview, cutoff time.Time) (domain.Review, admitVerdict) {
	rv := domain.Review{
		IdentityKey: IdentityKey(raw.Reviewer, raw.Text, raw.DateText),
		Reviewer:    raw.Reviewer,
		Text:        raw.Text,
		DateText:    raw.DateText,
		StoreCode:   ExtractStoreCode(raw.StoreCode),
		ScrapedAt:   c.now(),
	}
	if raw.Stars >= 1 && raw.Stars <= 5 {
		s := raw.Stars
		rv.Stars = &s
	} else {
		rv.BadRating = true
	}

	at, err := ParseRelative(raw.DateText, c.now())
	if err != nil {
		// Unparsed dates are exempt from window filtering; whether the
		// review is retained is the KeepUnparsedDates policy.
		if c.dedup.IsDuplicate(rv.IdentityKey) {
			return rv, admitDuplicate
		}
		return rv, admitUnparsed
	}
	rv.ReviewedAt = &at

	if at.Before(cutoff) {
		return rv, admitOld
	}
	if c.dedup.IsDuplicate(rv.IdentityKey) {
		return rv, admitDuplicate
	}
	return rv, admitKeep
}

func (c *Controller) keep(res *Result, rv domain.Review) {
	c.dedup.Record(rv.IdentityKey)
	res.Reviews = append(res.Reviews, rv)
	observability.ObserveReview()
}

func (c *Controller) fetchWithRetry(ctx context.Context) (domain.PageResult, error) {
	var lastErr error
	for i := 0; i <= c.cfg.PageRetries; i++ {
		pr, err := c.src.FetchPage(ctx)
		if err == nil {
			return pr, nil
		}
		if ctx.Err() != nil {
			return domain.PageResult{}, ctx.Err()
		}
		lastErr = err
		observability.ObserveAnomaly(domain.AnomalyPageLoad)
		if i < c.cfg.PageRetries && sleepCtx(ctx, backoff(i, c.cfg.RetryBase)) {
			continue
		}
		break
	}
	return domain.PageResult{}, lastErr
}

// nextWithRetry advances to the next page under the same retry budget
// as fetching. A failed advance means the click script did not run, so
// re-issuing it cannot skip a page.
func (c *Controller) nextWithRetry(ctx context.Context) (bool, error) {
	var lastErr error
	for i := 0; i <= c.cfg.PageRetries; i++ {
		more, err := c.src.NextPage(ctx)
		if err == nil {
			return more, nil
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		lastErr = err
		observability.ObserveAnomaly(domain.AnomalyPageLoad)
		if i < c.cfg.PageRetries && sleepCtx(ctx, backoff(i, c.cfg.RetryBase)) {
			continue
		}
		break
	}
	return false, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// backoff doubles each attempt with up to +50% jitter.
func backoff(i int, base time.Duration) time.Duration {
	d := time.Duration(1<<i) * base
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return d
	}
	f := float64(b[0]) / 255.0
	return d + time.Duration(0.5*f*float64(d))
}

var storeCodeRe = regexp.MustCompile(`\b[A-Z0-9]{4,}\b`)

// ExtractStoreCode pulls the first 4+ character alphanumeric code out of
// the listing's store line. Empty when no code is present.
func ExtractStoreCode(s string) string {
	return storeCodeRe.FindString(s)
}
