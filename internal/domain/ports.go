package domain

import "context"

// RawReview is one listing entry as extracted from the page, before any
// normalization or classification.
type RawReview struct {
	Reviewer  string
	Text      string
	DateText  string
	StoreCode string
	Stars     int
}

// PageResult is the outcome of extracting the currently loaded page.
type PageResult struct {
	Reviews []RawReview
}

// PageSource is the effectful capability the scraper controller drives.
// The underlying browser session is operator-owned: implementations
// connect to it, they never create it. Exactly one controller uses a
// source per run.
type PageSource interface {
	// Navigate loads the reviews listing. A failure to reach the session
	// at all is ErrConnectionUnavailable.
	Navigate(ctx context.Context, url string) error
	// FetchPage extracts the reviews visible on the current page.
	FetchPage(ctx context.Context) (PageResult, error)
	// NextPage advances to the next listing page. It reports false when
	// no further page is available.
	NextPage(ctx context.Context) (bool, error)
	Close() error
}

// ReviewRepository persists enriched reviews and run reports.
type ReviewRepository interface {
	// Write paths
	UpsertReviews(ctx context.Context, runID string, rs []Review) error
	InsertRun(ctx context.Context, r RunReport) error

	// SeenIdentityKeys seeds cross-run deduplication.
	SeenIdentityKeys(ctx context.Context) (map[string]struct{}, error)

	// Read paths
	ListReviews(ctx context.Context, limit int) ([]Review, error)
	StaffSummary(ctx context.Context) ([]SummaryRow, error)
	StoreSummary(ctx context.Context) ([]SummaryRow, error)
	CrossSummary(ctx context.Context) ([]SummaryRow, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
