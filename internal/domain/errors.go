package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by read paths when the entity does not exist.
	ErrNotFound = errors.New("storepulse: not found")

	// ErrConnectionUnavailable means the browser debugging endpoint cannot
	// be reached at all. Fatal: a run aborts before producing any output.
	ErrConnectionUnavailable = errors.New("browser: connection unavailable")

	// ErrScrapeIncomplete means the per-page retry budget was exhausted.
	// The run still yields whatever was collected up to that point.
	ErrScrapeIncomplete = errors.New("scrape: incomplete, retry budget exhausted")
)

// DateParseError reports a relative-date string that matched no known
// pattern. Recoverable: one bad date never aborts a run.
type DateParseError struct {
	Input string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unrecognized relative date %q", e.Input)
}
