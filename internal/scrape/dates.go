package scrape

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"storepulse/internal/domain"
)

var digitsRe = regexp.MustCompile(`\d+`)

// ParseRelative converts a free-text relative date ("2 days ago",
// "a week ago", "yesterday") into an absolute time anchored at now.
// A string with no recognized unit returns a DateParseError; callers
// decide whether to keep or drop the review, never substitute now.
//
// Months count as 30 days and years as 365, matching how the listing
// itself rounds.
func ParseRelative(s string, now time.Time) (time.Time, error) {
	low := strings.ToLower(strings.TrimSpace(s))
	if low == "" {
		return time.Time{}, &domain.DateParseError{Input: s}
	}

	// "X <unit> ago" with a missing number means "a"/"an" = 1.
	n := 1
	if m := digitsRe.FindString(low); m != "" {
		if v, err := strconv.Atoi(m); err == nil {
			n = v
		}
	}

	switch {
	case strings.Contains(low, "min"):
		return now.Add(-time.Duration(n) * time.Minute), nil
	case strings.Contains(low, "hour"):
		return now.Add(-time.Duration(n) * time.Hour), nil
	case strings.Contains(low, "today"):
		return now, nil
	case strings.Contains(low, "yesterday"):
		return now.AddDate(0, 0, -1), nil
	case strings.Contains(low, "day"):
		return now.AddDate(0, 0, -n), nil
	case strings.Contains(low, "week"):
		return now.AddDate(0, 0, -7*n), nil
	case strings.Contains(low, "month"):
		return now.AddDate(0, 0, -30*n), nil
	case strings.Contains(low, "year"):
		return now.AddDate(0, 0, -365*n), nil
	}
	return time.Time{}, &domain.DateParseError{Input: s}
}
