package scrape

import (
	"errors"
	"testing"
	"time"

	"storepulse/internal/domain"
)

var anchor = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestParseRelative(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"5 minutes ago", anchor.Add(-5 * time.Minute)},
		{"an hour ago", anchor.Add(-time.Hour)},
		{"today", anchor},
		{"yesterday", anchor.AddDate(0, 0, -1)},
		{"2 days ago", anchor.AddDate(0, 0, -2)},
		{"a week ago", anchor.AddDate(0, 0, -7)},
		{"1 week ago", anchor.AddDate(0, 0, -7)},
		{"3 weeks ago", anchor.AddDate(0, 0, -21)},
		{"a month ago", anchor.AddDate(0, 0, -30)},
		{"2 months ago", anchor.AddDate(0, 0, -60)},
		{"a year ago", anchor.AddDate(0, 0, -365)},
		{"  Yesterday  ", anchor.AddDate(0, 0, -1)},
	}
	for _, c := range cases {
		got, err := ParseRelative(c.in, anchor)
		if err != nil {
			t.Fatalf("ParseRelative(%q): unexpected error %v", c.in, err)
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseRelative(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseRelativeArticleEqualsOne(t *testing.T) {
	a, err := ParseRelative("a week ago", anchor)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseRelative("1 week ago", anchor)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Errorf("'a week ago' (%v) != '1 week ago' (%v)", a, b)
	}
}

func TestParseRelativeUnrecognized(t *testing.T) {
	for _, in := range []string{"", "   ", "gibberish", "last christmas", "42"} {
		_, err := ParseRelative(in, anchor)
		var dpe *domain.DateParseError
		if !errors.As(err, &dpe) {
			t.Errorf("ParseRelative(%q): want DateParseError, got %v", in, err)
		}
	}
}
