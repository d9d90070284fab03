package domain

import "time"

// ContextKind is one of the two lenses a review is scored under.
type ContextKind string

const (
	ContextStaff ContextKind = "staff"
	ContextStore ContextKind = "store"
)

// Label is the categorical sentiment outcome for one context.
// LabelNoContext means no relevant keywords were found; it is distinct
// from a detected-but-neutral tone.
type Label string

const (
	LabelPositive  Label = "positive"
	LabelNegative  Label = "negative"
	LabelNeutral   Label = "neutral"
	LabelNoContext Label = "no-context"
)

// MatchKind records how a staff name was attributed.
type MatchKind string

const (
	MatchNone  MatchKind = ""
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
)

// ContextResult is the sentiment outcome for a single context kind.
type ContextResult struct {
	Kind     ContextKind
	Label    Label
	Score    float64
	Keywords []string
}

// Attribution links a review to a staff member by name matching.
type Attribution struct {
	Name  string
	Match MatchKind
}

// Review is one scraped entry, enriched as it moves through the pipeline.
// IdentityKey is derived from (reviewer, text, date text) and is immutable
// once assigned; re-scraping the same entry must be recognized as a
// duplicate, never overwritten.
type Review struct {
	IdentityKey string
	Reviewer    string
	Text        string // raw listing text, possibly bilingual
	TextEnglish string
	TextArabic  string
	DateText    string
	ReviewedAt  *time.Time // nil when the relative date did not parse
	Stars       *int       // nil when the rating is unknown or invalid
	BadRating   bool       // the listing carried a rating outside 1..5
	StoreCode   string
	ScrapedAt   time.Time

	Staff       Attribution
	StaffResult ContextResult
	StoreResult ContextResult
}

// SummaryRow is one line of an aggregate table. Staff and Store identify
// the grouping; either may be empty depending on the table.
type SummaryRow struct {
	Staff     string
	Store     string
	Positive  int
	Negative  int
	Neutral   int
	NoContext int
	Reviews   int
	Rated     int     // reviews with a known star rating
	AvgStars  float64 // over Rated only; 0 when Rated == 0
}
