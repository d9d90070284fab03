package analysis

import (
	"strings"

	"github.com/jonreiter/govader"

	"storepulse/internal/domain"
	"storepulse/internal/shared"
)

// Extractor scores each review under the staff and store lenses: a
// keyword gate decides whether a context applies at all, then a lexicon
// score over the full review text is blended with the star rating.
type Extractor struct {
	cfg   shared.SentimentConfig
	vader *govader.SentimentIntensityAnalyzer
}

func NewExtractor(cfg shared.SentimentConfig) *Extractor {
	return &Extractor{cfg: cfg, vader: govader.NewSentimentIntensityAnalyzer()}
}

// Extract returns one ContextResult per context kind. Empty or
// whitespace-only text yields no-context for both, regardless of stars.
// A nil stars pointer means the rating is unknown; the lexicon score
// then stands alone.
func (e *Extractor) Extract(text string, stars *int) (staff, store domain.ContextResult) {
	staff = domain.ContextResult{Kind: domain.ContextStaff, Label: domain.LabelNoContext}
	store = domain.ContextResult{Kind: domain.ContextStore, Label: domain.LabelNoContext}

	norm := strings.ToLower(Clean(text))
	if norm == "" {
		return staff, store
	}

	staffHits := matchKeywords(norm, e.cfg.StaffKeywords)
	storeHits := matchKeywords(norm, e.cfg.StoreKeywords)
	if len(staffHits) == 0 && len(storeHits) == 0 {
		return staff, store
	}

	// Once a context keyword is present the whole review is taken to be
	// about that context, so both contexts share one compound score.
	score := e.Blend(e.vader.PolarityScores(text).Compound, stars)

	if len(staffHits) > 0 {
		staff.Score = score
		staff.Label = e.Classify(score)
		staff.Keywords = staffHits
	}
	if len(storeHits) > 0 {
		store.Score = score
		store.Label = e.Classify(score)
		store.Keywords = storeHits
	}
	return staff, store
}

// Blend combines the lexicon polarity with a star-derived score:
// compound = (1-w)*lexicon + w*(stars-3)/2. Both inputs live in [-1, 1]
// and w in [0, 1], so the result is bounded without clamping. Unknown
// ratings contribute nothing: the lexicon score passes through.
func (e *Extractor) Blend(lexicon float64, stars *int) float64 {
	if stars == nil {
		return lexicon
	}
	w := e.cfg.StarWeight
	starScore := (float64(*stars) - 3) / 2
	return (1-w)*lexicon + w*starScore
}

// Classify maps a compound score to a label. Thresholds are inclusive:
// exactly PositiveThreshold is positive, exactly NegativeThreshold is
// negative.
func (e *Extractor) Classify(score float64) domain.Label {
	switch {
	case score >= e.cfg.PositiveThreshold:
		return domain.LabelPositive
	case score <= e.cfg.NegativeThreshold:
		return domain.LabelNegative
	default:
		return domain.LabelNeutral
	}
}

func matchKeywords(norm string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(norm, strings.ToLower(kw)) {
			hits = append(hits, kw)
		}
	}
	return hits
}
