package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"storepulse/internal/domain"
)

// NameMatcher attributes a review to a staff member by scanning the text
// against an ordered roster. Tie-break is a fixed policy, not iteration
// luck: the longest matching name wins, and equal lengths resolve to the
// earliest roster entry.
type NameMatcher struct {
	roster        []string
	caseSensitive bool
	fuzzy         bool
}

// NamesOptions configures matching behavior.
type NamesOptions struct {
	CaseSensitive bool
	Fuzzy         bool
}

func NewMatcher(roster []string, opts NamesOptions) *NameMatcher {
	return &NameMatcher{roster: roster, caseSensitive: opts.CaseSensitive, fuzzy: opts.Fuzzy}
}

// Attribute returns the attributed name, or a zero Attribution when no
// roster entry matches. A failed attribution is not an error; the review
// is always retained.
func (m *NameMatcher) Attribute(text string) domain.Attribution {
	if strings.TrimSpace(text) == "" {
		return domain.Attribution{}
	}

	if name := m.bestExact(text); name != "" {
		return domain.Attribution{Name: name, Match: domain.MatchExact}
	}
	if m.fuzzy {
		if name := m.bestFuzzy(text); name != "" {
			return domain.Attribution{Name: name, Match: domain.MatchFuzzy}
		}
	}
	return domain.Attribution{}
}

func (m *NameMatcher) bestExact(text string) string {
	hay := text
	if !m.caseSensitive {
		hay = strings.ToLower(text)
	}
	best := ""
	for _, name := range m.roster {
		needle := name
		if !m.caseSensitive {
			needle = strings.ToLower(name)
		}
		if needle == "" || !strings.Contains(hay, needle) {
			continue
		}
		// Longest wins, counted in runes so Arabic and Latin names compare
		// fairly; roster order breaks length ties.
		if runeLen(name) > runeLen(best) {
			best = name
		}
	}
	return best
}

// bestFuzzy matches roster names against individual tokens with a
// normalized case fold, tolerating dropped letters (a token that is a
// subsequence of the name and within two runes of its length). Same
// tie-break as exact matching.
func (m *NameMatcher) bestFuzzy(text string) string {
	tokens := strings.Fields(text)
	best := ""
	for _, name := range m.roster {
		nl := runeLen(name)
		if nl < 3 {
			continue
		}
		for _, tok := range tokens {
			tok = strings.Trim(tok, ".,!?;:()\"'")
			tl := runeLen(tok)
			if tl < 3 || nl-tl > 2 || tl > nl {
				continue
			}
			if fuzzy.MatchNormalizedFold(tok, name) {
				if nl > runeLen(best) {
					best = name
				}
				break
			}
		}
	}
	return best
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
