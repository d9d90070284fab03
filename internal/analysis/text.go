package analysis

import (
	"strings"
	"unicode"
)

const translatedMarker = "(Translated by Google)"

// SplitBilingual separates a listing entry that carries Google's
// translation markers into the original (Arabic) part and the English
// translation. Text without markers is returned unchanged as the
// original, with an empty translation.
func SplitBilingual(text string) (original, english string) {
	if !strings.Contains(text, translatedMarker) {
		return text, ""
	}
	parts := strings.Split(text, translatedMarker)
	original = strings.TrimSpace(strings.ReplaceAll(parts[0], "(Original)", ""))
	if len(parts) > 2 {
		english = strings.TrimSpace(parts[2])
	}
	return original, english
}

// Clean folds runs of whitespace and strips symbols, keeping letters,
// digits, and basic punctuation in any script.
func Clean(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		case strings.ContainsRune(".,!?;:()-_", r):
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
