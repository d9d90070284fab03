package scrape

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// IdentityKey derives the dedup identity of a review from its reviewer
// name, full text, and relative date string. Case and runs of whitespace
// are folded so formatting noise cannot split one review into two, and
// the full text goes through a sha256 so two genuinely different reviews
// never collide.
func IdentityKey(reviewer, text, dateText string) string {
	sig := strings.Join([]string{
		foldKey(reviewer),
		foldKey(text),
		foldKey(dateText),
	}, "\x1f")
	sum := sha256.Sum256([]byte(sig))
	return hex.EncodeToString(sum[:])
}

func foldKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Deduper tracks review identities seen in this session (and, when
// seeded from storage, in earlier runs).
type Deduper struct {
	seen map[string]struct{}
}

func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{})}
}

// Seed marks keys from previous runs as already seen.
func (d *Deduper) Seed(keys map[string]struct{}) {
	for k := range keys {
		d.seen[k] = struct{}{}
	}
}

func (d *Deduper) IsDuplicate(key string) bool {
	_, ok := d.seen[key]
	return ok
}

// Record is idempotent: inserting the same key twice leaves one entry.
func (d *Deduper) Record(key string) {
	d.seen[key] = struct{}{}
}

func (d *Deduper) Len() int { return len(d.seen) }
