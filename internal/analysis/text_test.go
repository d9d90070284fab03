package analysis

import "testing"

func TestSplitBilingual(t *testing.T) {
	text := "خدمة ممتازة (Original) (Translated by Google) Excellent service (Translated by Google) Excellent service"
	orig, eng := SplitBilingual(text)
	if orig != "خدمة ممتازة" {
		t.Errorf("original = %q", orig)
	}
	if eng != "Excellent service" {
		t.Errorf("english = %q", eng)
	}
}

func TestSplitBilingualNoMarker(t *testing.T) {
	orig, eng := SplitBilingual("plain english review")
	if orig != "plain english review" || eng != "" {
		t.Errorf("got (%q, %q)", orig, eng)
	}
}

func TestSplitBilingualSingleMarker(t *testing.T) {
	orig, eng := SplitBilingual("نص (Translated by Google) text")
	if orig != "نص" {
		t.Errorf("original = %q", orig)
	}
	if eng != "" {
		t.Errorf("english should be empty with one marker, got %q", eng)
	}
}

func TestClean(t *testing.T) {
	cases := map[string]string{
		"Great   service!!":           "Great service!!",
		"5 stars ⭐⭐⭐⭐⭐":                "5 stars",
		"good  price, wow™": "good price, wow",
		"":                            "",
		"   ":                         "",
	}
	for in, want := range cases {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}
