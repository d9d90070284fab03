package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"storepulse/internal/analysis"
	"storepulse/internal/domain"
	"storepulse/internal/report"
	"storepulse/internal/scrape"
	"storepulse/internal/shared"
)

type fakeSource struct {
	pages [][]domain.RawReview
	idx   int
}

func (f *fakeSource) Navigate(ctx context.Context, url string) error { return nil }

func (f *fakeSource) FetchPage(ctx context.Context) (domain.PageResult, error) {
	if f.idx >= len(f.pages) {
		return domain.PageResult{}, nil
	}
	return domain.PageResult{Reviews: f.pages[f.idx]}, nil
}

func (f *fakeSource) NextPage(ctx context.Context) (bool, error) {
	f.idx++
	return f.idx < len(f.pages), nil
}

func (f *fakeSource) Close() error { return nil }

type fakeRepo struct {
	seen     map[string]struct{}
	upserted []domain.Review
	runs     []domain.RunReport
}

func (f *fakeRepo) UpsertReviews(ctx context.Context, runID string, rs []domain.Review) error {
	f.upserted = append(f.upserted, rs...)
	return nil
}

func (f *fakeRepo) InsertRun(ctx context.Context, r domain.RunReport) error {
	f.runs = append(f.runs, r)
	return nil
}

func (f *fakeRepo) SeenIdentityKeys(ctx context.Context) (map[string]struct{}, error) {
	return f.seen, nil
}

func (f *fakeRepo) ListReviews(ctx context.Context, limit int) ([]domain.Review, error) {
	return f.upserted, nil
}

func (f *fakeRepo) StaffSummary(ctx context.Context) ([]domain.SummaryRow, error) { return nil, nil }
func (f *fakeRepo) StoreSummary(ctx context.Context) ([]domain.SummaryRow, error) { return nil, nil }
func (f *fakeRepo) CrossSummary(ctx context.Context) ([]domain.SummaryRow, error) { return nil, nil }

func newTestPipeline(t *testing.T, src domain.PageSource, repo domain.ReviewRepository, persistDedup bool) (*Pipeline, string, string) {
	t.Helper()
	dir := t.TempDir()
	reviewsOut := filepath.Join(dir, "reviews.xlsx")
	reportOut := filepath.Join(dir, "report.xlsx")
	cfg := shared.DefaultAnalysisConfig()
	p := NewPipeline(
		src, repo,
		analysis.NewExtractor(cfg.Sentiment),
		analysis.NewMatcher([]string{"Ahmed", "Mohamed"}, analysis.NamesOptions{Fuzzy: true}),
		report.NewAssembler(cfg.Palette),
		PipelineConfig{
			Scrape:       scrape.Config{URL: "http://x", WindowWeeks: 4},
			PersistDedup: persistDedup,
			ReviewsOut:   reviewsOut,
			ReportOut:    reportOut,
		},
	)
	return p, reviewsOut, reportOut
}

func TestPipelineRunEndToEnd(t *testing.T) {
	src := &fakeSource{pages: [][]domain.RawReview{
		{
			{Reviewer: "Ali", Text: "Mohamed was a friendly and helpful salesman, amazing service", DateText: "2 days ago", Stars: 5, StoreCode: "Branch RYD01"},
			{Reviewer: "Omar", Text: "the store was dirty and the parking was horrible", DateText: "3 days ago", Stars: 1, StoreCode: "Branch RYD01"},
			{Reviewer: "Sara", Text: "fine", DateText: "yesterday", Stars: 4},
		},
	}}
	repo := &fakeRepo{}
	p, reviewsOut, reportOut := newTestPipeline(t, src, repo, false)

	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.RunID == "" {
		t.Error("run report should carry a run ID")
	}
	if len(repo.upserted) != 3 {
		t.Fatalf("persisted %d reviews, want 3", len(repo.upserted))
	}
	if len(repo.runs) != 1 {
		t.Fatalf("persisted %d run reports, want 1", len(repo.runs))
	}

	byReviewer := map[string]domain.Review{}
	for _, r := range repo.upserted {
		byReviewer[r.Reviewer] = r
	}

	// Staff praise, no store context.
	r1 := byReviewer["Ali"]
	if r1.StaffResult.Label != domain.LabelPositive {
		t.Errorf("Ali staff label = %s, want positive", r1.StaffResult.Label)
	}
	if r1.StoreResult.Label != domain.LabelNoContext {
		t.Errorf("Ali store label = %s, want no-context", r1.StoreResult.Label)
	}
	if r1.Staff.Name != "Mohamed" {
		t.Errorf("Ali review attributed to %q, want Mohamed", r1.Staff.Name)
	}
	if r1.StoreCode != "RYD01" {
		t.Errorf("store code = %q, want RYD01", r1.StoreCode)
	}

	// Store complaint, no staff context.
	r2 := byReviewer["Omar"]
	if r2.StoreResult.Label != domain.LabelNegative {
		t.Errorf("Omar store label = %s, want negative", r2.StoreResult.Label)
	}
	if r2.StaffResult.Label != domain.LabelNoContext {
		t.Errorf("Omar staff label = %s, want no-context", r2.StaffResult.Label)
	}

	// No keywords at all: no-context both ways, review still retained.
	r3 := byReviewer["Sara"]
	if r3.StaffResult.Label != domain.LabelNoContext || r3.StoreResult.Label != domain.LabelNoContext {
		t.Errorf("Sara labels = %s/%s, want no-context both", r3.StaffResult.Label, r3.StoreResult.Label)
	}

	// Both workbooks exist and open.
	for _, path := range []string{reviewsOut, reportOut} {
		f, err := excelize.OpenFile(path)
		if err != nil {
			t.Fatalf("open %s: %v", path, err)
		}
		f.Close()
	}
}

func TestPipelineSplitsBilingualText(t *testing.T) {
	text := "خدمة ممتازة (Original) (Translated by Google) Excellent service from the staff (Translated by Google) Excellent service from the staff"
	src := &fakeSource{pages: [][]domain.RawReview{
		{{Reviewer: "Ali", Text: text, DateText: "today", Stars: 5}},
	}}
	repo := &fakeRepo{}
	p, _, _ := newTestPipeline(t, src, repo, false)
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	r := repo.upserted[0]
	if r.TextArabic != "خدمة ممتازة" {
		t.Errorf("arabic = %q", r.TextArabic)
	}
	if r.TextEnglish != "Excellent service from the staff" {
		t.Errorf("english = %q", r.TextEnglish)
	}
}

func TestPipelineSeedsDedupFromStorage(t *testing.T) {
	key := scrape.IdentityKey("Ali", "seen before", "2 days ago")
	src := &fakeSource{pages: [][]domain.RawReview{
		{
			{Reviewer: "Ali", Text: "seen before", DateText: "2 days ago", Stars: 5},
			{Reviewer: "Omar", Text: "brand new", DateText: "today", Stars: 4},
		},
	}}
	repo := &fakeRepo{seen: map[string]struct{}{key: {}}}
	p, _, _ := newTestPipeline(t, src, repo, true)

	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(repo.upserted) != 1 || repo.upserted[0].Reviewer != "Omar" {
		t.Fatalf("want only the new review persisted, got %+v", repo.upserted)
	}
	if rep.DuplicatesSkipped != 1 {
		t.Errorf("DuplicatesSkipped = %d, want 1", rep.DuplicatesSkipped)
	}
}

func TestPipelineBadRatingAnomaly(t *testing.T) {
	src := &fakeSource{pages: [][]domain.RawReview{
		{{Reviewer: "Ali", Text: "the staff was great", DateText: "today", Stars: 0}},
	}}
	repo := &fakeRepo{}
	p, _, _ := newTestPipeline(t, src, repo, false)

	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.ClassificationAnomalies != 1 {
		t.Errorf("ClassificationAnomalies = %d, want 1", rep.ClassificationAnomalies)
	}
	// The review is retained but its context results are forced to
	// no-context; the rating stays unknown rather than guessed.
	r := repo.upserted[0]
	if r.StaffResult.Label != domain.LabelNoContext || r.StoreResult.Label != domain.LabelNoContext {
		t.Errorf("labels = %s/%s, want no-context both", r.StaffResult.Label, r.StoreResult.Label)
	}
	if r.Stars != nil {
		t.Error("malformed rating must stay unknown")
	}
}

func TestPipelineLogsAllRunCounts(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	// One kept, one duplicate, one unparsed date, one bad rating.
	src := &fakeSource{pages: [][]domain.RawReview{
		{
			{Reviewer: "Ali", Text: "the staff was great", DateText: "today", Stars: 5},
			{Reviewer: "Ali", Text: "the staff was great", DateText: "today", Stars: 5},
			{Reviewer: "Omar", Text: "fine", DateText: "sometime", Stars: 4},
			{Reviewer: "Sara", Text: "ok", DateText: "today", Stars: 0},
		},
	}}
	p, _, _ := newTestPipeline(t, src, nil, false)
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := buf.String()
	for _, field := range []string{
		`"processed":4`,
		`"duplicates_skipped":1`,
		`"date_parse_anomalies":1`,
		`"classification_anomalies":1`,
	} {
		if !strings.Contains(out, field) {
			t.Errorf("run summary missing %s:\n%s", field, out)
		}
	}
}

func TestPipelineNoRepository(t *testing.T) {
	src := &fakeSource{pages: [][]domain.RawReview{
		{{Reviewer: "Ali", Text: "the staff was great", DateText: "today", Stars: 5}},
	}}
	p, reviewsOut, _ := newTestPipeline(t, src, nil, false)
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run without repository: %v", err)
	}
	if _, err := excelize.OpenFile(reviewsOut); err != nil {
		t.Fatalf("export-only run still writes workbooks: %v", err)
	}
}
