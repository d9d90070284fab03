package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"storepulse/internal/adapters/observability"
	"storepulse/internal/analysis"
	"storepulse/internal/domain"
	"storepulse/internal/report"
	"storepulse/internal/scrape"
)

// PipelineConfig wires one batch run end to end.
type PipelineConfig struct {
	Scrape       scrape.Config
	PersistDedup bool
	ReviewsOut   string
	ReportOut    string
}

// Pipeline runs the whole batch: scrape, enrich, persist, export.
// The repository is optional; without one the run is export-only and
// deduplication is scoped to the run.
type Pipeline struct {
	src       domain.PageSource
	repo      domain.ReviewRepository
	extractor *analysis.Extractor
	matcher   *analysis.NameMatcher
	asm       *report.Assembler
	cfg       PipelineConfig
}

func NewPipeline(src domain.PageSource, repo domain.ReviewRepository,
	extractor *analysis.Extractor, matcher *analysis.NameMatcher,
	asm *report.Assembler, cfg PipelineConfig) *Pipeline {
	return &Pipeline{src: src, repo: repo, extractor: extractor,
		matcher: matcher, asm: asm, cfg: cfg}
}

// Run executes one batch and returns its report. A partial scrape still
// produces every output; the ErrScrapeIncomplete wrap is passed through
// so the caller can signal the degraded exit. Only a failure before any
// page was fetched aborts without outputs.
func (p *Pipeline) Run(ctx context.Context) (domain.RunReport, error) {
	runID := newRunID()
	log.Info().Str("run_id", runID).Msg("pipeline run starting")

	dedup := scrape.NewDeduper()
	if p.cfg.PersistDedup && p.repo != nil {
		seen, err := p.repo.SeenIdentityKeys(ctx)
		if err != nil {
			return domain.RunReport{RunID: runID}, fmt.Errorf("seed dedup state: %w", err)
		}
		dedup.Seed(seen)
		log.Info().Int("keys", len(seen)).Msg("seeded dedup state from storage")
	}

	ctrl := scrape.NewController(p.src, p.cfg.Scrape, dedup)
	res, runErr := ctrl.Run(ctx)
	res.Report.RunID = runID
	if runErr != nil && !errors.Is(runErr, domain.ErrScrapeIncomplete) {
		return res.Report, runErr
	}

	p.enrich(&res)

	if p.repo != nil {
		if err := p.repo.UpsertReviews(ctx, runID, res.Reviews); err != nil {
			return res.Report, err
		}
		if err := p.repo.InsertRun(ctx, res.Report); err != nil {
			return res.Report, err
		}
	}

	if err := p.export(res); err != nil {
		return res.Report, err
	}

	// The closing summary always carries all four counts, even on an
	// export-only run with no repository to persist them.
	log.Info().
		Str("run_id", runID).
		Int("pages", res.Report.PagesFetched).
		Int("processed", res.Report.Processed).
		Int("kept", len(res.Reviews)).
		Int("duplicates_skipped", res.Report.DuplicatesSkipped).
		Int("date_parse_anomalies", res.Report.DateParseAnomalies).
		Int("classification_anomalies", res.Report.ClassificationAnomalies).
		Bool("partial", res.Report.Partial).
		Msg("pipeline run finished")
	return res.Report, runErr
}

// enrich splits bilingual text, scores both contexts, and attributes a
// staff name. Per-review problems become anomalies, never aborts.
func (p *Pipeline) enrich(res *scrape.Result) {
	for i := range res.Reviews {
		rv := &res.Reviews[i]

		orig, eng := analysis.SplitBilingual(rv.Text)
		rv.TextArabic = orig
		rv.TextEnglish = eng

		if rv.BadRating {
			// Malformed rating: the review stays, but its context results
			// are forced to no-context instead of classifying on a guess.
			res.Report.ClassificationAnomalies++
			res.Report.Anomalies = append(res.Report.Anomalies, domain.Anomaly{
				Kind:     domain.AnomalyClassification,
				Reviewer: rv.Reviewer,
				Detail:   "star rating missing or outside 1..5",
			})
			observability.ObserveAnomaly(domain.AnomalyClassification)
			rv.StaffResult = domain.ContextResult{Kind: domain.ContextStaff, Label: domain.LabelNoContext}
			rv.StoreResult = domain.ContextResult{Kind: domain.ContextStore, Label: domain.LabelNoContext}
		} else {
			rv.StaffResult, rv.StoreResult = p.extractor.Extract(rv.Text, rv.Stars)
		}
		rv.Staff = p.matcher.Attribute(rv.Text)
	}
}

func (p *Pipeline) export(res scrape.Result) error {
	for _, out := range []string{p.cfg.ReviewsOut, p.cfg.ReportOut} {
		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
	}
	if err := p.asm.WriteRawReviews(p.cfg.ReviewsOut, res.Reviews); err != nil {
		return fmt.Errorf("write reviews workbook: %w", err)
	}
	staff := report.StaffRows(res.Reviews)
	store := report.StoreRows(res.Reviews)
	cross := report.CrossRows(res.Reviews)
	if err := p.asm.WriteReport(p.cfg.ReportOut, res.Reviews, staff, store, cross); err != nil {
		return fmt.Errorf("write report workbook: %w", err)
	}
	return nil
}

func newRunID() string {
	return "run-" + time.Now().UTC().Format("20060102-150405")
}
