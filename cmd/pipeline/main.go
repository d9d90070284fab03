package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"storepulse/internal/adapters/browser"
	"storepulse/internal/adapters/observability"
	"storepulse/internal/analysis"
	"storepulse/internal/app"
	"storepulse/internal/domain"
	"storepulse/internal/report"
	"storepulse/internal/scrape"
	"storepulse/internal/shared"
	"storepulse/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	weeks := flag.Int("weeks", cfg.WindowWeeks, "review window in weeks")
	maxPages := flag.Int("max-pages", cfg.MaxPages, "hard page cap")
	url := flag.String("url", cfg.ReviewsURL, "reviews listing URL")
	reviewsOut := flag.String("reviews-out", cfg.ReviewsOut, "raw reviews workbook path")
	reportOut := flag.String("report-out", cfg.ReportOut, "sentiment report workbook path")
	flag.Parse()

	if *url == "" {
		log.Error().Msg("no reviews URL: set REVIEWS_URL or pass -url")
		os.Exit(1)
	}

	observability.Serve()

	analysisCfg, err := shared.LoadAnalysis(cfg.AnalysisFile)
	if err != nil {
		log.Error().Err(err).Str("file", cfg.AnalysisFile).Msg("load analysis config")
		os.Exit(1)
	}
	roster, err := shared.LoadRoster(cfg.RosterFile)
	if err != nil {
		log.Error().Err(err).Str("file", cfg.RosterFile).Msg("load staff roster")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := browser.Connect(ctx, cfg.DebuggerAddr, browser.Options{
		RPS:          cfg.PageRPS,
		FetchTimeout: cfg.FetchTimeout,
	})
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.DebuggerAddr).Msg("browser session unavailable")
		os.Exit(1)
	}
	defer src.Close()

	// Persistence is best effort for a batch run: without it the run is
	// export-only and dedup is scoped to the run.
	var repo domain.ReviewRepository
	if r, err := mysql.New(cfg.MySQLDSN); err != nil {
		log.Warn().Err(err).Msg("mysql unavailable, running export-only")
	} else {
		repo = r
		defer r.Close()
	}

	p := app.NewPipeline(
		src, repo,
		analysis.NewExtractor(analysisCfg.Sentiment),
		analysis.NewMatcher(roster, analysis.NamesOptions{
			CaseSensitive: analysisCfg.Names.CaseSensitive,
			Fuzzy:         analysisCfg.Names.Fuzzy,
		}),
		report.NewAssembler(analysisCfg.Palette),
		app.PipelineConfig{
			Scrape: scrape.Config{
				URL:               *url,
				WindowWeeks:       *weeks,
				MaxPages:          *maxPages,
				OldStreakLimit:    cfg.OldStreakLimit,
				PageRetries:       cfg.PageRetries,
				KeepUnparsedDates: cfg.KeepUnparsedDates,
			},
			PersistDedup: cfg.PersistDedup,
			ReviewsOut:   *reviewsOut,
			ReportOut:    *reportOut,
		},
	)

	_, err = p.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrScrapeIncomplete):
		log.Warn().Err(err).Msg("run finished with partial data")
		os.Exit(2)
	default:
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}
