package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	DebuggerAddr string // Chrome remote-debugging endpoint, host:port
	ReviewsURL   string

	WindowWeeks    int
	MaxPages       int
	OldStreakLimit int
	PageRetries    int
	FetchTimeout   time.Duration
	PageRPS        int

	KeepUnparsedDates bool
	PersistDedup      bool

	AnalysisFile string
	RosterFile   string
	ReviewsOut   string
	ReportOut    string

	CacheTTL time.Duration
}

func Load() Config {
	// .env is optional; real env always wins.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	abool := func(k string, def bool) bool {
		if v := os.Getenv(k); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/storepulse?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		DebuggerAddr: env("CHROME_DEBUG_ADDRESS", "localhost:9222"),
		ReviewsURL:   env("REVIEWS_URL", ""),

		WindowWeeks:    atoi("SCRAPING_WEEKS", 4),
		MaxPages:       atoi("SCRAPING_MAX_PAGES", 50),
		OldStreakLimit: atoi("SCRAPING_OLD_STREAK", 3),
		PageRetries:    atoi("SCRAPING_PAGE_RETRIES", 3),
		FetchTimeout:   time.Duration(atoi("SCRAPING_FETCH_TIMEOUT_SECONDS", 20)) * time.Second,
		PageRPS:        atoi("SCRAPING_PAGE_RPS", 1),

		KeepUnparsedDates: abool("KEEP_UNPARSED_DATES", false),
		PersistDedup:      abool("PERSIST_DEDUP_STATE", false),

		AnalysisFile: env("ANALYSIS_CONFIG", ""),
		RosterFile:   env("STAFF_ROSTER_FILE", "data/staff_names.csv"),
		ReviewsOut:   env("REVIEWS_OUT", "output/reviews/google_reviews.xlsx"),
		ReportOut:    env("REPORT_OUT", "output/reports/sentiment_report.xlsx"),

		CacheTTL: time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.ReviewsURL == "" {
		log.Warn().Msg("REVIEWS_URL is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
