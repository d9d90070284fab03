package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"storepulse/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	return &Repo{db: db}, nil
}

func NewFromDB(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) UpsertReviews(ctx context.Context, runID string, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	ph := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*20)
	for _, rv := range rs {
		ph = append(ph, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			rv.IdentityKey, runID, rv.Reviewer, rv.Text, rv.TextEnglish, rv.TextArabic,
			rv.DateText, nullTime(rv.ReviewedAt), nullInt(rv.Stars), rv.BadRating,
			rv.StoreCode, rv.ScrapedAt,
			rv.Staff.Name, string(rv.Staff.Match),
			string(rv.StaffResult.Label), rv.StaffResult.Score, strings.Join(rv.StaffResult.Keywords, ","),
			string(rv.StoreResult.Label), rv.StoreResult.Score, strings.Join(rv.StoreResult.Keywords, ","),
		)
	}
	q := upsertReviewsPrefix + strings.Join(ph, ", ") + upsertReviewsSuffix
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert %d reviews: %w", len(rs), err)
	}
	return nil
}

func (r *Repo) InsertRun(ctx context.Context, rr domain.RunReport) error {
	_, err := r.db.ExecContext(ctx, insertRunQ,
		rr.RunID, rr.StartedAt, rr.FinishedAt, rr.WindowWeeks, rr.PagesFetched,
		rr.Processed, rr.DuplicatesSkipped, rr.DateParseAnomalies,
		rr.ClassificationAnomalies, rr.Partial,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rr.RunID, err)
	}
	return nil
}

func (r *Repo) SeenIdentityKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, seenKeysQ)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := map[string]struct{}{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		seen[k] = struct{}{}
	}
	return seen, rows.Err()
}

func (r *Repo) ListReviews(ctx context.Context, limit int) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsQ, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var (
			rv       domain.Review
			runID    string
			at       sql.NullTime
			stars    sql.NullInt64
			match    string
			staffLab string
			staffKw  string
			storeLab string
			storeKw  string
		)
		if err := rows.Scan(
			&rv.IdentityKey, &runID, &rv.Reviewer, &rv.Text, &rv.TextEnglish, &rv.TextArabic,
			&rv.DateText, &at, &stars, &rv.BadRating, &rv.StoreCode, &rv.ScrapedAt,
			&rv.Staff.Name, &match,
			&staffLab, &rv.StaffResult.Score, &staffKw,
			&storeLab, &rv.StoreResult.Score, &storeKw,
		); err != nil {
			return nil, err
		}
		if at.Valid {
			t := at.Time
			rv.ReviewedAt = &t
		}
		if stars.Valid {
			n := int(stars.Int64)
			rv.Stars = &n
		}
		rv.Staff.Match = domain.MatchKind(match)
		rv.StaffResult.Kind = domain.ContextStaff
		rv.StaffResult.Label = domain.Label(staffLab)
		rv.StaffResult.Keywords = splitKw(staffKw)
		rv.StoreResult.Kind = domain.ContextStore
		rv.StoreResult.Label = domain.Label(storeLab)
		rv.StoreResult.Keywords = splitKw(storeKw)
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) StaffSummary(ctx context.Context) ([]domain.SummaryRow, error) {
	return r.summary(ctx, staffSummaryQ)
}

func (r *Repo) StoreSummary(ctx context.Context) ([]domain.SummaryRow, error) {
	return r.summary(ctx, storeSummaryQ)
}

func (r *Repo) CrossSummary(ctx context.Context) ([]domain.SummaryRow, error) {
	return r.summary(ctx, crossSummaryQ)
}

func (r *Repo) summary(ctx context.Context, q string) ([]domain.SummaryRow, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SummaryRow
	for rows.Next() {
		var s domain.SummaryRow
		if err := rows.Scan(&s.Staff, &s.Store, &s.Positive, &s.Negative,
			&s.Neutral, &s.NoContext, &s.Reviews, &s.Rated, &s.AvgStars); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func splitKw(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
