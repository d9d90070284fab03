package mysql

const reviewCols = `
	identity_key, run_id, reviewer, review_text, text_english, text_arabic,
	date_text, reviewed_at, stars, bad_rating, store_code, scraped_at,
	staff_name, staff_match,
	staff_label, staff_score, staff_keywords,
	store_label, store_score, store_keywords
`

// Re-scraped entries are recognized by identity_key and never rewritten;
// the ON DUPLICATE clause is a deliberate no-op.
const upsertReviewsPrefix = `
INSERT INTO reviews (` + reviewCols + `)
VALUES `

const upsertReviewsSuffix = `
ON DUPLICATE KEY UPDATE id = id`

const insertRunQ = `
INSERT INTO runs (
	run_id, started_at, finished_at, window_weeks, pages_fetched, processed,
	duplicates_skipped, date_parse_anomalies, classification_anomalies, partial
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const seenKeysQ = `SELECT identity_key FROM reviews`

const listReviewsQ = `
SELECT ` + reviewCols + `
FROM reviews
ORDER BY reviewed_at IS NULL, reviewed_at DESC, id DESC
LIMIT ?`

const staffSummaryQ = `
SELECT staff_name, '',
	SUM(staff_label = 'positive'),
	SUM(staff_label = 'negative'),
	SUM(staff_label = 'neutral'),
	SUM(staff_label = 'no-context'),
	COUNT(*),
	SUM(stars IS NOT NULL),
	COALESCE(AVG(stars), 0)
FROM reviews
WHERE staff_name <> ''
GROUP BY staff_name
ORDER BY staff_name`

const storeSummaryQ = `
SELECT '', store_code,
	SUM(store_label = 'positive'),
	SUM(store_label = 'negative'),
	SUM(store_label = 'neutral'),
	SUM(store_label = 'no-context'),
	COUNT(*),
	SUM(stars IS NOT NULL),
	COALESCE(AVG(stars), 0)
FROM reviews
GROUP BY store_code
ORDER BY store_code`

const crossSummaryQ = `
SELECT staff_name, store_code,
	SUM(staff_label = 'positive'),
	SUM(staff_label = 'negative'),
	SUM(staff_label = 'neutral'),
	SUM(staff_label = 'no-context'),
	COUNT(*),
	SUM(stars IS NOT NULL),
	COALESCE(AVG(stars), 0)
FROM reviews
WHERE staff_name <> ''
GROUP BY staff_name, store_code
ORDER BY staff_name, store_code`
