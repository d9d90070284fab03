package domain

import "time"

// Anomaly is one recoverable per-review failure, collected into the run
// report instead of aborting the batch.
type Anomaly struct {
	Kind     string // date_parse | classification_input | page_load
	Reviewer string
	DateText string
	Detail   string
}

const (
	AnomalyDateParse      = "date_parse"
	AnomalyClassification = "classification_input"
	AnomalyPageLoad       = "page_load"
)

// RunReport summarizes one batch run: what was processed, what was
// skipped, and what went wrong without stopping the pipeline.
type RunReport struct {
	RunID                   string
	StartedAt               time.Time
	FinishedAt              time.Time
	WindowWeeks             int
	PagesFetched            int
	Processed               int
	DuplicatesSkipped       int
	DateParseAnomalies      int
	ClassificationAnomalies int
	Partial                 bool
	Anomalies               []Anomaly
}
