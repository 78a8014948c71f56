// Package report renders analysis results as human-readable tables on the
// terminal: dataset previews, summaries, adequacy verdicts and loadings.
package report
