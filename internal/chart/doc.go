// Package chart renders PNG visualizations for the analysis pipelines:
// scree plots, cumulative explained-variance curves, per-factor loading
// bars and generic bar charts for scraped table columns.
package chart
