// Package exporter writes analysis outputs to disk.
//
// CSVWriter is the core CSV writing layer with header, append, streaming
// and UTF-8 BOM support. On top of it sit result-shaped exports: scraped
// tables, correlation matrices and factor loadings. WorkbookWriter
// produces a single XLSX workbook per analysis run with one sheet per
// artifact.
package exporter
