// Package scrape extracts HTML tables from fetched pages. A table node is
// located with an XPath expression, then reshaped into headers and string
// records with colspan/rowspan expansion, reference-footnote stripping and
// whitespace normalization, ready for numeric parsing or dataframe loading.
package scrape
