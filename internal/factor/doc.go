// Package factor implements exploratory factor analysis over a numeric
// observation matrix: Pearson correlation, the Kaiser-Meyer-Olkin measure
// of sampling adequacy, Bartlett's test of sphericity, principal component
// extraction with Kaiser retention, and varimax rotation.
//
// The package is pure computation. Callers feed it a rows-by-variables
// matrix and receive a Result; fetching, caching, rendering and export
// live elsewhere.
package factor
