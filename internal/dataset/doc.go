// Package dataset loads and validates the UCI forest-fires dataset used by
// the factor analysis pipeline: schema checking, numeric matrix extraction
// and per-column summary statistics.
package dataset
