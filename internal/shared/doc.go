// Package shared holds utilities that do not belong to a single pipeline
// stage. Currently this is just testutil, the in-memory slog handler the
// package tests assert logging against.
package shared
