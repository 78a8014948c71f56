// Package fetch downloads web pages and dataset files over HTTP with
// polite defaults: a descriptive User-Agent, rate limiting, bounded retry
// with backoff, and an on-disk cache so repeated runs do not re-download
// unchanged sources.
package fetch
