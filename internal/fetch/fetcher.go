package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"edacli/internal/config"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Fetcher downloads pages and files with caching, retry and rate limiting
type Fetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
	paths   *config.Paths
	logger  *slog.Logger
}

// New creates a Fetcher from the fetch configuration
func New(cfg config.FetchConfig, paths *config.Paths, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		SetHeader("User-Agent", cfg.UserAgent).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			// Retry on throttling and transient server failures only
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	return &Fetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		paths:   paths,
		logger:  logger,
	}
}

// CacheKey returns the cache filename for a URL
func CacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8]) + ".html"
}

// Page returns the HTML body of url. A cached copy under the cache
// directory is used when present unless refresh is set. The second return
// value reports whether the body came from the cache.
func (f *Fetcher) Page(ctx context.Context, url string, refresh bool) ([]byte, bool, error) {
	cachePath := f.paths.GetCachePath(CacheKey(url))

	if !refresh {
		if body, err := os.ReadFile(cachePath); err == nil {
			f.logger.InfoContext(ctx, "using cached page",
				slog.String("url", url),
				slog.String("cache_path", cachePath),
				slog.Int("bytes", len(body)))
			return body, true, nil
		}
	}

	body, err := f.get(ctx, url)
	if err != nil {
		return nil, false, err
	}

	if err := writeFileAtomic(cachePath, body); err != nil {
		// A failed cache write is not fatal for the pipeline
		f.logger.WarnContext(ctx, "failed to cache page",
			slog.String("cache_path", cachePath),
			slog.String("error", err.Error()))
	}

	return body, false, nil
}

// File downloads url to dest unless dest already exists. It reports
// whether a download actually happened.
func (f *Fetcher) File(ctx context.Context, url, dest string) (bool, error) {
	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		f.logger.InfoContext(ctx, "dataset file already present, skipping download",
			slog.String("path", dest),
			slog.Int64("bytes", info.Size()))
		return false, nil
	}

	body, err := f.get(ctx, url)
	if err != nil {
		return false, err
	}

	if err := writeFileAtomic(dest, body); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", dest, err)
	}

	f.logger.InfoContext(ctx, "downloaded file",
		slog.String("url", url),
		slog.String("path", dest),
		slog.Int("bytes", len(body)))

	return true, nil
}

// get performs a rate-limited GET and returns the response body
func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	f.logger.InfoContext(ctx, "fetching", slog.String("url", url))

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode())
	}

	return resp.Body(), nil
}

// writeFileAtomic writes data via a temp file and rename so a partial
// download never masquerades as a complete cache entry
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
