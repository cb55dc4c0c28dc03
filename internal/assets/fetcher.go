package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/preston-bernstein/scorebug/internal/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxImageBytes  = 16 << 20
	// OpAsset labels asset downloads in metrics.
	OpAsset = "asset"
)

// Fetcher loads images by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// Config controls the HTTP fetcher.
type Config struct {
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Metrics    *metrics.Recorder
}

// HTTPFetcher downloads and decodes images, caching them by URL. Values without an
// http(s) scheme are read from the local filesystem so logos can ship with the config.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	metrics   *metrics.Recorder

	mu    sync.Mutex
	cache map[string]image.Image
}

// NewHTTPFetcher constructs a caching fetcher.
func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPFetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		metrics:   cfg.Metrics,
		cache:     make(map[string]image.Image),
	}
}

// Fetch returns the decoded image at url. Failures are not cached.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	if url == "" {
		return nil, fmt.Errorf("empty image url")
	}
	f.mu.Lock()
	img, ok := f.cache[url]
	f.mu.Unlock()
	if ok {
		return img, nil
	}

	start := time.Now()
	data, err := f.read(ctx, url)
	if err == nil {
		img, err = Decode(data)
	}
	f.metrics.RecordFeedAttempt(OpAsset, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	f.mu.Lock()
	f.cache[url] = img
	f.mu.Unlock()
	return img, nil
}

func (f *HTTPFetcher) read(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return os.ReadFile(strings.TrimPrefix(url, "file://"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

// Decode decodes PNG, JPEG, GIF or WebP bytes.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
