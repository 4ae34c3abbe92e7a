// Package probe reads HLS master playlists to find the best variant
// resolution of each stream.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/etherlabsio/go-m3u8/m3u8"
	"golang.org/x/time/rate"

	"personalm3u/logger"
	"personalm3u/resolution"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/109.0.0.0 Safari/537.36"
	DefaultTimeout   = 5 * time.Second
	DefaultWorkers   = 8
)

type Prober struct {
	Client    *http.Client
	UserAgent string
	Workers   int
	// Limiter paces requests across all workers.
	Limiter *rate.Limiter
}

func New(timeout time.Duration, workers int, userAgent string) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Prober{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
		Workers:   workers,
		Limiter:   rate.NewLimiter(rate.Inf, 0),
	}
}

// SetRate caps requests per second. Zero or less removes the cap.
func (p *Prober) SetRate(perSecond float64) {
	if perSecond <= 0 {
		p.Limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	p.Limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Probeable reports whether uri looks like an HLS playlist over HTTP.
func Probeable(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".m3u8")
}

// Resolve fetches uri and returns the tier of its highest variant.
func (p *Prober) Resolve(ctx context.Context, uri string) (resolution.Tag, error) {
	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", p.UserAgent)
	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	height, err := MaxHeight(resp.Body)
	if err != nil {
		return "", err
	}
	return resolution.FromHeight(height), nil
}

// MaxHeight parses a master playlist and returns its tallest variant.
func MaxHeight(r io.Reader) (int, error) {
	playlist, err := m3u8.Read(r)
	if err != nil {
		return 0, err
	}
	best := 0
	for _, item := range playlist.Playlists() {
		if item.Resolution != nil && item.Resolution.Height > best {
			best = item.Resolution.Height
		}
	}
	if best == 0 {
		return 0, fmt.Errorf("no variant resolution")
	}
	return best, nil
}

// ResolveAll probes every probeable uri with a bounded number of workers.
// Streams that cannot be probed get no entry.
func (p *Prober) ResolveAll(ctx context.Context, uris []string) map[string]resolution.Tag {
	hints := make(map[string]resolution.Tag)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.Workers)

	seen := make(map[string]bool)
	for _, uri := range uris {
		if seen[uri] || !Probeable(uri) {
			continue
		}
		seen[uri] = true

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return hints
		}
		wg.Add(1)
		go func(uri string) {
			defer wg.Done()
			defer func() { <-sem }()
			tag, err := p.Resolve(ctx, uri)
			if err != nil {
				logger.Default.Debug().Str("uri", uri).Err(err).Msg("probe failed")
				return
			}
			mu.Lock()
			hints[uri] = tag
			mu.Unlock()
		}(uri)
	}
	wg.Wait()
	return hints
}
