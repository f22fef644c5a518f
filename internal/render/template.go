// Package render turns a verified inspection record into a filled
// certificate using a cached fillable template.
package render

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/supreme-sprinklers/backflow-cli/internal/resilience"
)

// ErrTemplateLoad is returned when the template cannot be obtained and no
// cached fallback exists.
var ErrTemplateLoad = eris.New("template unavailable")

// DefaultTemplateTTL is how long a loaded template is served without a
// refresh attempt.
const DefaultTemplateTTL = time.Hour

type cacheEntry struct {
	data     []byte
	loadedAt time.Time
}

// TemplateCache loads and memoizes the certificate template with a
// time-based freshness policy. A stale entry is served as a fallback when a
// refresh fails.
type TemplateCache struct {
	source string // HTTP(S) URL or local file path
	ttl    time.Duration
	client *http.Client
	retry  resilience.RetryConfig

	mu    sync.Mutex
	entry *cacheEntry

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// NewTemplateCache creates a cache over the given template source. A ttl of
// zero uses DefaultTemplateTTL.
func NewTemplateCache(source string, ttl time.Duration) *TemplateCache {
	if ttl <= 0 {
		ttl = DefaultTemplateTTL
	}
	return &TemplateCache{
		source:  source,
		ttl:     ttl,
		client:  &http.Client{Timeout: 30 * time.Second},
		retry:   resilience.DefaultRetryConfig(),
		nowFunc: time.Now,
	}
}

// Load returns the template bytes. An entry younger than the TTL is returned
// without touching the source. Otherwise a fresh fetch replaces the entry;
// on fetch failure an existing (possibly stale) entry is returned with a
// degradation warning, and only a cold-cache failure propagates.
func (c *TemplateCache) Load(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()
	if c.entry != nil && now.Sub(c.entry.loadedAt) < c.ttl {
		return c.entry.data, nil
	}

	data, err := c.fetch(ctx)
	if err != nil {
		if c.entry != nil {
			zap.L().Warn("template refresh failed, serving cached copy",
				zap.String("source", c.source),
				zap.Duration("age", now.Sub(c.entry.loadedAt)),
				zap.Error(err),
			)
			return c.entry.data, nil
		}
		return nil, eris.Wrapf(ErrTemplateLoad, "render: fetch %s: %v", c.source, err)
	}

	c.entry = &cacheEntry{data: data, loadedAt: now}
	zap.L().Info("template loaded", zap.String("source", c.source), zap.Int("bytes", len(data)))
	return data, nil
}

func (c *TemplateCache) fetch(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(c.source, "http://") || strings.HasPrefix(c.source, "https://") {
		return resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
			return c.fetchHTTP(ctx)
		})
	}

	data, err := os.ReadFile(c.source)
	if err != nil {
		return nil, eris.Wrapf(err, "render: read template file %s", c.source)
	}
	return data, nil
}

func (c *TemplateCache) fetchHTTP(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.source, nil)
	if err != nil {
		return nil, eris.Wrap(err, "render: create template request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "render: template request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("render: template fetch status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "render: read template body")
	}
	return data, nil
}
