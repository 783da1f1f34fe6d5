// Package tavily wraps the Tavily search API behind the capability gate and
// the shared error taxonomy, with an optional redis-backed response cache
// to contain API cost on repeated queries.
package tavily

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/braxlabs/facet/internal/logger"
	"github.com/braxlabs/facet/internal/remote"
	"github.com/braxlabs/facet/internal/utils"
	"github.com/braxlabs/facet/internal/version"
)

const integrationName = "tavily"

const maxResponseBytes = 4 << 20

// ResponseCache stores successful search responses keyed by query digest.
// Implementations are best-effort: a failing cache must never fail a search.
type ResponseCache interface {
	Get(ctx context.Context, key string) (*Response, bool, error)
	Set(ctx context.Context, key string, resp *Response) error
}

// Config is the immutable per-process configuration of the search client.
type Config struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// ExcludeDomains is applied to price-comparison searches.
	ExcludeDomains []string
}

// Client issues search calls. Safe for concurrent use.
type Client struct {
	cfg       Config
	http      *http.Client
	logger    logger.Logger
	cache     ResponseCache // nil = caching disabled
	userAgent string
}

// New builds a search client. cache may be nil.
func New(cfg Config, cache ResponseCache, log logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Enabled && cfg.APIKey != "" && !strings.HasPrefix(cfg.APIKey, "tvly-") {
		log.Warn("tavily api key format appears invalid")
	}
	return &Client{
		cfg: cfg,
		// Deadlines come from the per-call context, not the http.Client,
		// so caller cancellation aborts in-flight requests.
		http:      &http.Client{},
		logger:    log,
		cache:     cache,
		userAgent: "facet/" + version.Version,
	}
}

// Enabled reports the capability gate.
func (c *Client) Enabled() bool { return c.cfg.Enabled }

// Name identifies this integration in health reports and errors.
func (c *Client) Name() string { return integrationName }

// Search runs a web search. Successful responses are cached (when a cache
// is wired) and repeated queries inside the cache TTL never hit the API.
func (c *Client) Search(ctx context.Context, q Query) (*Response, error) {
	return c.search(ctx, q, true)
}

func (c *Client) search(ctx context.Context, q Query, useCache bool) (*Response, error) {
	const op = "search"

	if !c.cfg.Enabled {
		c.logger.Debug("tavily gate off, skipping search")
		return nil, remote.Disabled(integrationName, op)
	}
	if strings.TrimSpace(q.Query) == "" {
		return nil, fmt.Errorf("search: query is empty: %w", ErrInvalidRequest)
	}
	if q.Depth == "" {
		q.Depth = DepthBasic
	}
	if q.MaxResults <= 0 {
		q.MaxResults = 5
	}

	key := cacheKey(q)
	if useCache && c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("search cache read failed", logger.Error(err))
		} else if ok {
			c.logger.Debug("search cache hit", logger.String("query", q.Query))
			return cached, nil
		}
	}

	resp, err := c.post(ctx, op, q)
	if err != nil {
		return nil, err
	}

	if useCache && c.cache != nil {
		if err := c.cache.Set(ctx, key, resp); err != nil {
			c.logger.Warn("search cache write failed", logger.Error(err))
		}
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, op string, q Query) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload := map[string]any{
		"query":          q.Query,
		"search_depth":   q.Depth,
		"max_results":    q.MaxResults,
		"include_answer": q.IncludeAnswer,
	}
	if len(q.IncludeDomains) > 0 {
		payload["include_domains"] = q.IncludeDomains
	}
	if len(q.ExcludeDomains) > 0 {
		payload["exclude_domains"] = q.ExcludeDomains
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	httpResp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("tavily unreachable",
			logger.String("request_id", requestID),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err))
		return nil, remote.Unreachable(integrationName, op, err)
	}
	defer utils.Close(httpResp.Body)

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn("tavily response read failed",
			logger.String("request_id", requestID),
			logger.Error(err))
		return nil, remote.Unreachable(integrationName, op, err)
	}

	if httpResp.StatusCode >= 400 {
		detail := strings.TrimSpace(string(raw))
		c.logger.Error("tavily rejected request",
			logger.Int("status", httpResp.StatusCode),
			logger.String("detail", detail),
			logger.String("request_id", requestID))
		return nil, remote.Rejected(integrationName, op, httpResp.StatusCode, detail)
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Error("tavily returned malformed payload",
			logger.String("request_id", requestID),
			logger.Error(err))
		return nil, remote.BadResponse(integrationName, op, err)
	}
	resp.Query = q.Query

	c.logger.Debug("tavily search ok",
		logger.String("query", q.Query),
		logger.Int("results", len(resp.Results)),
		logger.Duration("elapsed", time.Since(start)))
	return &resp, nil
}

// Probe issues a minimal one-result search, bypassing the cache so the
// outcome reflects live reachability. Used only by the health aggregator.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.search(ctx, Query{Query: "jewelry industry news", MaxResults: 1}, false)
	return err
}

// cacheKey digests the normalized query so equivalent searches share an entry.
func cacheKey(q Query) string {
	canonical, _ := json.Marshal(map[string]any{
		"q":  strings.ToLower(strings.TrimSpace(q.Query)),
		"d":  q.Depth,
		"n":  q.MaxResults,
		"a":  q.IncludeAnswer,
		"in": q.IncludeDomains,
		"ex": q.ExcludeDomains,
	})
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
