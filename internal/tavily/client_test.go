package tavily

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/braxlabs/facet/internal/logger"
	"github.com/braxlabs/facet/internal/remote"
)

// memoryCache is a test double for the redis-backed response cache.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*Response
	failing bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*Response{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (*Response, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, false, errors.New("cache down")
	}
	resp, ok := m.entries[key]
	return resp, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, resp *Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("cache down")
	}
	m.entries[key] = resp
	return nil
}

func testClient(t *testing.T, handler http.Handler, enabled bool, cache ResponseCache) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	c := New(Config{
		Enabled: enabled,
		BaseURL: srv.URL,
		APIKey:  "tvly-test",
		Timeout: 2 * time.Second,
	}, cache, logger.New("error", false))
	return c, &calls
}

func searchHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer": "lab-grown diamonds keep gaining share",
			"results": []map[string]any{
				{"title": "Trend report", "url": "https://example.com/t", "content": "lab grown", "score": 0.92},
			},
		})
	})
}

func TestGateOffShortCircuits(t *testing.T) {
	c, calls := testClient(t, searchHandler(), false, nil)

	_, err := c.Search(context.Background(), Query{Query: "engagement ring trends"})
	if kind, ok := remote.KindOf(err); !ok || kind != remote.KindServiceDisabled {
		t.Fatalf("err = %v, want ServiceDisabled", err)
	}
	if err := c.Probe(context.Background()); !remote.Absorbable(err) {
		t.Fatalf("Probe err = %v, want absorbable ServiceDisabled", err)
	}
	if n := atomic.LoadInt32(calls); n != 0 {
		t.Errorf("gate off issued %d network calls, want 0", n)
	}
}

func TestSearchParsesResponse(t *testing.T) {
	var payload map[string]any
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		searchHandler().ServeHTTP(w, r)
	}), true, nil)

	resp, err := c.Search(context.Background(), Query{Query: "Engagement Ring Trends", IncludeAnswer: true})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if resp.Answer == "" || len(resp.Results) != 1 {
		t.Errorf("resp = %+v, want answer and one result", resp)
	}
	if resp.Query != "Engagement Ring Trends" {
		t.Errorf("resp.Query = %q, want original query", resp.Query)
	}
	if payload["search_depth"] != DepthBasic {
		t.Errorf("search_depth = %v, want basic default", payload["search_depth"])
	}
	if payload["max_results"] != float64(5) {
		t.Errorf("max_results = %v, want 5 default", payload["max_results"])
	}
}

func TestTimeoutYieldsUnreachable(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}), true, nil)
	c.cfg.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := c.Search(context.Background(), Query{Query: "slow"})
	if kind, ok := remote.KindOf(err); !ok || kind != remote.KindUnreachable {
		t.Fatalf("err = %v, want Unreachable", err)
	}
	if time.Since(start) > 300*time.Millisecond {
		t.Error("timeout not enforced at the configured bound")
	}
}

func TestHTTPErrorYieldsRemoteRejected(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}), true, nil)

	_, err := c.Search(context.Background(), Query{Query: "anything"})

	var re *remote.Error
	if !errors.As(err, &re) || re.Kind != remote.KindRemoteRejected {
		t.Fatalf("err = %v, want RemoteRejected", err)
	}
	if re.Status != http.StatusTooManyRequests || !strings.Contains(re.Detail, "rate limited") {
		t.Errorf("status/detail = %d/%q, want upstream values verbatim", re.Status, re.Detail)
	}
}

func TestMalformedBodyYieldsBadResponse(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}), true, nil)

	_, err := c.Search(context.Background(), Query{Query: "anything"})
	if kind, ok := remote.KindOf(err); !ok || kind != remote.KindBadResponse {
		t.Fatalf("err = %v, want BadResponse", err)
	}
}

func TestCacheHitSkipsOutboundCall(t *testing.T) {
	cache := newMemoryCache()
	c, calls := testClient(t, searchHandler(), true, cache)

	q := Query{Query: "engagement ring trends"}
	if _, err := c.Search(context.Background(), q); err != nil {
		t.Fatalf("first search failed: %v", err)
	}
	if _, err := c.Search(context.Background(), q); err != nil {
		t.Fatalf("second search failed: %v", err)
	}

	if n := atomic.LoadInt32(calls); n != 1 {
		t.Errorf("outbound calls = %d, want 1 (second served from cache)", n)
	}

	// Equivalent query after normalization shares the entry.
	if _, err := c.Search(context.Background(), Query{Query: "  Engagement Ring TRENDS  "}); err != nil {
		t.Fatalf("normalized search failed: %v", err)
	}
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Errorf("outbound calls = %d, want 1 after normalized repeat", n)
	}
}

func TestFailingCacheDoesNotFailSearch(t *testing.T) {
	cache := newMemoryCache()
	cache.failing = true
	c, calls := testClient(t, searchHandler(), true, cache)

	resp, err := c.Search(context.Background(), Query{Query: "ring"})
	if err != nil {
		t.Fatalf("search with failing cache returned error: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Errorf("results = %d, want 1", len(resp.Results))
	}
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Errorf("outbound calls = %d, want 1", n)
	}
}

func TestProbeBypassesCache(t *testing.T) {
	cache := newMemoryCache()
	c, calls := testClient(t, searchHandler(), true, cache)

	if err := c.Probe(context.Background()); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if err := c.Probe(context.Background()); err != nil {
		t.Fatalf("second probe failed: %v", err)
	}
	if n := atomic.LoadInt32(calls); n != 2 {
		t.Errorf("probe calls = %d, want 2 (probes never read the cache)", n)
	}
}

func TestEmptyQueryRejected(t *testing.T) {
	c, calls := testClient(t, searchHandler(), true, nil)
	if _, err := c.Search(context.Background(), Query{Query: "   "}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
	if n := atomic.LoadInt32(calls); n != 0 {
		t.Errorf("invalid query issued %d calls, want 0", n)
	}
}

func TestFormatResultsTruncates(t *testing.T) {
	resp := &Response{
		Query:  "trends",
		Answer: strings.Repeat("sparkle ", 100),
		Results: []Result{
			{Title: "A", URL: "https://a", Content: strings.Repeat("x", 500)},
		},
		FollowUpQuestions: []string{"q1", "q2", "q3", "q4"},
	}

	out := FormatResults(resp, 200)
	if len(out) > 200 {
		t.Errorf("len = %d, want <= 200", len(out))
	}
	if !strings.HasSuffix(out, "...") {
		t.Errorf("truncated output should end with ellipsis, got %q", out[len(out)-10:])
	}

	full := FormatResults(resp, 100000)
	if !strings.Contains(full, "Related Questions:") || strings.Contains(full, "q4") {
		t.Error("full output should list at most 3 follow-up questions")
	}

	// maxLength smaller than the ellipsis must not slice out of range.
	for _, n := range []int{1, 2, 3} {
		if out := FormatResults(resp, n); out != "..." {
			t.Errorf("FormatResults(resp, %d) = %q, want bare ellipsis", n, out)
		}
	}
}

func TestFormatResultsKeepsRuneBoundaries(t *testing.T) {
	resp := &Response{
		Query: "émeraude",
		Results: []Result{
			{Title: "B", URL: "https://b", Content: strings.Repeat("é", 300)},
		},
	}

	for _, n := range []int{30, 31, 32, 33} {
		out := FormatResults(resp, n)
		if !utf8.ValidString(out) {
			t.Errorf("FormatResults(resp, %d) = %q, invalid UTF-8", n, out)
		}
	}

	if full := FormatResults(resp, 100000); !utf8.ValidString(full) {
		t.Error("content cut split a rune")
	}
}
