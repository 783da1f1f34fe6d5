package tavily

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Domains favored for market queries: industry publications and grading labs.
var marketDomains = []string{
	"gia.edu",
	"diamonds.pro",
	"nationaljeweler.com",
	"jewelryconnoisseur.com",
	"rapaport.com",
	"jckonline.com",
}

// MarketSearch runs an advanced search scoped to jewelry industry sources.
func (c *Client) MarketSearch(ctx context.Context, topic string) (*Response, error) {
	q := Query{
		Query:          fmt.Sprintf("jewelry market %s trends pricing %d", topic, time.Now().Year()),
		Depth:          DepthAdvanced,
		MaxResults:     8,
		IncludeAnswer:  true,
		IncludeDomains: marketDomains,
	}
	return c.Search(ctx, q)
}

// ProductResearch looks up specifications and quality notes for a product type.
func (c *Client) ProductResearch(ctx context.Context, productType, specifications string) (*Response, error) {
	query := strings.TrimSpace(fmt.Sprintf("%s jewelry %s specifications features quality", productType, specifications))
	return c.Search(ctx, Query{
		Query:         query,
		Depth:         DepthAdvanced,
		MaxResults:    6,
		IncludeAnswer: true,
	})
}

// PriceComparison searches pricing information, excluding marketplace
// domains configured as unreliable pricing sources.
func (c *Client) PriceComparison(ctx context.Context, item, budgetRange string) (*Response, error) {
	query := strings.TrimSpace(fmt.Sprintf("%s jewelry price %s cost comparison market value", item, budgetRange))
	return c.Search(ctx, Query{
		Query:          query,
		Depth:          DepthBasic,
		MaxResults:     5,
		IncludeAnswer:  true,
		ExcludeDomains: c.cfg.ExcludeDomains,
	})
}

// TrendAnalysis surveys current styles for a jewelry category.
func (c *Client) TrendAnalysis(ctx context.Context, category string) (*Response, error) {
	if category == "" {
		category = "engagement rings"
	}
	return c.Search(ctx, Query{
		Query:         fmt.Sprintf("%d %s jewelry trends popular styles fashion designer", time.Now().Year(), category),
		Depth:         DepthAdvanced,
		MaxResults:    7,
		IncludeAnswer: true,
	})
}

// FormatResults renders a response as plain text for the chat layer,
// truncated to maxLength.
func FormatResults(resp *Response, maxLength int) string {
	if maxLength <= 0 {
		maxLength = 2000
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search Results for: %s\n\n", resp.Query)

	if resp.Answer != "" {
		fmt.Fprintf(&b, "Summary: %s\n\n", resp.Answer)
	}

	for i, r := range resp.Results {
		if i >= 5 {
			break
		}
		content := r.Content
		if len(content) > 200 {
			content = cut(content, 200) + "..."
		}
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n\n", i+1, r.Title, r.URL, content)
	}

	if len(resp.FollowUpQuestions) > 0 {
		b.WriteString("Related Questions:\n")
		for i, q := range resp.FollowUpQuestions {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "  - %s\n", q)
		}
	}

	out := b.String()
	if len(out) > maxLength {
		keep := maxLength - 3
		if keep < 0 {
			keep = 0
		}
		out = cut(out, keep) + "..."
	}
	return out
}

// cut truncates s to at most n bytes, backing up to a rune boundary so the
// result stays valid UTF-8.
func cut(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
