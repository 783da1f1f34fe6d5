package tavily

import "errors"

// ErrInvalidRequest marks a query rejected before any network call.
var ErrInvalidRequest = errors.New("invalid request")

// Search depths accepted by the API.
const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"
)

// Query describes one search request.
type Query struct {
	Query          string
	Depth          string // DepthBasic (default) or DepthAdvanced
	MaxResults     int    // default 5
	IncludeAnswer  bool
	IncludeDomains []string
	ExcludeDomains []string
}

// Result is a single search hit.
type Result struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score,omitempty"`
	PublishedDate string  `json:"published_date,omitempty"`
}

// Response is the parsed search response.
type Response struct {
	Query             string   `json:"query"`
	Answer            string   `json:"answer,omitempty"`
	Results           []Result `json:"results"`
	FollowUpQuestions []string `json:"follow_up_questions,omitempty"`
	ResponseTime      float64  `json:"response_time,omitempty"`
}
