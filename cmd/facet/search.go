package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/braxlabs/facet/internal/fallback"
	"github.com/braxlabs/facet/internal/tavily"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Web search operations",
}

var (
	searchDepth   string
	searchMax     int
	searchAnswer  bool
	searchAsText  bool
	searchInclude []string
	searchExclude []string
)

var searchQueryCmd = &cobra.Command{
	Use:   "query <terms...>",
	Short: "Run a web search",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := facetApp.Search.Search(cmd.Context(), tavily.Query{
			Query:          strings.Join(args, " "),
			Depth:          searchDepth,
			MaxResults:     searchMax,
			IncludeAnswer:  searchAnswer,
			IncludeDomains: searchInclude,
			ExcludeDomains: searchExclude,
		})
		return emitSearch(resp, err)
	},
}

var searchTrendsCmd = &cobra.Command{
	Use:   "trends [category]",
	Short: "Analyze current jewelry trends",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category := ""
		if len(args) == 1 {
			category = args[0]
		}
		resp, err := facetApp.Search.TrendAnalysis(cmd.Context(), category)
		return emitSearch(resp, err)
	},
}

var searchMarketCmd = &cobra.Command{
	Use:   "market <topic...>",
	Short: "Search jewelry market information from industry sources",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := facetApp.Search.MarketSearch(cmd.Context(), strings.Join(args, " "))
		return emitSearch(resp, err)
	},
}

var researchSpecs string

var searchResearchCmd = &cobra.Command{
	Use:   "research <product-type...>",
	Short: "Research specifications and quality notes for a product type",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := facetApp.Search.ProductResearch(cmd.Context(), strings.Join(args, " "), researchSpecs)
		return emitSearch(resp, err)
	},
}

var priceBudget string

var searchPriceCmd = &cobra.Command{
	Use:   "price <item...>",
	Short: "Compare pricing for a jewelry item",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := facetApp.Search.PriceComparison(cmd.Context(), strings.Join(args, " "), priceBudget)
		return emitSearch(resp, err)
	},
}

// emitSearch renders a search response, optionally as the plain text the
// chat layer would receive.
func emitSearch(resp *tavily.Response, err error) error {
	if err == nil && searchAsText {
		_, werr := rootCmd.OutOrStdout().Write([]byte(tavily.FormatResults(resp, 2000)))
		return werr
	}
	return emit(fallback.OpSearch, resp, err)
}

func init() {
	searchCmd.PersistentFlags().BoolVar(&searchAsText, "text", false, "render results as plain text")

	searchQueryCmd.Flags().StringVar(&searchDepth, "depth", tavily.DepthBasic, "search depth: basic or advanced")
	searchQueryCmd.Flags().IntVar(&searchMax, "max", 5, "max results")
	searchQueryCmd.Flags().BoolVar(&searchAnswer, "answer", true, "include a generated answer")
	searchQueryCmd.Flags().StringSliceVar(&searchInclude, "include", nil, "restrict to these domains")
	searchQueryCmd.Flags().StringSliceVar(&searchExclude, "exclude", nil, "exclude these domains")

	searchResearchCmd.Flags().StringVar(&researchSpecs, "specs", "", "specification details, ex: \"2 carat VS1\"")
	searchPriceCmd.Flags().StringVar(&priceBudget, "budget", "", "budget context, ex: \"under $5000\"")

	searchCmd.AddCommand(searchQueryCmd, searchTrendsCmd, searchMarketCmd, searchResearchCmd, searchPriceCmd)
	rootCmd.AddCommand(searchCmd)
}
