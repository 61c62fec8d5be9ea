package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stayscout/stayscout/internal/logger"
	"github.com/stayscout/stayscout/internal/output"
	"github.com/stayscout/stayscout/pkg/affiliate"
	"github.com/stayscout/stayscout/pkg/fetcher"
	"github.com/stayscout/stayscout/pkg/judge"
	"github.com/stayscout/stayscout/pkg/llm"
	"github.com/stayscout/stayscout/pkg/pipeline"
	"github.com/stayscout/stayscout/pkg/property"
	"github.com/stayscout/stayscout/pkg/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Compare a listing's price across platforms and owner sites",
	Long: `Search takes a vacation rental listing URL and a stay, profiles the
property, and finds the same property (and comparable ones) elsewhere.

Requires SERPAPI_API_KEY for web search and an LLM API key
(ANTHROPIC_API_KEY or OPENAI_API_KEY) or a local Ollama instance
for listing verification.

Examples:
  stayscout search -u "https://www.airbnb.com/rooms/12345" \
      --check-in 2026-06-01 --check-out 2026-06-06`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	flags := searchCmd.Flags()

	flags.StringP("url", "u", "", "listing URL to compare (required)")
	flags.String("check-in", "", "check-in date (YYYY-MM-DD)")
	flags.String("check-out", "", "check-out date (YYYY-MM-DD)")

	// LLM settings
	flags.StringP("provider", "p", "", "LLM provider: anthropic, openai, ollama (auto-detects from env vars)")
	flags.StringP("model", "m", "", "model name (provider-specific)")
	flags.StringP("api-key", "k", "", "LLM API key (or use env var)")
	flags.String("serpapi-key", "", "SerpAPI key (or use SERPAPI_API_KEY)")

	// Fetch settings
	flags.String("fetch-mode", "static", "fetch mode: static, dynamic")
	flags.Duration("timeout", 30*time.Second, "request timeout")

	// Pipeline settings
	flags.String("pipeline-config", "", "pipeline tuning file (YAML)")
	flags.Int("exact-threshold", 90, "similarity score treated as the same property")
	flags.Bool("no-image-search", false, "skip reverse image search")
	flags.Bool("no-owner-search", false, "skip the owner website hunt")
	flags.Bool("no-prices", false, "skip per-candidate price lookups")

	// Output settings
	flags.StringP("output", "o", "", "write full results to this file")
	flags.String("format", "json", "output format: json, yaml")

	_ = searchCmd.MarkFlagRequired("url")

	_ = viper.BindPFlag("provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("model", flags.Lookup("model"))
	_ = viper.BindPFlag("api_key", flags.Lookup("api-key"))
	_ = viper.BindPFlag("serpapi_key", flags.Lookup("serpapi-key"))
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	listingURL, _ := cmd.Flags().GetString("url")
	stay, err := parseStay(cmd)
	if err != nil {
		logError("%v", err)
		return err
	}

	// Judge
	j, err := buildJudge()
	if err != nil {
		logError("%v", err)
		return err
	}

	// Search
	serpKey := viper.GetString("serpapi_key")
	searcher, err := search.NewSerpAPIClient(serpKey)
	if err != nil {
		logError("web search unavailable: %v (set SERPAPI_API_KEY)", err)
		return err
	}

	// Fetcher
	f, err := buildFetcher(cmd)
	if err != nil {
		logError("%v", err)
		return err
	}
	defer func() { _ = f.Close() }()

	opts, err := pipelineOptions(cmd)
	if err != nil {
		logError("%v", err)
		return err
	}

	p, err := pipeline.New(pipeline.Deps{
		Judge:         j,
		Searcher:      searcher,
		ImageSearcher: searcher,
		Fetcher:       f,
		Linker:        affiliate.New(affiliateConfig()),
	}, opts...)
	if err != nil {
		logError("%v", err)
		return err
	}

	logInfo("Comparing %s for %d night(s)...", listingURL, stay.Nights())

	result, err := p.Run(ctx, listingURL, stay)
	if err != nil {
		logError("comparison failed: %v", err)
		return err
	}

	printSummary(result)

	if outPath, _ := cmd.Flags().GetString("output"); outPath != "" {
		formatStr, _ := cmd.Flags().GetString("format")
		if err := writeResult(outPath, output.Format(formatStr), result); err != nil {
			logError("failed to write results: %v", err)
			return err
		}
		logInfo("Full results written to %s", outPath)
	}
	return nil
}

func parseStay(cmd *cobra.Command) (property.Stay, error) {
	checkInStr, _ := cmd.Flags().GetString("check-in")
	checkOutStr, _ := cmd.Flags().GetString("check-out")
	if checkInStr == "" || checkOutStr == "" {
		return property.Stay{}, fmt.Errorf("both --check-in and --check-out are required")
	}

	checkIn, err := time.Parse("2006-01-02", checkInStr)
	if err != nil {
		return property.Stay{}, fmt.Errorf("invalid check-in date %q: %w", checkInStr, err)
	}
	checkOut, err := time.Parse("2006-01-02", checkOutStr)
	if err != nil {
		return property.Stay{}, fmt.Errorf("invalid check-out date %q: %w", checkOutStr, err)
	}
	if !checkOut.After(checkIn) {
		return property.Stay{}, fmt.Errorf("check-out must be after check-in")
	}
	return property.Stay{CheckIn: checkIn, CheckOut: checkOut}, nil
}

func buildJudge() (judge.Judge, error) {
	providerName := viper.GetString("provider")
	apiKey := viper.GetString("api_key")
	if providerName == "" {
		providerName, apiKey = llm.DetectProvider()
	}
	if providerName == "" {
		return nil, fmt.Errorf("no LLM provider available: set ANTHROPIC_API_KEY or OPENAI_API_KEY, or run Ollama locally")
	}

	cfg := llm.DefaultProviderConfig()
	cfg.APIKey = apiKey
	if model := viper.GetString("model"); model != "" {
		cfg.Model = model
	}

	provider, err := llm.NewProvider(providerName, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", providerName, err)
	}
	logger.Debug("judge provider ready", "provider", provider.Name(), "model", provider.Model())

	return judge.New(provider, judge.DefaultConfig())
}

func buildFetcher(cmd *cobra.Command) (fetcher.Fetcher, error) {
	mode, _ := cmd.Flags().GetString("fetch-mode")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	switch mode {
	case "dynamic":
		cfg := fetcher.DefaultDynamicConfig()
		cfg.Timeout = timeout
		return fetcher.NewDynamic(cfg)
	case "static", "":
		cfg := fetcher.DefaultStaticConfig()
		cfg.Timeout = timeout
		return fetcher.NewStatic(cfg), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s (use 'static' or 'dynamic')", mode)
	}
}

func pipelineOptions(cmd *cobra.Command) ([]pipeline.Option, error) {
	var opts []pipeline.Option

	if path, _ := cmd.Flags().GetString("pipeline-config"); path != "" {
		fileOpts, err := pipeline.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fileOpts...)
	}

	if threshold, _ := cmd.Flags().GetInt("exact-threshold"); threshold != 90 {
		opts = append(opts, pipeline.WithExactThreshold(threshold))
	}
	if noImage, _ := cmd.Flags().GetBool("no-image-search"); noImage {
		opts = append(opts, pipeline.WithImageSearch(false))
	}
	if noOwner, _ := cmd.Flags().GetBool("no-owner-search"); noOwner {
		opts = append(opts, pipeline.WithOwnerSearch(false))
	}
	if noPrices, _ := cmd.Flags().GetBool("no-prices"); noPrices {
		opts = append(opts, pipeline.WithPriceLookup(false))
	}
	return opts, nil
}

func affiliateConfig() affiliate.Config {
	return affiliate.Config{
		BookingAID:    viper.GetString("affiliate.booking_aid"),
		VrboID:        viper.GetString("affiliate.vrbo_id"),
		TripadvisorID: viper.GetString("affiliate.tripadvisor_id"),
		HotelsID:      viper.GetString("affiliate.hotels_id"),
		ExpediaID:     viper.GetString("affiliate.expedia_id"),
	}
}

func printSummary(result *pipeline.Result) {
	if result.Profile != nil {
		fmt.Printf("\n%s\n", result.Profile.Title)
		if loc := result.Profile.LocationString(); loc != "" {
			fmt.Printf("  %s\n", loc)
		}
	}

	if result.BestDeal != nil {
		deal := result.BestDeal
		fmt.Printf("\nBest deal: %s\n", deal.BookingURL)
		if deal.Quote.TotalCost != nil {
			fmt.Printf("  Total: %.2f %s\n", *deal.Quote.TotalCost, deal.Quote.Currency)
		}
		if deal.Savings != nil && *deal.Savings > 0 {
			fmt.Printf("  Savings: %.2f vs the original listing\n", *deal.Savings)
		}
	}

	printBucket("Owner direct", result.OwnerDirect)
	printBucket("Exact matches", result.ExactMatches)
	printBucket("Similar properties", result.Similar)

	fmt.Printf("\nSearched %d candidates, verified %d\n",
		result.Stats.CandidatesSearched, result.Stats.CandidatesVerified)
	if len(result.Errors) > 0 {
		fmt.Printf("%d candidate(s) could not be checked\n", len(result.Errors))
	}
}

func printBucket(label string, items []pipeline.RankedResult) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s (%d):\n", label, len(items))
	for _, item := range items {
		price := "price unavailable"
		if item.Quote.TotalCost != nil {
			price = fmt.Sprintf("%.2f %s total", *item.Quote.TotalCost, item.Quote.Currency)
		}
		fmt.Printf("  [%3d] %s - %s\n", item.Score, item.BookingURL, price)
	}
}

func writeResult(path string, format output.Format, result *pipeline.Result) error {
	f, err := os.Create(path) //#nosec G304 -- CLI tool writes to user-specified output file
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w, err := output.NewWriter(f, format)
	if err != nil {
		return err
	}
	if err := w.Write(result); err != nil {
		return err
	}
	return w.Close()
}
