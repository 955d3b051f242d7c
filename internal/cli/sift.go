package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/wikisift/internal/cache"
	"github.com/ppiankov/wikisift/internal/logging"
	"github.com/ppiankov/wikisift/internal/model"
	"github.com/ppiankov/wikisift/internal/output"
	"github.com/ppiankov/wikisift/internal/pipeline"
	"github.com/ppiankov/wikisift/internal/ratelimit"
	"github.com/ppiankov/wikisift/internal/resolve"
)

// siftFlags maps each sift flag to the config key it overrides.
var siftFlags = map[string]string{
	"out":            "output.path",
	"sqlite":         "output.sqlite_path",
	"progress-every": "output.progress_every",
	"min-sitelinks":  "selection.min_sitelinks",
	"ua":             "http.user_agent",
	"timeout":        "http.timeout",
	"http-proxy":     "http.http_proxy",
	"https-proxy":    "http.https_proxy",
	"rps":            "rate_limiting.requests_per_second",
	"burst":          "rate_limiting.burst_size",
	"pause":          "rate_limiting.rate_limit_pause",
	"respect-robots": "rate_limiting.respect_robots",
	"log-level":      "log.level",
	"log-format":     "log.format",
}

// siftCmd represents the sift command
var siftCmd = &cobra.Command{
	Use:   "sift <dump.json|->",
	Short: "Select quiz-worthy entities from a line-delimited Wikidata dump",
	Long: `Sift reads one Wikidata entity per line and writes the accepted ones.

Each entity is checked, in order, against:
- label and description blocklists
- identity fields (id, enwiki title, a usable date)
- excluded types (taxa) and a minimum sitelink count
- type labels, page views for its era and a page image (Wikimedia APIs)

Use "-" to read from stdin, e.g. a decompressed dump piped through a filter.

Example:
  wikisift sift latest-all.json --out items.json
  bzcat latest-all.json.bz2 | wikisift sift - --sqlite items.db
  wikisift sift dump.json --rps 20 --respect-robots --log-format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSift,
}

func init() {
	rootCmd.AddCommand(siftCmd)

	defaults := model.DefaultConfig()
	f := siftCmd.Flags()

	// Output flags
	f.String("out", defaults.Output.Path, "JSON lines output file (empty disables)")
	f.String("sqlite", "", "also upsert accepted items into this SQLite database")
	f.Int("progress-every", defaults.Output.ProgressEvery, "log a progress line every N records (0 disables)")

	// Selection flags
	f.Int("min-sitelinks", defaults.Selection.MinSitelinks, "minimum number of sitelinks")

	// HTTP flags
	f.String("ua", defaults.HTTP.UserAgent, "HTTP User-Agent")
	f.Duration("timeout", defaults.HTTP.Timeout, "timeout for each API request")
	f.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	f.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// Pacing flags
	f.Float64("rps", defaults.RateLimiting.RequestsPerSecond, "requests per second per API host (0 disables pacing)")
	f.Int("burst", defaults.RateLimiting.BurstSize, "burst size for request pacing")
	f.Duration("pause", defaults.RateLimiting.RateLimitPause, "pause after an HTTP 429 response")
	f.Bool("respect-robots", false, "honor crawl delays from each API host's robots.txt")

	// Logging flags
	f.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	f.String("log-format", defaults.Log.Format, "log format (text, json)")

	for flag, key := range siftFlags {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}
}

func runSift(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if cfg.Output.Verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, closeInput, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer closeInput()

	runID := pipeline.NewRunID()

	sink, err := openSinks(ctx, cfg.Output, runID)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output: %w", closeErr)
		}
	}()

	client := resolve.NewClient(cfg.HTTP,
		resolve.WithLogger(logger),
		resolve.WithRateLimitPause(cfg.RateLimiting.RateLimitPause),
		resolve.WithLimiter(buildLimiter(ctx, cfg, logger)),
	)
	resolver := resolve.NewResolver(client, cfg.API)
	p := pipeline.New(resolver, cache.NewMemoryCache(), cfg.Selection, logger)

	printSiftHeader(args[0], cfg, runID)

	stats, runErr := pipeline.NewRunner(p, sink, runID, cfg.Output.ProgressEvery, logger).Run(ctx, in)
	printSiftSummary(stats, cfg)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("interrupted after %s records: %w", humanize.Comma(int64(stats.Seen)), runErr)
		}
		return runErr
	}
	return nil
}

// openInput opens path for reading, or stdin when path is "-".
func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// openSinks opens every configured output.
func openSinks(ctx context.Context, cfg model.OutputConfig, runID string) (output.MultiSink, error) {
	var sinks output.MultiSink

	if cfg.Path != "" {
		w, err := output.NewJSONLWriter(cfg.Path)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, w)
	}

	if cfg.SQLitePath != "" {
		store, err := output.OpenSQLite(ctx, cfg.SQLitePath, runID)
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
		sinks = append(sinks, store)
	}

	return sinks, nil
}

// buildLimiter returns nil when neither pacing nor robots.txt is requested.
func buildLimiter(ctx context.Context, cfg *model.Config, logger *slog.Logger) *ratelimit.Limiter {
	rl := cfg.RateLimiting
	if rl.RequestsPerSecond <= 0 && !rl.RespectRobots {
		return nil
	}

	rps := rl.RequestsPerSecond
	if rps <= 0 {
		rps = math.MaxFloat64
	}
	limiter := ratelimit.NewLimiter(rps, rl.BurstSize)

	if rl.RespectRobots {
		checker := ratelimit.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
		endpoints := []string{cfg.API.WikidataURL, cfg.API.PageviewsURL, cfg.API.WikipediaURL}
		for host, delay := range ratelimit.ApplyCrawlDelays(ctx, checker, limiter, endpoints) {
			logger.Info("applying crawl delay", slog.String("host", host), slog.Duration("delay", delay))
		}
	}

	return limiter
}

func printSiftHeader(input string, cfg *model.Config, runID string) {
	pacing := "off"
	if cfg.RateLimiting.RequestsPerSecond > 0 {
		pacing = fmt.Sprintf("%g req/s per host", cfg.RateLimiting.RequestsPerSecond)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Wikisift\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Run:          %s\n", runID)
	fmt.Fprintf(os.Stderr, "  Input:        %s\n", input)
	if cfg.Output.Path != "" {
		fmt.Fprintf(os.Stderr, "  Output:       %s\n", cfg.Output.Path)
	}
	if cfg.Output.SQLitePath != "" {
		fmt.Fprintf(os.Stderr, "  SQLite:       %s\n", cfg.Output.SQLitePath)
	}
	fmt.Fprintf(os.Stderr, "  Sitelinks:    >= %d\n", cfg.Selection.MinSitelinks)
	fmt.Fprintf(os.Stderr, "  Pacing:       %s\n", pacing)
	fmt.Fprintf(os.Stderr, "\n")
}

func printSiftSummary(stats pipeline.Stats, cfg *model.Config) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Summary\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Records:      %s\n", humanize.Comma(int64(stats.Seen)))
	fmt.Fprintf(os.Stderr, "  ✓ Accepted:   %s\n", humanize.Comma(int64(stats.Accepted)))
	if stats.Malformed > 0 {
		fmt.Fprintf(os.Stderr, "  ✗ Malformed:  %s\n", humanize.Comma(int64(stats.Malformed)))
	}
	for _, stage := range pipeline.Stages {
		if n := stats.Rejected[stage]; n > 0 {
			fmt.Fprintf(os.Stderr, "  ✗ %-12s %s\n", string(stage)+":", humanize.Comma(int64(n)))
		}
	}
	fmt.Fprintf(os.Stderr, "  Type labels:  %s cached\n", humanize.Comma(int64(stats.CacheSize)))
	fmt.Fprintf(os.Stderr, "  Elapsed:      %v\n", stats.Elapsed.Round(time.Second))
	if cfg.Output.Path != "" {
		fmt.Fprintf(os.Stderr, "\n  Items written to: %s\n", cfg.Output.Path)
	}
	fmt.Fprintf(os.Stderr, "\n")
}
