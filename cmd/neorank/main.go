// Command neorank ranks near-Earth objects by risk, either from a saved NeoWs
// feed response or by fetching a window live.
//
// Usage:
//
//	go run ./cmd/neorank -feed internal/adapter/neows/testdata/feed.json -sort risk
//	curl -s "$URL" | go run ./cmd/neorank -feed - -hazardous
//	NEOWS_API_KEY=... go run ./cmd/neorank -start 2026-10-12 -end 2026-10-18 -limit 10
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/neo-risk-service/internal/adapter/neows"
	"github.com/couchcryptid/neo-risk-service/internal/config"
	"github.com/couchcryptid/neo-risk-service/internal/domain"
	"github.com/couchcryptid/neo-risk-service/internal/observability"
)

type options struct {
	feedPath  string
	start     string
	end       string
	sort      string
	query     string
	hazardous bool
	limit     int
	asJSON    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.feedPath, "feed", "", "saved NeoWs feed response (\"-\" for stdin); fetches live when empty")
	flag.StringVar(&opts.start, "start", "", "window start (YYYY-MM-DD) for live fetches")
	flag.StringVar(&opts.end, "end", "", "window end (YYYY-MM-DD) for live fetches")
	flag.StringVar(&opts.sort, "sort", "risk", "sort key: risk, distance, size, velocity")
	flag.StringVar(&opts.query, "q", "", "name or ID filter")
	flag.BoolVar(&opts.hazardous, "hazardous", false, "only potentially hazardous objects")
	flag.IntVar(&opts.limit, "limit", 0, "maximum rows (0 for all)")
	flag.BoolVar(&opts.asJSON, "json", false, "print summaries as JSON")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	key, err := domain.ParseSortKey(opts.sort)
	if err != nil {
		return err
	}

	feed, err := loadFeed(ctx, opts)
	if err != nil {
		return err
	}

	filter := domain.Filter{Query: opts.query, HazardousOnly: opts.hazardous}
	ranked := domain.SortNeos(filter.Apply(feed.Neos), key)
	if opts.limit > 0 && len(ranked) > opts.limit {
		ranked = ranked[:opts.limit]
	}
	summaries := domain.SummarizeAll(ranked)

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}
	return printTable(out, feed, summaries)
}

func loadFeed(ctx context.Context, opts options) (domain.Feed, error) {
	if opts.feedPath == "" {
		return fetchFeed(ctx, opts)
	}

	var r io.Reader = os.Stdin
	if opts.feedPath != "-" {
		f, err := os.Open(opts.feedPath)
		if err != nil {
			return domain.Feed{}, fmt.Errorf("open feed: %w", err)
		}
		defer f.Close()
		r = f
	}

	feed, rejected, err := neows.DecodeFeed(r)
	if err != nil {
		return domain.Feed{}, err
	}
	for _, rej := range rejected {
		fmt.Fprintf(os.Stderr, "skipping record %d of %s: %v\n", rej.Index, rej.Date, rej.Err)
	}
	return feed, nil
}

// fetchFeed reads the window from NeoWs using the service's environment configuration.
func fetchFeed(ctx context.Context, opts options) (domain.Feed, error) {
	cfg, err := config.Load()
	if err != nil {
		return domain.Feed{}, fmt.Errorf("load config: %w", err)
	}
	start, end, err := domain.ParseWindow(opts.start, opts.end, cfg.FeedWindowDays)
	if err != nil {
		return domain.Feed{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.NeoWsTimeout+5*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := neows.NewClient(cfg, observability.NewMetricsForTesting(), logger)
	return client.Feed(ctx, start, end)
}

func printTable(out io.Writer, feed domain.Feed, summaries []domain.NeoSummary) error {
	stats := domain.ComputeStats(feed)
	fmt.Fprintf(out, "%s to %s: %d objects, %d hazardous, closest %s, fastest %s\n\n",
		feed.StartDate, feed.EndDate, stats.Total, stats.HazardousCount, orDash(stats.Closest), stats.Fastest)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tSCORE\tLEVEL\tDISTANCE\tVELOCITY\tDIAMETER\tHAZARDOUS")
	for i, s := range summaries {
		score, level := "-", "-"
		if s.Risk != nil {
			score = strconv.Itoa(s.Risk.Score)
			level = string(s.Risk.Level)
		}
		hazardous := ""
		if s.IsHazardous {
			hazardous = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, s.ID, s.Name, score, level, orDash(s.Distance), orDash(s.Velocity), s.Diameter, hazardous)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
