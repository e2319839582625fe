// Command spielplan plans a route through Essen Spiel for a BoardGameGeek
// wishlist: extract the collection, enrich it from BGG, fetch the fair's
// exhibitor data, match, and build the route. Steps run individually or all
// at once, and `serve` exposes the lookup API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/spielplan/config"
	"github.com/Ramsey-B/spielplan/internal/repositories/pagecache"
	"github.com/Ramsey-B/spielplan/pkg/bgg"
	"github.com/Ramsey-B/spielplan/pkg/collection"
	"github.com/Ramsey-B/spielplan/pkg/logging"
	"github.com/Ramsey-B/spielplan/pkg/lookup"
	"github.com/Ramsey-B/spielplan/pkg/matching"
	"github.com/Ramsey-B/spielplan/pkg/messe"
	"github.com/Ramsey-B/spielplan/pkg/models"
	"github.com/Ramsey-B/spielplan/pkg/pipeline"
	"github.com/Ramsey-B/spielplan/pkg/route"
	"github.com/Ramsey-B/spielplan/pkg/routes/health"
	"github.com/Ramsey-B/spielplan/pkg/routes/plan"
	"github.com/Ramsey-B/spielplan/pkg/routes/search"
	"github.com/Ramsey-B/spielplan/pkg/routes/where"
	"github.com/Ramsey-B/spielplan/pkg/server"
	"github.com/Ramsey-B/spielplan/pkg/tracing"
)

const version = "1.0.0"

// app holds everything the subcommands share.
type app struct {
	cfg      *config.Config
	log      ectologger.Logger
	cache    *pagecache.Repository
	store    *pipeline.ArtifactStore
	pipeline *pipeline.Pipeline
	lookup   *lookup.Service
	bgg      *bgg.Client
	shutdown func(context.Context) error
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogLevel, cfg.PrettyLogs)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	shutdown := tracing.Init(cfg.AppName)

	cache, err := pagecache.Open(cfg.CacheDBPath, time.Duration(cfg.CacheTTLHours)*time.Hour, log)
	if err != nil {
		return nil, err
	}

	store := pipeline.NewArtifactStore(cfg.DataDir)
	extractor := collection.NewExtractor(log, cfg.CollectionPath, cfg.IncludeExpansions)

	bggClient := bgg.NewClient(log, cache, bgg.Config{
		BaseURL:      cfg.BGGBaseURL,
		RequestDelay: time.Duration(cfg.BGGRequestDelayMS) * time.Millisecond,
		Timeout:      time.Duration(cfg.BGGTimeoutSeconds) * time.Second,
	})
	messeClient := messe.NewClient(log, cache, messe.Config{
		BaseURL: cfg.EssenBaseURL,
		Timeout: time.Duration(cfg.EssenTimeoutSeconds) * time.Second,
	})

	// Batch runs use the stricter threshold; the lookup API keeps the
	// looser default so one-off queries surface more candidates.
	batchResolver := matching.NewResolver(log, matching.Config{
		PublisherThreshold: cfg.BatchPublisherThreshold,
		ProductThreshold:   cfg.ProductThreshold,
		WorkerCount:        cfg.MatchWorkerCount,
	})
	lookupResolver := matching.NewResolver(log, matching.Config{
		PublisherThreshold: cfg.PublisherThreshold,
		ProductThreshold:   cfg.ProductThreshold,
		WorkerCount:        1,
	})

	planner := route.NewPlanner(log)

	return &app{
		cfg:      cfg,
		log:      log,
		cache:    cache,
		store:    store,
		pipeline: pipeline.New(log, store, extractor, bggClient, messeClient, batchResolver, planner),
		lookup:   lookup.NewService(log, bggClient, lookupResolver, store),
		bgg:      bggClient,
		shutdown: shutdown,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.cache.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close page cache")
	}
	if err := a.shutdown(ctx); err != nil {
		a.log.WithError(err).Warn("Failed to shut down tracing")
	}
}

func main() {
	var noCache bool

	root := &cobra.Command{
		Use:           "spielplan",
		Short:         "Plan a route through Essen Spiel for a BGG wishlist",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&noCache, "no-cache", false, "force fresh fetches, ignoring cached pages")

	withApp := func(run func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			return run(ctx, a)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "extract",
			Short: "Extract target games from the collection CSV",
			RunE: withApp(func(ctx context.Context, a *app) error {
				return a.pipeline.Extract(ctx)
			}),
		},
		&cobra.Command{
			Use:   "enrich",
			Short: "Fetch publishers and stats from BGG for the extracted games",
			RunE: withApp(func(ctx context.Context, a *app) error {
				return a.pipeline.Enrich(ctx)
			}),
		},
		&cobra.Command{
			Use:   "fetch",
			Short: "Fetch Essen Spiel exhibitor and product data",
			RunE: withApp(func(ctx context.Context, a *app) error {
				return a.pipeline.FetchEssen(ctx, !noCache)
			}),
		},
		&cobra.Command{
			Use:   "match",
			Short: "Match enriched games against the Essen data",
			RunE: withApp(func(ctx context.Context, a *app) error {
				return a.pipeline.Match(ctx)
			}),
		},
		&cobra.Command{
			Use:   "route",
			Short: "Build the route and render the reports",
			RunE: withApp(func(ctx context.Context, a *app) error {
				return a.pipeline.Route(ctx)
			}),
		},
		&cobra.Command{
			Use:   "run",
			Short: "Run every pipeline step in order",
			RunE: withApp(func(ctx context.Context, a *app) error {
				return a.pipeline.Run(ctx, !noCache)
			}),
		},
	)

	root.AddCommand(&cobra.Command{
		Use:   "where <id-or-url>",
		Short: "Look up where a single game is at Essen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			objectID, err := parseGameArg(args[0])
			if err != nil {
				return err
			}

			match, err := a.lookup.Lookup(ctx, models.Game{ObjectID: objectID})
			if err != nil {
				return err
			}

			printMatch(cmd, match)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the lookup API",
		RunE: withApp(func(ctx context.Context, a *app) error {
			checker := health.NewChecker(a.cache, a.lookup.Ready, version)

			srv := server.New(a.cfg, a.log,
				checker,
				where.NewHandler(a.log, a.lookup),
				search.NewHandler(a.log, a.bgg),
				plan.NewHandler(a.log, a.store),
			)
			checker.SetReady(true)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}),
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// parseGameArg accepts either a bare BGG object ID or a game page URL.
func parseGameArg(arg string) (int, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		if id <= 0 {
			return 0, fmt.Errorf("game id must be positive, got %d", id)
		}
		return id, nil
	}
	if id, ok := bgg.ParseURL(arg); ok {
		return id, nil
	}
	return 0, fmt.Errorf("could not parse %q as a BGG game id or URL", arg)
}

func printMatch(cmd *cobra.Command, match *models.GameMatch) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s (%s)\n", match.Game.Name, match.Game.BGGURL())
	if !match.IsMatched() {
		fmt.Fprintln(out, "  No exhibitors found at Essen")
		return
	}

	for _, em := range match.Matches {
		confirmed := ""
		if em.ProductConfirmed {
			confirmed = " [confirmed]"
		}
		fmt.Fprintf(out, "  %s (%s)%s\n", em.Exhibitor.Name, em.Exhibitor.Location(), confirmed)
		fmt.Fprintf(out, "    %s\n", em.Reason)
		if em.ProductMatchInfo != "" {
			fmt.Fprintf(out, "    %s\n", em.ProductMatchInfo)
		}
	}
}
