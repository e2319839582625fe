// Package pipeline orchestrates the batch flow: extract the wishlist,
// enrich it from BGG, fetch the Essen directories, match, and build the
// route. Each step writes its result to the artifact store so steps can be
// re-run independently.
package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/spielplan/pkg/bgg"
	"github.com/Ramsey-B/spielplan/pkg/collection"
	"github.com/Ramsey-B/spielplan/pkg/matching"
	"github.com/Ramsey-B/spielplan/pkg/messe"
	"github.com/Ramsey-B/spielplan/pkg/report"
	"github.com/Ramsey-B/spielplan/pkg/route"
	"github.com/Ramsey-B/spielplan/pkg/tracing"
)

// Pipeline wires the steps together.
type Pipeline struct {
	log       ectologger.Logger
	store     *ArtifactStore
	extractor *collection.Extractor
	bggClient *bgg.Client
	messeCli  *messe.Client
	resolver  *matching.Resolver
	planner   *route.Planner
}

// New creates a pipeline.
func New(
	log ectologger.Logger,
	store *ArtifactStore,
	extractor *collection.Extractor,
	bggClient *bgg.Client,
	messeCli *messe.Client,
	resolver *matching.Resolver,
	planner *route.Planner,
) *Pipeline {
	return &Pipeline{
		log:       log,
		store:     store,
		extractor: extractor,
		bggClient: bggClient,
		messeCli:  messeCli,
		resolver:  resolver,
		planner:   planner,
	}
}

// Run executes every step in order. useCache applies to the Essen fetch.
func (p *Pipeline) Run(ctx context.Context, useCache bool) error {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.Run")
	defer span.End()

	runID := uuid.New().String()
	log := p.log.WithContext(ctx).WithFields(map[string]any{"run_id": runID})
	log.Info("Starting pipeline run")

	if err := p.Extract(ctx); err != nil {
		return fmt.Errorf("extract step failed: %w", err)
	}
	if err := p.Enrich(ctx); err != nil {
		return fmt.Errorf("enrich step failed: %w", err)
	}
	if err := p.FetchEssen(ctx, useCache); err != nil {
		return fmt.Errorf("fetch step failed: %w", err)
	}
	if err := p.Match(ctx); err != nil {
		return fmt.Errorf("match step failed: %w", err)
	}
	if err := p.Route(ctx); err != nil {
		return fmt.Errorf("route step failed: %w", err)
	}

	log.Info("Pipeline run complete")
	return nil
}

// Extract reads the collection CSV and saves the target games.
func (p *Pipeline) Extract(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.Extract")
	defer span.End()

	games, filtered, err := p.extractor.TargetGames(ctx)
	if err != nil {
		return err
	}

	if err := p.store.SaveGames(games); err != nil {
		return err
	}

	p.log.WithContext(ctx).WithFields(map[string]any{
		"games":               len(games),
		"expansions_filtered": filtered,
	}).Info("Extract step complete")
	return nil
}

// Enrich fetches publishers and stats from BGG for every extracted game.
// Games whose pages cannot be fetched keep going with what they have; a
// missing publisher list just means no match later.
func (p *Pipeline) Enrich(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.Enrich")
	defer span.End()

	games, err := p.store.LoadGames()
	if err != nil {
		return err
	}

	for i := range games {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.bggClient.Enrich(ctx, &games[i]); err != nil {
			p.log.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"object_id": games[i].ObjectID,
				"name":      games[i].Name,
			}).Warn("Failed to enrich game")
		}

		// Periodic saves make long scrapes resumable from the cache.
		if len(games) > 10 && i%10 == 0 {
			if err := p.store.SaveEnrichedGames(games[:i+1]); err != nil {
				return err
			}
		}
	}

	if err := p.store.SaveEnrichedGames(games); err != nil {
		return err
	}

	p.log.WithContext(ctx).WithFields(map[string]any{"games": len(games)}).Info("Enrich step complete")
	return nil
}

// FetchEssen downloads the exhibitor and product directories.
func (p *Pipeline) FetchEssen(ctx context.Context, useCache bool) error {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.FetchEssen")
	defer span.End()

	exhibitors, err := p.messeCli.FetchExhibitors(ctx, useCache)
	if err != nil {
		return err
	}
	if err := p.store.SaveExhibitors(exhibitors); err != nil {
		return err
	}

	products, err := p.messeCli.FetchProducts(ctx, useCache)
	if err != nil {
		return err
	}
	if err := p.store.SaveProducts(products); err != nil {
		return err
	}

	p.log.WithContext(ctx).WithFields(map[string]any{
		"exhibitors": len(exhibitors),
		"products":   len(products),
		"spiel_year": p.messeCli.Year(),
	}).Info("Fetch step complete")
	return nil
}

// Match resolves the enriched games against the Essen data.
func (p *Pipeline) Match(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.Match")
	defer span.End()

	games, err := p.store.LoadEnrichedGames()
	if err != nil {
		return err
	}
	exhibitors, err := p.store.LoadExhibitors()
	if err != nil {
		return err
	}
	products, err := p.store.LoadProducts()
	if err != nil {
		return err
	}

	matched, unmatched, err := p.resolver.MatchAll(ctx, games, exhibitors, products)
	if err != nil {
		return err
	}

	return p.store.SaveMatchedGames(&MatchedGames{Matched: matched, Unmatched: unmatched})
}

// Route builds the final plan and renders every report format.
func (p *Pipeline) Route(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.Route")
	defer span.End()

	m, err := p.store.LoadMatchedGames()
	if err != nil {
		return err
	}

	routeReport := p.planner.BuildRoute(ctx, m.Matched, m.Unmatched)

	if err := p.store.SaveRouteReport(routeReport); err != nil {
		return err
	}
	if err := p.store.SaveRendered(routeMarkdownFile, []byte(report.Markdown(routeReport))); err != nil {
		return err
	}
	if err := p.store.SaveRendered(routeHTMLFile, []byte(report.HTML(routeReport))); err != nil {
		return err
	}

	var csvBuf bytes.Buffer
	if err := report.WriteCSV(&csvBuf, routeReport); err != nil {
		return fmt.Errorf("failed to render route csv: %w", err)
	}
	if err := p.store.SaveRendered(routeCSVFile, csvBuf.Bytes()); err != nil {
		return err
	}

	p.log.WithContext(ctx).WithFields(map[string]any{
		"stops":     len(routeReport.Stops),
		"matched":   routeReport.MatchedGames,
		"unmatched": len(routeReport.UnmatchedGames),
	}).Info("Route step complete")
	return nil
}
