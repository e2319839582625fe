package matching

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Ramsey-B/spielplan/pkg/models"
	"github.com/Ramsey-B/spielplan/pkg/tracing"
)

// matchEvidence is the per-exhibitor aggregation state. Score stays on the
// 0-100 scale until the final ExhibitorMatch is built, so merge comparisons
// never mix scales.
type matchEvidence struct {
	exhibitor        models.Exhibitor
	score            float64
	reason           string
	productConfirmed bool
	productInfo      string
}

// MatchGame resolves every publisher of a game against the exhibitor list
// and confirms its title against the product list. Evidence for the same
// exhibitor merges by keeping the higher score; a product confirmation flags
// an existing match without touching its score, or adds a new match of its
// own. The result holds pairwise-distinct exhibitor IDs in discovery order.
func (r *Resolver) MatchGame(ctx context.Context, game models.Game, exhibitors []models.Exhibitor, products []models.Product) models.GameMatch {
	ctx, span := tracing.StartSpan(ctx, "matching.Resolver.MatchGame")
	defer span.End()

	publisherThreshold := r.cfg.PublisherThreshold
	productThreshold := r.cfg.ProductThreshold

	var order []string
	evidence := make(map[string]matchEvidence)

	for _, publisher := range game.Publishers {
		exhibitor, score, reason := r.ResolvePublisher(ctx, publisher, exhibitors, publisherThreshold)
		if exhibitor == nil {
			continue
		}

		matchReason := fmt.Sprintf("Publisher '%s' matched to '%s' (%s, %.0f%%)", publisher, exhibitor.Name, reason, score)

		existing, seen := evidence[exhibitor.ID]
		if seen {
			if score > existing.score {
				existing.score = score
				existing.reason = matchReason
				evidence[exhibitor.ID] = existing
			}
			continue
		}

		order = append(order, exhibitor.ID)
		evidence[exhibitor.ID] = matchEvidence{
			exhibitor: *exhibitor,
			score:     score,
			reason:    matchReason,
		}
	}

	// Product confirmation finds additional exhibitors or confirms existing ones
	if product, score := r.ConfirmProduct(ctx, game.Name, products, productThreshold); product != nil {
		productInfo := fmt.Sprintf("Product '%s' confirmed (%.0f%% match)", product.Title, score)

		var productExhibitor *models.Exhibitor
		for i := range exhibitors {
			if exhibitors[i].ID == product.CompanyID {
				productExhibitor = &exhibitors[i]
				break
			}
		}

		if productExhibitor != nil {
			if existing, seen := evidence[productExhibitor.ID]; seen {
				existing.productConfirmed = true
				existing.productInfo = productInfo
				evidence[productExhibitor.ID] = existing
			} else {
				order = append(order, productExhibitor.ID)
				evidence[productExhibitor.ID] = matchEvidence{
					exhibitor:        *productExhibitor,
					score:            score,
					reason:           fmt.Sprintf("Game title matched to product by '%s' (%.0f%%)", productExhibitor.Name, score),
					productConfirmed: true,
					productInfo:      productInfo,
				}
			}
		}
	}

	matches := make([]models.ExhibitorMatch, 0, len(order))
	for _, id := range order {
		ev := evidence[id]
		matches = append(matches, models.ExhibitorMatch{
			Exhibitor:        ev.exhibitor,
			Confidence:       ev.score / 100.0,
			Reason:           ev.reason,
			ProductConfirmed: ev.productConfirmed,
			ProductMatchInfo: ev.productInfo,
		})
	}

	return models.GameMatch{Game: game, Matches: matches}
}

// MatchAll fans the games out over a bounded worker pool. The exhibitor and
// product slices are shared read-only snapshots; each game's result lands in
// its input position, so output order is deterministic. Returns the games
// with at least one match and the unmatched rest, both in input order.
func (r *Resolver) MatchAll(ctx context.Context, games []models.Game, exhibitors []models.Exhibitor, products []models.Product) ([]models.GameMatch, []models.Game, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Resolver.MatchAll")
	defer span.End()

	workers := r.cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}

	results := make([]models.GameMatch, len(games))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, game := range games {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.MatchGame(gctx, game, exhibitors, products)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var matched []models.GameMatch
	var unmatched []models.Game
	for i := range results {
		if results[i].IsMatched() {
			matched = append(matched, results[i])
		} else {
			unmatched = append(unmatched, results[i].Game)
		}
	}

	r.log.WithContext(ctx).WithFields(map[string]any{
		"games":     len(games),
		"matched":   len(matched),
		"unmatched": len(unmatched),
	}).Info("Finished matching games")

	return matched, unmatched, nil
}
