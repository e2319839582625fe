// Package route turns matched games into an ordered booth-visiting plan.
package route

import (
	"context"
	"sort"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/spielplan/pkg/models"
	"github.com/Ramsey-B/spielplan/pkg/tracing"
)

// Planner groups matched games by booth and ranks the stops.
type Planner struct {
	log ectologger.Logger
}

// NewPlanner creates a new planner.
func NewPlanner(log ectologger.Logger) *Planner {
	return &Planner{log: log}
}

// stopKey identifies one exhibitor at one location. Exhibitors with several
// booths produce one key per location.
type stopKey struct {
	hall        models.Hall
	booth       string
	exhibitorID string
}

// BuildRoute assigns each game to its best match, groups the games by hall,
// booth, and exhibitor, and orders the stops by priority score descending,
// then hall (numbered halls before labeled ones), then booth. Games keep
// their discovery order inside a stop.
func (p *Planner) BuildRoute(ctx context.Context, matches []models.GameMatch, unmatched []models.Game) *models.RouteReport {
	ctx, span := tracing.StartSpan(ctx, "route.Planner.BuildRoute")
	defer span.End()

	var order []stopKey
	grouped := make(map[stopKey]*models.RouteStop)

	matchedCount := 0
	for i := range matches {
		best := matches[i].BestMatch()
		if best == nil {
			continue
		}
		matchedCount++

		key := stopKey{
			hall:        best.Exhibitor.Hall,
			booth:       best.Exhibitor.Booth,
			exhibitorID: best.Exhibitor.ID,
		}

		stop, ok := grouped[key]
		if !ok {
			stop = &models.RouteStop{
				Hall:      best.Exhibitor.Hall,
				Booth:     best.Exhibitor.Booth,
				Exhibitor: best.Exhibitor,
			}
			grouped[key] = stop
			order = append(order, key)
		}
		stop.Games = append(stop.Games, matches[i].Game)
	}

	stops := make([]models.RouteStop, 0, len(order))
	for _, key := range order {
		stops = append(stops, *grouped[key])
	}

	sort.SliceStable(stops, func(i, j int) bool {
		pi, pj := stops[i].PriorityScore(), stops[j].PriorityScore()
		if pi != pj {
			return pi > pj
		}
		if stops[i].Hall != stops[j].Hall {
			return stops[i].Hall.Less(stops[j].Hall)
		}
		return stops[i].Booth < stops[j].Booth
	})

	p.log.WithContext(ctx).WithFields(map[string]any{
		"stops":     len(stops),
		"matched":   matchedCount,
		"unmatched": len(unmatched),
	}).Info("Built route")

	return &models.RouteReport{
		TotalGames:     len(matches) + len(unmatched),
		MatchedGames:   matchedCount,
		UnmatchedGames: unmatched,
		Stops:          stops,
		GeneratedAt:    time.Now().UTC(),
	}
}
