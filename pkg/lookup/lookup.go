// Package lookup answers "where is this game at Essen" for a single game:
// enrich it from BGG, then match it against the fetched Essen data.
package lookup

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/spielplan/pkg/bgg"
	"github.com/Ramsey-B/spielplan/pkg/matching"
	"github.com/Ramsey-B/spielplan/pkg/models"
	"github.com/Ramsey-B/spielplan/pkg/pipeline"
	"github.com/Ramsey-B/spielplan/pkg/tracing"
)

// ErrDataUnavailable means the Essen artifacts have not been fetched yet.
var ErrDataUnavailable = errors.New("essen data not available, run the fetch step first")

// Service looks up single games on demand. The Essen snapshot is loaded
// from the artifact store once and reused across lookups.
type Service struct {
	log       ectologger.Logger
	bggClient *bgg.Client
	resolver  *matching.Resolver
	store     *pipeline.ArtifactStore

	mu         sync.Mutex
	loaded     bool
	exhibitors []models.Exhibitor
	products   []models.Product
}

// NewService creates a lookup service.
func NewService(log ectologger.Logger, bggClient *bgg.Client, resolver *matching.Resolver, store *pipeline.ArtifactStore) *Service {
	return &Service{
		log:       log,
		bggClient: bggClient,
		resolver:  resolver,
		store:     store,
	}
}

// Lookup enriches the game from BGG and matches it. The game only needs
// ObjectID set. A failed enrichment is not fatal; matching then runs on
// whatever data the game already carries. Matches come back sorted
// product-confirmed first, then by confidence.
func (s *Service) Lookup(ctx context.Context, game models.Game) (*models.GameMatch, error) {
	ctx, span := tracing.StartSpan(ctx, "lookup.Service.Lookup")
	defer span.End()

	if err := s.bggClient.Enrich(ctx, &game); err != nil {
		s.log.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"object_id": game.ObjectID,
		}).Warn("Failed to enrich game for lookup")
	}

	exhibitors, products, err := s.essenData()
	if err != nil {
		return nil, err
	}

	match := s.resolver.MatchGame(ctx, game, exhibitors, products)

	sort.SliceStable(match.Matches, func(i, j int) bool {
		if match.Matches[i].ProductConfirmed != match.Matches[j].ProductConfirmed {
			return match.Matches[i].ProductConfirmed
		}
		return match.Matches[i].Confidence > match.Matches[j].Confidence
	})

	return &match, nil
}

// Invalidate drops the cached Essen snapshot so the next lookup reloads it.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.exhibitors = nil
	s.products = nil
}

// Ready reports whether the Essen artifacts are loadable.
func (s *Service) Ready() bool {
	_, _, err := s.essenData()
	return err == nil
}

func (s *Service) essenData() ([]models.Exhibitor, []models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.exhibitors, s.products, nil
	}

	exhibitors, err := s.store.LoadExhibitors()
	if err != nil {
		if errors.Is(err, pipeline.ErrArtifactMissing) {
			return nil, nil, ErrDataUnavailable
		}
		return nil, nil, err
	}
	products, err := s.store.LoadProducts()
	if err != nil {
		if errors.Is(err, pipeline.ErrArtifactMissing) {
			return nil, nil, ErrDataUnavailable
		}
		return nil, nil, err
	}

	s.exhibitors = exhibitors
	s.products = products
	s.loaded = true
	return s.exhibitors, s.products, nil
}
