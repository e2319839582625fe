// Package matching resolves BGG publisher names against the Essen exhibitor
// directory and confirms game titles against announced products. Matching is
// evidence-ordered: cheap exact checks run before fuzzy ones, and the first
// pass that clears the threshold wins.
package matching

import (
	"context"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/spielplan/pkg/models"
	"github.com/Ramsey-B/spielplan/pkg/tracing"
)

// Match reason tags, in resolution order.
const (
	ReasonExactMatch     = "exact_match"
	ReasonInfoMatch      = "info_match"
	ReasonFuzzyMatch     = "fuzzy_match"
	ReasonInfoFuzzyMatch = "info_fuzzy_match"
	ReasonNoMatch        = "no_match"
)

// Config contains configuration for the resolver. Thresholds are on the
// 0-100 scale.
type Config struct {
	PublisherThreshold float64 // Minimum score for a publisher/exhibitor match (default: 80)
	ProductThreshold   float64 // Minimum score for a title/product match (default: 85)
	WorkerCount        int     // Concurrent games in MatchAll (default: 4)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PublisherThreshold: 80,
		ProductThreshold:   85,
		WorkerCount:        4,
	}
}

// Resolver matches publishers to exhibitors and game titles to products.
type Resolver struct {
	log    ectologger.Logger
	scorer *Scorer
	cfg    Config
}

// NewResolver creates a new resolver.
func NewResolver(log ectologger.Logger, cfg Config) *Resolver {
	return &Resolver{
		log:    log,
		scorer: NewScorer(),
		cfg:    cfg,
	}
}

// ResolvePublisher finds the exhibitor for a publisher name. Passes run in
// order: exact name equality, publisher contained in an exhibitor's info
// text (catches abbreviations like CGE), fuzzy name match, and finally a
// fuzzy scan of the info texts. Returns nil with ReasonNoMatch when no pass
// clears the threshold.
func (r *Resolver) ResolvePublisher(ctx context.Context, publisher string, exhibitors []models.Exhibitor, threshold float64) (*models.Exhibitor, float64, string) {
	ctx, span := tracing.StartSpan(ctx, "matching.Resolver.ResolvePublisher")
	defer span.End()

	pubLower := strings.ToLower(publisher)

	// Exact match on name
	for i := range exhibitors {
		if exhibitors[i].Name == "" {
			continue
		}
		if pubLower == strings.ToLower(exhibitors[i].Name) {
			return &exhibitors[i], 100, ReasonExactMatch
		}
	}

	// Publisher appears verbatim in the exhibitor's info text
	for i := range exhibitors {
		info := strings.ToLower(exhibitors[i].Info)
		if info == "" || !strings.Contains(info, pubLower) {
			continue
		}
		score := r.scorer.PartialRatio(pubLower, info)
		if score >= threshold {
			return &exhibitors[i], score, ReasonInfoMatch
		}
	}

	// Fuzzy match on names
	names := make([]string, len(exhibitors))
	for i := range exhibitors {
		names[i] = exhibitors[i].Name
	}
	if best, ok := r.scorer.ExtractOne(publisher, names); ok && best.Score >= threshold {
		return &exhibitors[best.Index], best.Score, ReasonFuzzyMatch
	}

	// Fuzzy scan of the info texts, no containment required
	for i := range exhibitors {
		if exhibitors[i].Info == "" {
			continue
		}
		score := r.scorer.PartialRatio(pubLower, strings.ToLower(exhibitors[i].Info))
		if score >= threshold {
			return &exhibitors[i], score, ReasonInfoFuzzyMatch
		}
	}

	r.log.WithContext(ctx).WithFields(map[string]any{"publisher": publisher}).Debug("No exhibitor match for publisher")
	return nil, 0, ReasonNoMatch
}

// ConfirmProduct finds the announced product for a game title: exact title
// equality first, then the best fuzzy title match above the threshold.
func (r *Resolver) ConfirmProduct(ctx context.Context, title string, products []models.Product, threshold float64) (*models.Product, float64) {
	_, span := tracing.StartSpan(ctx, "matching.Resolver.ConfirmProduct")
	defer span.End()

	titleLower := strings.ToLower(title)

	for i := range products {
		if products[i].Title == "" {
			continue
		}
		if titleLower == strings.ToLower(products[i].Title) {
			return &products[i], 100
		}
	}

	titles := make([]string, len(products))
	for i := range products {
		titles[i] = products[i].Title
	}
	if best, ok := r.scorer.ExtractOne(title, titles); ok && best.Score >= threshold {
		return &products[best.Index], best.Score
	}

	return nil, 0
}
