package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/spielplan/pkg/models"
)

func TestMatchGame(t *testing.T) {
	resolver := NewResolver(testLogger(), DefaultConfig())

	exhibitors := []models.Exhibitor{
		{ID: "e1", Name: "Alpha Games", Hall: models.Hall{Num: 1, Numeric: true}, Booth: "A10"},
		{ID: "e2", Name: "Beta Spiele", Hall: models.Hall{Num: 2, Numeric: true}, Booth: "B20"},
	}

	t.Run("duplicate publishers collapse to one match", func(t *testing.T) {
		game := models.Game{ObjectID: 1, Name: "Some Game", Publishers: []string{"Alpha Games", "alpha games"}}

		result := resolver.MatchGame(context.Background(), game, exhibitors, nil)

		require.Len(t, result.Matches, 1)
		assert.Equal(t, "e1", result.Matches[0].Exhibitor.ID)
		assert.InDelta(t, 1.0, result.Matches[0].Confidence, 0.001)
		assert.Contains(t, result.Matches[0].Reason, "'Alpha Games'")
		assert.Contains(t, result.Matches[0].Reason, ReasonExactMatch)
	})

	t.Run("higher score replaces reason on merge", func(t *testing.T) {
		game := models.Game{ObjectID: 2, Name: "Some Game", Publishers: []string{"Alpha Gamez", "Alpha Games"}}

		result := resolver.MatchGame(context.Background(), game, exhibitors, nil)

		require.Len(t, result.Matches, 1)
		assert.InDelta(t, 1.0, result.Matches[0].Confidence, 0.001)
		assert.Contains(t, result.Matches[0].Reason, ReasonExactMatch)
		assert.Contains(t, result.Matches[0].Reason, "Publisher 'Alpha Games'")
	})

	t.Run("lower score keeps the existing reason", func(t *testing.T) {
		game := models.Game{ObjectID: 3, Name: "Some Game", Publishers: []string{"Alpha Games", "Alpha Gamez"}}

		result := resolver.MatchGame(context.Background(), game, exhibitors, nil)

		require.Len(t, result.Matches, 1)
		assert.InDelta(t, 1.0, result.Matches[0].Confidence, 0.001)
		assert.Contains(t, result.Matches[0].Reason, ReasonExactMatch)
	})

	t.Run("product confirms an existing match without touching the score", func(t *testing.T) {
		game := models.Game{ObjectID: 4, Name: "Alpha Quest", Publishers: []string{"Alpha Games"}}
		products := []models.Product{{Title: "Alpha Quest", CompanyID: "e1"}}

		result := resolver.MatchGame(context.Background(), game, exhibitors, products)

		require.Len(t, result.Matches, 1)
		m := result.Matches[0]
		assert.True(t, m.ProductConfirmed)
		assert.InDelta(t, 1.0, m.Confidence, 0.001)
		assert.Contains(t, m.Reason, ReasonExactMatch)
		assert.Equal(t, "Product 'Alpha Quest' confirmed (100% match)", m.ProductMatchInfo)
	})

	t.Run("product adds a new exhibitor when publishers missed it", func(t *testing.T) {
		game := models.Game{ObjectID: 5, Name: "Gamma Quest"}
		products := []models.Product{{Title: "Gamma Quest", CompanyID: "e2"}}

		result := resolver.MatchGame(context.Background(), game, exhibitors, products)

		require.Len(t, result.Matches, 1)
		m := result.Matches[0]
		assert.Equal(t, "e2", m.Exhibitor.ID)
		assert.True(t, m.ProductConfirmed)
		assert.InDelta(t, 1.0, m.Confidence, 0.001)
		assert.Equal(t, "Game title matched to product by 'Beta Spiele' (100%)", m.Reason)
	})

	t.Run("product whose company is not exhibiting is ignored", func(t *testing.T) {
		game := models.Game{ObjectID: 6, Name: "Gamma Quest"}
		products := []models.Product{{Title: "Gamma Quest", CompanyID: "unknown"}}

		result := resolver.MatchGame(context.Background(), game, exhibitors, products)

		assert.Empty(t, result.Matches)
		assert.False(t, result.IsMatched())
	})

	t.Run("distinct exhibitors keep discovery order", func(t *testing.T) {
		game := models.Game{ObjectID: 7, Name: "Some Game", Publishers: []string{"Beta Spiele", "Alpha Games"}}

		result := resolver.MatchGame(context.Background(), game, exhibitors, nil)

		require.Len(t, result.Matches, 2)
		assert.Equal(t, "e2", result.Matches[0].Exhibitor.ID)
		assert.Equal(t, "e1", result.Matches[1].Exhibitor.ID)
	})
}

func TestMatchAll(t *testing.T) {
	resolver := NewResolver(testLogger(), Config{
		PublisherThreshold: 90,
		ProductThreshold:   85,
		WorkerCount:        2,
	})

	exhibitors := []models.Exhibitor{
		{ID: "e1", Name: "Alpha Games", Hall: models.Hall{Num: 1, Numeric: true}, Booth: "A10"},
		{ID: "e2", Name: "Beta Spiele", Hall: models.Hall{Num: 2, Numeric: true}, Booth: "B20"},
	}

	games := []models.Game{
		{ObjectID: 1, Name: "First", Publishers: []string{"Alpha Games"}},
		{ObjectID: 2, Name: "Second", Publishers: []string{"Nobody Home"}},
		{ObjectID: 3, Name: "Third", Publishers: []string{"Beta Spiele"}},
	}

	matched, unmatched, err := resolver.MatchAll(context.Background(), games, exhibitors, nil)
	require.NoError(t, err)

	require.Len(t, matched, 2)
	assert.Equal(t, 1, matched[0].Game.ObjectID)
	assert.Equal(t, 3, matched[1].Game.ObjectID)

	require.Len(t, unmatched, 1)
	assert.Equal(t, 2, unmatched[0].ObjectID)
}

func TestMatchAllCancelled(t *testing.T) {
	resolver := NewResolver(testLogger(), DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	games := []models.Game{{ObjectID: 1, Name: "First"}}
	_, _, err := resolver.MatchAll(ctx, games, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
