package matching

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/spielplan/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {})
}

func testExhibitors() []models.Exhibitor {
	return []models.Exhibitor{
		{ID: "e1", Name: "Kosmos", Hall: models.Hall{Num: 3, Numeric: true}, Booth: "A10"},
		{ID: "e2", Name: "Rio Grande Games", Hall: models.Hall{Num: 1, Numeric: true}, Booth: "B20"},
		{ID: "e3", Name: "Heidelberger Spieleverlag", Info: "Czech Games Edition (CGE) distribution partner", Hall: models.Hall{Num: 2, Numeric: true}, Booth: "C30"},
		{ID: "e4", Name: "Asmodee Holding", Info: "distributor of lookaut spiele titles", Hall: models.Hall{Num: 4, Numeric: true}, Booth: "D40"},
	}
}

func TestResolvePublisher(t *testing.T) {
	resolver := NewResolver(testLogger(), DefaultConfig())
	exhibitors := testExhibitors()

	tests := []struct {
		name           string
		publisher      string
		expectedID     string
		expectedReason string
		expectedScore  float64
	}{
		{
			name:           "exact name match ignores case",
			publisher:      "KOSMOS",
			expectedID:     "e1",
			expectedReason: ReasonExactMatch,
			expectedScore:  100,
		},
		{
			name:           "abbreviation found in info text",
			publisher:      "CGE",
			expectedID:     "e3",
			expectedReason: ReasonInfoMatch,
			expectedScore:  100,
		},
		{
			name:           "fuzzy name match",
			publisher:      "Rio Grand Games",
			expectedID:     "e2",
			expectedReason: ReasonFuzzyMatch,
			expectedScore:  93.75,
		},
		{
			name:           "fuzzy info match without containment",
			publisher:      "Lookout",
			expectedID:     "e4",
			expectedReason: ReasonInfoFuzzyMatch,
			expectedScore:  85.71,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exhibitor, score, reason := resolver.ResolvePublisher(context.Background(), tt.publisher, exhibitors, 80)
			require.NotNil(t, exhibitor)
			assert.Equal(t, tt.expectedID, exhibitor.ID)
			assert.Equal(t, tt.expectedReason, reason)
			assert.InDelta(t, tt.expectedScore, score, 0.01)
		})
	}

	t.Run("no match below threshold", func(t *testing.T) {
		exhibitor, score, reason := resolver.ResolvePublisher(context.Background(), "Xyzzy Verlag", exhibitors, 80)
		assert.Nil(t, exhibitor)
		assert.Zero(t, score)
		assert.Equal(t, ReasonNoMatch, reason)
	})

	t.Run("empty exhibitor list", func(t *testing.T) {
		exhibitor, _, reason := resolver.ResolvePublisher(context.Background(), "Kosmos", nil, 80)
		assert.Nil(t, exhibitor)
		assert.Equal(t, ReasonNoMatch, reason)
	})

	t.Run("exhibitors without names are skipped", func(t *testing.T) {
		unnamed := []models.Exhibitor{{ID: "blank"}, {ID: "ok", Name: "Kosmos"}}
		exhibitor, _, reason := resolver.ResolvePublisher(context.Background(), "Kosmos", unnamed, 80)
		require.NotNil(t, exhibitor)
		assert.Equal(t, "ok", exhibitor.ID)
		assert.Equal(t, ReasonExactMatch, reason)
	})
}

func TestConfirmProduct(t *testing.T) {
	resolver := NewResolver(testLogger(), DefaultConfig())
	products := []models.Product{
		{Title: "Ark Nova: Marine Worlds", CompanyID: "e1"},
		{Title: "Dune: Imperium", CompanyID: "e2"},
	}

	t.Run("exact title match ignores case", func(t *testing.T) {
		product, score := resolver.ConfirmProduct(context.Background(), "dune: imperium", products, 85)
		require.NotNil(t, product)
		assert.Equal(t, "e2", product.CompanyID)
		assert.InDelta(t, 100, score, 0.01)
	})

	t.Run("fuzzy title match ignores punctuation", func(t *testing.T) {
		product, score := resolver.ConfirmProduct(context.Background(), "Ark Nova Marine Worlds", products, 85)
		require.NotNil(t, product)
		assert.Equal(t, "e1", product.CompanyID)
		assert.InDelta(t, 100, score, 0.01)
	})

	t.Run("no match below threshold", func(t *testing.T) {
		product, score := resolver.ConfirmProduct(context.Background(), "Catan", products, 85)
		assert.Nil(t, product)
		assert.Zero(t, score)
	})

	t.Run("empty product list", func(t *testing.T) {
		product, _ := resolver.ConfirmProduct(context.Background(), "Catan", nil, 85)
		assert.Nil(t, product)
	})
}
