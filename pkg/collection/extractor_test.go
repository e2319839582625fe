package collection

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/spielplan/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {})
}

const testCSV = `objectname,objectid,rating,own,wanttobuy,wanttoplay,itemtype,average,avgweight,minplayers,maxplayers,playingtime,version_publishers
Ark Nova,342942,8,0,1,0,standalone,8.54,3.74,1,4,150,Feuerland Spiele;Capstone Games;Feuerland Spiele
Brass: Birmingham,224517,0,1,0,1,standalone,8.59,3.87,2,4,120,
Carcassonne: Inns & Cathedrals,822,0,0,0,1,,7.1,2.1,2,6,45,
Cascadia,295947,0,0,0,1,standalone,7.8,1.85,1,4,45,Flatout Games
Not A Game,abc,0,0,0,1,standalone,,,,,,
`

func writeCollection(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collection.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTargetGames(t *testing.T) {
	t.Run("filters and orders buy-first", func(t *testing.T) {
		e := NewExtractor(testLogger(), writeCollection(t, testCSV), false)

		games, filtered, err := e.TargetGames(context.Background())
		require.NoError(t, err)

		// Brass is owned, Carcassonne is an expansion by name, the row with
		// a bad id is skipped entirely.
		assert.Equal(t, 1, filtered)
		require.Len(t, games, 2)
		assert.Equal(t, "Ark Nova", games[0].Name)
		assert.True(t, games[0].WantToBuy)
		assert.Equal(t, "Cascadia", games[1].Name)
		assert.True(t, games[1].WantToPlay)
	})

	t.Run("keeps expansions when configured", func(t *testing.T) {
		e := NewExtractor(testLogger(), writeCollection(t, testCSV), true)

		games, filtered, err := e.TargetGames(context.Background())
		require.NoError(t, err)

		assert.Zero(t, filtered)
		require.Len(t, games, 3)
		assert.Equal(t, "Carcassonne: Inns & Cathedrals", games[1].Name)
	})

	t.Run("parses ratings and stats", func(t *testing.T) {
		e := NewExtractor(testLogger(), writeCollection(t, testCSV), false)

		games, _, err := e.TargetGames(context.Background())
		require.NoError(t, err)

		ark := games[0]
		require.NotNil(t, ark.PersonalRating)
		assert.InDelta(t, 8.0, *ark.PersonalRating, 0.001)
		require.NotNil(t, ark.AverageRating)
		assert.InDelta(t, 8.54, *ark.AverageRating, 0.001)
		require.NotNil(t, ark.PlayingTime)
		assert.Equal(t, 150, *ark.PlayingTime)

		// unrated games export as 0 and must not carry a personal rating
		cascadia := games[1]
		assert.Nil(t, cascadia.PersonalRating)
	})

	t.Run("missing file", func(t *testing.T) {
		e := NewExtractor(testLogger(), filepath.Join(t.TempDir(), "nope.csv"), false)
		_, _, err := e.TargetGames(context.Background())
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		e := NewExtractor(testLogger(), writeCollection(t, ""), false)
		games, filtered, err := e.TargetGames(context.Background())
		require.NoError(t, err)
		assert.Empty(t, games)
		assert.Zero(t, filtered)
	})
}

func TestAllGames(t *testing.T) {
	e := NewExtractor(testLogger(), writeCollection(t, testCSV), false)

	games, err := e.AllGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 4)

	byName := make(map[string]models.Game, len(games))
	for _, g := range games {
		byName[g.Name] = g
	}

	ark := byName["Ark Nova"]
	assert.Equal(t, []string{"Feuerland Spiele", "Capstone Games"}, ark.Publishers)
	assert.False(t, ark.IsExpansion)

	brass := byName["Brass: Birmingham"]
	assert.True(t, brass.Owned)
	assert.False(t, brass.IsExpansion) // itemtype says standalone, the colon does not count

	carcassonne := byName["Carcassonne: Inns & Cathedrals"]
	assert.True(t, carcassonne.IsExpansion)

	// sorted by name
	assert.Equal(t, "Ark Nova", games[0].Name)
	assert.Equal(t, "Cascadia", games[3].Name)
}

func TestSummarize(t *testing.T) {
	e := NewExtractor(testLogger(), writeCollection(t, testCSV), false)

	summary, err := e.Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalCollection)
	assert.Equal(t, 3, summary.WantToPlay)
	assert.Equal(t, 1, summary.WantToBuy)
	assert.Equal(t, 4, summary.TargetGames)
	assert.Equal(t, 1, summary.Owned)
}

func TestIsExpansionName(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected bool
	}{
		{
			name:     "plain title",
			title:    "Cascadia",
			expected: false,
		},
		{
			name:     "explicit keyword",
			title:    "Wingspan European Expansion",
			expected: true,
		},
		{
			name:     "colon subtitle",
			title:    "Carcassonne: Inns & Cathedrals",
			expected: true,
		},
		{
			name:     "dash subtitle",
			title:    "Azul - Crystal Mosaic",
			expected: true,
		},
		{
			name:     "deluxe edition is not an expansion",
			title:    "Brass: Deluxe Edition",
			expected: false,
		},
		{
			name:     "big box collection is not an expansion",
			title:    "Carcassonne: Big Box Collection",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isExpansionName(tt.title))
		})
	}
}

func TestParseVersionPublishers(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{
			name:     "empty",
			raw:      "  ",
			expected: nil,
		},
		{
			name:     "deduped and trimmed",
			raw:      "Feuerland Spiele; Capstone Games ;Feuerland Spiele;",
			expected: []string{"Feuerland Spiele", "Capstone Games"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseVersionPublishers(tt.raw))
		})
	}
}
