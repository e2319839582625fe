package models

import (
	"fmt"
	"strings"
)

// Game is a single BoardGameGeek collection entry with the wishlist flags
// and the metadata the scraper fills in later.
type Game struct {
	ObjectID         int      `json:"object_id"`
	Name             string   `json:"name"`
	WantToPlay       bool     `json:"want_to_play"`
	WantToBuy        bool     `json:"want_to_buy"`
	Owned            bool     `json:"owned,omitempty"`
	IsExpansion      bool     `json:"is_expansion,omitempty"`
	Publishers       []string `json:"publishers"`
	PersonalRating   *float64 `json:"personal_rating,omitempty"`
	AverageRating    *float64 `json:"average_rating,omitempty"`
	ComplexityWeight *float64 `json:"complexity_weight,omitempty"`
	MinPlayers       *int     `json:"min_players,omitempty"`
	MaxPlayers       *int     `json:"max_players,omitempty"`
	PlayingTime      *int     `json:"playing_time,omitempty"`
}

// Priority returns the wishlist bucket used for route ranking. Buy outranks
// play when both flags are set.
func (g *Game) Priority() string {
	if g.WantToBuy {
		return "want_to_buy"
	}
	if g.WantToPlay {
		return "want_to_play"
	}
	return "none"
}

// BGGURL returns the canonical page URL for the game.
func (g *Game) BGGURL() string {
	slug := slugify(g.Name)
	if slug == "" {
		return fmt.Sprintf("https://boardgamegeek.com/boardgame/%d", g.ObjectID)
	}
	return fmt.Sprintf("https://boardgamegeek.com/boardgame/%d/%s", g.ObjectID, slug)
}

// slugify lowercases the name and collapses every non-alphanumeric run
// into a single dash, matching BGG's URL slugs closely enough to resolve.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
