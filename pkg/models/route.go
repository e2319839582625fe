package models

import "time"

// RouteStop is one booth to visit and the games to look for there.
type RouteStop struct {
	Hall      Hall      `json:"hall"`
	Booth     string    `json:"booth"`
	Exhibitor Exhibitor `json:"exhibitor"`
	Games     []Game    `json:"games"`
}

// PriorityScore ranks a stop by how much of the wishlist it covers.
// A buy is worth 10, a play 5; a game flagged both counts in both sums.
func (s *RouteStop) PriorityScore() int {
	score := 0
	for _, g := range s.Games {
		if g.WantToBuy {
			score += 10
		}
		if g.WantToPlay {
			score += 5
		}
	}
	return score
}

// RouteReport is the final plan: ordered stops plus the games that could
// not be placed anywhere.
type RouteReport struct {
	TotalGames     int         `json:"total_games"`
	MatchedGames   int         `json:"matched_games"`
	UnmatchedGames []Game      `json:"unmatched_games"`
	Stops          []RouteStop `json:"stops"`
	GeneratedAt    time.Time   `json:"generated_at"`
}
