package models

// ExhibitorMatch links a game to one exhibitor with the evidence that
// produced the link. Confidence is on the [0,1] scale.
type ExhibitorMatch struct {
	Exhibitor        Exhibitor `json:"exhibitor"`
	Confidence       float64   `json:"confidence"`
	Reason           string    `json:"reason"`
	ProductConfirmed bool      `json:"product_confirmed"`
	ProductMatchInfo string    `json:"product_match_info,omitempty"`
}

// GameMatch collects every exhibitor match for one game. Matches hold
// pairwise-distinct exhibitor IDs.
type GameMatch struct {
	Game    Game             `json:"game"`
	Matches []ExhibitorMatch `json:"matches"`
}

// IsMatched reports whether at least one exhibitor was found.
func (m *GameMatch) IsMatched() bool {
	return len(m.Matches) > 0
}

// BestMatch returns the match to visit: the first product-confirmed one,
// otherwise the highest-confidence one. First in list order wins ties.
func (m *GameMatch) BestMatch() *ExhibitorMatch {
	if len(m.Matches) == 0 {
		return nil
	}
	for i := range m.Matches {
		if m.Matches[i].ProductConfirmed {
			return &m.Matches[i]
		}
	}
	best := &m.Matches[0]
	for i := 1; i < len(m.Matches); i++ {
		if m.Matches[i].Confidence > best.Confidence {
			best = &m.Matches[i]
		}
	}
	return best
}
