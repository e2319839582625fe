// Package collection reads a BoardGameGeek collection CSV export and
// selects the games worth hunting for at the fair.
package collection

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/spielplan/pkg/models"
	"github.com/Ramsey-B/spielplan/pkg/tracing"
)

// Extractor reads games out of a collection CSV export.
type Extractor struct {
	log               ectologger.Logger
	path              string
	includeExpansions bool
}

// NewExtractor creates a new extractor for the given CSV path.
func NewExtractor(log ectologger.Logger, path string, includeExpansions bool) *Extractor {
	return &Extractor{
		log:               log,
		path:              path,
		includeExpansions: includeExpansions,
	}
}

// Summary holds collection-wide counts for reporting.
type Summary struct {
	TotalCollection int `json:"total_collection"`
	WantToPlay      int `json:"want_to_play"`
	WantToBuy       int `json:"want_to_buy"`
	TargetGames     int `json:"target_games"`
	Owned           int `json:"owned"`
}

// TargetGames returns the games flagged want-to-play or want-to-buy that are
// not owned, buy-first then by name. Expansions are filtered out unless the
// extractor was configured to keep them; the second return value is how many
// were dropped.
func (e *Extractor) TargetGames(ctx context.Context) ([]models.Game, int, error) {
	ctx, span := tracing.StartSpan(ctx, "collection.Extractor.TargetGames")
	defer span.End()

	rows, err := e.readAll()
	if err != nil {
		return nil, 0, err
	}

	var games []models.Game
	expansionsFiltered := 0
	for _, row := range rows {
		if !row.wantToPlay && !row.wantToBuy {
			continue
		}
		if row.owned {
			continue
		}
		if !e.includeExpansions && isExpansionName(row.name) {
			expansionsFiltered++
			continue
		}
		games = append(games, row.toGame())
	}

	sort.SliceStable(games, func(i, j int) bool {
		if games[i].WantToBuy != games[j].WantToBuy {
			return games[i].WantToBuy
		}
		return games[i].Name < games[j].Name
	})

	e.log.WithContext(ctx).WithFields(map[string]any{
		"games":               len(games),
		"expansions_filtered": expansionsFiltered,
	}).Info("Extracted target games from collection")

	return games, expansionsFiltered, nil
}

// AllGames returns every game in the collection with expansions marked,
// ordered by name. Version publishers from the export prepopulate the
// publisher list so some games skip the scraping step entirely.
func (e *Extractor) AllGames(ctx context.Context) ([]models.Game, error) {
	_, span := tracing.StartSpan(ctx, "collection.Extractor.AllGames")
	defer span.End()

	rows, err := e.readAll()
	if err != nil {
		return nil, err
	}

	games := make([]models.Game, 0, len(rows))
	for _, row := range rows {
		g := row.toGame()
		g.Owned = row.owned
		g.Publishers = parseVersionPublishers(row.versionPublishers)
		switch {
		case row.itemType == "expansion":
			g.IsExpansion = true
		case row.itemType == "":
			g.IsExpansion = isExpansionName(row.name)
		}
		games = append(games, g)
	}

	sort.SliceStable(games, func(i, j int) bool { return games[i].Name < games[j].Name })
	return games, nil
}

// Summarize counts the collection buckets.
func (e *Extractor) Summarize(ctx context.Context) (*Summary, error) {
	_, span := tracing.StartSpan(ctx, "collection.Extractor.Summarize")
	defer span.End()

	rows, err := e.readAll()
	if err != nil {
		return nil, err
	}

	s := &Summary{TotalCollection: len(rows)}
	for _, row := range rows {
		if row.wantToPlay {
			s.WantToPlay++
		}
		if row.wantToBuy {
			s.WantToBuy++
		}
		if row.wantToPlay || row.wantToBuy {
			s.TargetGames++
		}
		if row.owned {
			s.Owned++
		}
	}
	return s, nil
}

// record is one CSV row with the columns spielplan cares about.
type record struct {
	objectID          int
	name              string
	wantToPlay        bool
	wantToBuy         bool
	owned             bool
	itemType          string
	versionPublishers string
	personalRating    *float64
	averageRating     *float64
	complexityWeight  *float64
	minPlayers        *int
	maxPlayers        *int
	playingTime       *int
}

func (r record) toGame() models.Game {
	return models.Game{
		ObjectID:         r.objectID,
		Name:             r.name,
		WantToPlay:       r.wantToPlay,
		WantToBuy:        r.wantToBuy,
		PersonalRating:   r.personalRating,
		AverageRating:    r.averageRating,
		ComplexityWeight: r.complexityWeight,
		MinPlayers:       r.minPlayers,
		MaxPlayers:       r.maxPlayers,
		PlayingTime:      r.playingTime,
	}
}

// readAll parses the CSV into records. The export is ragged-friendly: the
// column set varies between BGG export versions, so columns are resolved by
// header name and missing ones default to zero values.
func (e *Extractor) readAll() ([]record, error) {
	f, err := os.Open(e.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse collection csv: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(raw[0]))
	for i, name := range raw[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]record, 0, len(raw)-1)
	for _, row := range raw[1:] {
		objectID, err := strconv.Atoi(field(row, "objectid"))
		if err != nil {
			continue // skip rows without a usable id
		}

		rating := floatPtr(field(row, "rating"))
		if rating != nil && *rating == 0 {
			rating = nil // BGG exports unrated games as 0
		}

		records = append(records, record{
			objectID:          objectID,
			name:              field(row, "objectname"),
			wantToPlay:        field(row, "wanttoplay") == "1",
			wantToBuy:         field(row, "wanttobuy") == "1",
			owned:             field(row, "own") == "1",
			itemType:          field(row, "itemtype"),
			versionPublishers: field(row, "version_publishers"),
			personalRating:    rating,
			averageRating:     floatPtr(field(row, "average")),
			complexityWeight:  floatPtr(field(row, "avgweight")),
			minPlayers:        intPtr(field(row, "minplayers")),
			maxPlayers:        intPtr(field(row, "maxplayers")),
			playingTime:       intPtr(field(row, "playingtime")),
		})
	}

	return records, nil
}

func parseVersionPublishers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var publishers []string
	seen := make(map[string]struct{})
	for _, pub := range strings.Split(s, ";") {
		pub = strings.TrimSpace(pub)
		if pub == "" {
			continue
		}
		if _, ok := seen[pub]; ok {
			continue
		}
		seen[pub] = struct{}{}
		publishers = append(publishers, pub)
	}
	return publishers
}

// explicit expansion markers; checked before the looser punctuation patterns
var expansionKeywords = []string{"expansion", "extension", "add-on", "addon", "mini-expansion"}

// subtitle words that make a colon or dash NOT mean "expansion"
var expansionExclusions = map[string]struct{}{
	"edition":    {},
	"deluxe":     {},
	"collection": {},
	"reprint":    {},
}

// isExpansionName guesses whether a title is an expansion. Explicit keywords
// always count; a colon or dash counts unless the title looks like a
// subtitled edition ("Brass: Deluxe Edition").
func isExpansionName(name string) bool {
	nameLower := strings.ToLower(name)

	for _, keyword := range expansionKeywords {
		if strings.Contains(nameLower, keyword) {
			return true
		}
	}

	if strings.Contains(name, ":") || strings.Contains(name, " – ") || strings.Contains(name, " - ") {
		for _, word := range strings.Fields(nameLower) {
			if _, ok := expansionExclusions[word]; ok {
				return false
			}
		}
		return true
	}

	return false
}

func floatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func intPtr(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
