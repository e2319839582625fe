// Package report renders a RouteReport for humans: Markdown for the repo,
// HTML for pasting into Google Docs, CSV for spreadsheets.
package report

import (
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/Ramsey-B/spielplan/pkg/models"
)

// Markdown renders the route as a checklist grouped by hall.
func Markdown(r *models.RouteReport) string {
	var b strings.Builder

	b.WriteString("# Essen Spiel Route Planning Report\n\n")
	b.WriteString("## Legend\n")
	b.WriteString("- 🛒 Want to Buy | 🎮 Want to Play\n")
	b.WriteString("- ⭐ BGG Average Rating | 🎯 Complexity Weight | 👥 Player Count | ⏱️ Playing Time\n\n")
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Total target games: %d\n", r.TotalGames)
	fmt.Fprintf(&b, "- Successfully matched: %d\n", r.MatchedGames)
	fmt.Fprintf(&b, "- Unmatched games: %d\n\n", len(r.UnmatchedGames))
	b.WriteString("## Route by Hall\n\n")

	for _, hall := range sortedHalls(r.Stops) {
		fmt.Fprintf(&b, "### Hall %s\n\n", hall.name)
		for _, stop := range hall.stops {
			fmt.Fprintf(&b, "#### Booth %s - %s\n", stop.Booth, stop.Exhibitor.Name)
			for _, game := range stop.Games {
				fmt.Fprintf(&b, "- [ ] %s [%s](%s)%s\n", priorityIcon(game), game.Name, game.BGGURL(), gameInfo(game))
			}
			b.WriteString("\n")
		}
	}

	if len(r.UnmatchedGames) > 0 {
		b.WriteString("## Unmatched Games\n\n")
		for _, game := range r.UnmatchedGames {
			fmt.Fprintf(&b, "- [ ] %s [%s](%s)%s\n", priorityIcon(game), game.Name, game.BGGURL(), gameInfo(game))
		}
	}

	return b.String()
}

// HTML renders the same report with real checkboxes, which survive a paste
// into Google Docs where Markdown ones do not.
func HTML(r *models.RouteReport) string {
	const checkbox = `<input type="checkbox" />`

	var b strings.Builder
	b.WriteString("<h1>Essen Spiel Route Planning Report</h1>\n")
	b.WriteString("<h2>Legend</h2>\n<ul>\n")
	b.WriteString("<li>🛒 Want to Buy | 🎮 Want to Play</li>\n")
	b.WriteString("<li>⭐ BGG Average Rating | 🎯 Complexity Weight | 👥 Player Count | ⏱️ Playing Time</li>\n</ul>\n")
	b.WriteString("<h2>Summary</h2>\n<ul>\n")
	fmt.Fprintf(&b, "<li>Total target games: %d</li>\n", r.TotalGames)
	fmt.Fprintf(&b, "<li>Successfully matched: %d</li>\n", r.MatchedGames)
	fmt.Fprintf(&b, "<li>Unmatched games: %d</li>\n</ul>\n", len(r.UnmatchedGames))
	b.WriteString("<h2>Route by Hall</h2>\n")

	for _, hall := range sortedHalls(r.Stops) {
		fmt.Fprintf(&b, "<h3>Hall %s</h3>\n", html.EscapeString(hall.name))
		for _, stop := range hall.stops {
			fmt.Fprintf(&b, "<h4>Booth %s - %s</h4>\n<ul>\n", html.EscapeString(stop.Booth), html.EscapeString(stop.Exhibitor.Name))
			for _, game := range stop.Games {
				fmt.Fprintf(&b, `<li>%s %s <a href="%s">%s</a>%s</li>`+"\n",
					checkbox, priorityIcon(game), game.BGGURL(), html.EscapeString(game.Name), html.EscapeString(gameInfo(game)))
			}
			b.WriteString("</ul>\n")
		}
	}

	if len(r.UnmatchedGames) > 0 {
		b.WriteString("<h2>Unmatched Games</h2>\n<ul>\n")
		for _, game := range r.UnmatchedGames {
			fmt.Fprintf(&b, `<li>%s %s <a href="%s">%s</a>%s</li>`+"\n",
				checkbox, priorityIcon(game), game.BGGURL(), html.EscapeString(game.Name), html.EscapeString(gameInfo(game)))
		}
		b.WriteString("</ul>\n")
	}

	return b.String()
}

// WriteCSV writes a one-row-per-stop summary.
func WriteCSV(w io.Writer, r *models.RouteReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Hall", "Booth", "Exhibitor", "Priority", "Games"}); err != nil {
		return err
	}

	for i := range r.Stops {
		stop := &r.Stops[i]
		games := make([]string, 0, len(stop.Games))
		for _, g := range stop.Games {
			tag := "[PLAY]"
			if g.WantToBuy {
				tag = "[BUY]"
			}
			games = append(games, tag+" "+g.Name)
		}

		record := []string{
			stop.Hall.String(),
			stop.Booth,
			stop.Exhibitor.Name,
			strconv.Itoa(stop.PriorityScore()),
			strings.Join(games, "; "),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

type hallGroup struct {
	name  string
	hall  models.Hall
	stops []models.RouteStop
}

// sortedHalls groups stops by hall (numbered before labeled) and orders each
// hall's stops by priority score descending.
func sortedHalls(stops []models.RouteStop) []hallGroup {
	var order []models.Hall
	grouped := make(map[models.Hall][]models.RouteStop)
	for _, stop := range stops {
		if _, ok := grouped[stop.Hall]; !ok {
			order = append(order, stop.Hall)
		}
		grouped[stop.Hall] = append(grouped[stop.Hall], stop)
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Less(order[j]) })

	groups := make([]hallGroup, 0, len(order))
	for _, hall := range order {
		hallStops := grouped[hall]
		sort.SliceStable(hallStops, func(i, j int) bool {
			return hallStops[i].PriorityScore() > hallStops[j].PriorityScore()
		})
		groups = append(groups, hallGroup{name: hall.String(), hall: hall, stops: hallStops})
	}
	return groups
}

func priorityIcon(g models.Game) string {
	if g.WantToBuy {
		return "🛒"
	}
	return "🎮"
}

// gameInfo renders the metadata decorations, e.g. " (⭐7.8 | 🎯2.5 | 👥2-4 | ⏱️90min)".
func gameInfo(g models.Game) string {
	var parts []string
	if g.AverageRating != nil && *g.AverageRating != 0 {
		parts = append(parts, fmt.Sprintf("⭐%.1f", *g.AverageRating))
	}
	if g.ComplexityWeight != nil && *g.ComplexityWeight != 0 {
		parts = append(parts, fmt.Sprintf("🎯%.1f", *g.ComplexityWeight))
	}
	if g.MinPlayers != nil && g.MaxPlayers != nil && *g.MinPlayers != 0 && *g.MaxPlayers != 0 {
		if *g.MinPlayers == *g.MaxPlayers {
			parts = append(parts, fmt.Sprintf("👥%d", *g.MinPlayers))
		} else {
			parts = append(parts, fmt.Sprintf("👥%d-%d", *g.MinPlayers, *g.MaxPlayers))
		}
	}
	if g.PlayingTime != nil && *g.PlayingTime != 0 {
		parts = append(parts, fmt.Sprintf("⏱️%dmin", *g.PlayingTime))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, " | ") + ")"
}
