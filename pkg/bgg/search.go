package bgg

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/Ramsey-B/spielplan/pkg/tracing"
)

// SearchResult is one hit from the BGG search page.
type SearchResult struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Year   *int   `json:"year,omitempty"`
	BGGURL string `json:"bgg_url"`
}

const maxSearchResults = 20

var yearRe = regexp.MustCompile(`\((\d{4})\)`)

// Search queries BGG's geeksearch page and parses the result table.
// Returns at most 20 results in page order.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "bgg.Client.Search")
	defer span.End()

	searchURL := fmt.Sprintf("%s/geeksearch.php?action=search&objecttype=boardgame&q=%s",
		c.baseURL, url.QueryEscape(query))

	content, err := c.fetchPage(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	var results []SearchResult
	seen := make(map[int]struct{})

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxSearchResults {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			if result, ok := searchResultFromAnchor(n); ok {
				if _, dup := seen[result.ID]; !dup {
					seen[result.ID] = struct{}{}
					results = append(results, result)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return results, nil
}

// searchResultFromAnchor reads a result row anchor shaped like
// <a href="/boardgame/{id}/{slug}">Name</a>, pulling the year out of the
// surrounding "(YYYY)" text when present.
func searchResultFromAnchor(n *html.Node) (SearchResult, bool) {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = attr.Val
			break
		}
	}
	if !strings.HasPrefix(href, "/boardgame/") {
		return SearchResult{}, false
	}

	parts := strings.Split(href, "/")
	if len(parts) < 3 {
		return SearchResult{}, false
	}
	id, err := strconv.Atoi(parts[2])
	if err != nil {
		return SearchResult{}, false
	}

	name := strings.TrimSpace(nodeText(n))
	if name == "" {
		return SearchResult{}, false
	}

	result := SearchResult{
		ID:     id,
		Name:   name,
		BGGURL: fmt.Sprintf("https://boardgamegeek.com/boardgame/%d", id),
	}

	if n.Parent != nil {
		if match := yearRe.FindStringSubmatch(nodeText(n.Parent)); match != nil {
			if year, err := strconv.Atoi(match[1]); err == nil {
				result.Year = &year
			}
		}
	}

	return result, true
}
