package bgg

import (
	"regexp"
	"strconv"
	"strings"
)

// Matches boardgamegeek.com/boardgame/{id} with an optional slug and query.
var bggURLRe = regexp.MustCompile(`boardgamegeek\.com/boardgame/(\d+)(?:/[^/]*)?(?:\?.*)?$`)

// ParseURL extracts the game ID from a BGG game URL. The scheme is optional
// and a trailing slug or query string is allowed.
func ParseURL(rawURL string) (int, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return 0, false
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	match := bggURLRe.FindStringSubmatch(rawURL)
	if match == nil {
		return 0, false
	}

	id, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// IsValidURL reports whether the URL points at a BGG game page.
func IsValidURL(rawURL string) bool {
	_, ok := ParseURL(rawURL)
	return ok
}
