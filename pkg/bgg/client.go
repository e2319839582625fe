// Package bgg scrapes game metadata from BoardGameGeek pages. BGG embeds a
// GEEK.geekitemPreload JSON blob in every game page; that blob is the
// primary source, with HTML anchors as a fallback for older page layouts.
package bgg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/Ramsey-B/spielplan/pkg/models"
	"github.com/Ramsey-B/spielplan/pkg/tracing"
)

// PageCache stores fetched pages so repeated runs do not hammer BGG.
type PageCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key string, payload string) error
}

// Config contains configuration for the BGG client.
type Config struct {
	BaseURL      string        // default: https://boardgamegeek.com
	RequestDelay time.Duration // minimum spacing between live requests (default: 2s)
	Timeout      time.Duration // per-request timeout (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://boardgamegeek.com",
		RequestDelay: 2 * time.Second,
		Timeout:      30 * time.Second,
	}
}

// Client fetches and parses BGG pages.
type Client struct {
	log        ectologger.Logger
	cache      PageCache
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewClient creates a new BGG client. The cache may be nil, in which case
// every fetch goes to the network.
func NewClient(log ectologger.Logger, cache PageCache, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = DefaultConfig().RequestDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		log:        log,
		cache:      cache,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(cfg.RequestDelay), 1),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

var geekPreloadRe = regexp.MustCompile(`(?s)GEEK\.geekitemPreload\s*=\s*(\{.*?\});`)

// Publishers extracts the publisher names from a game's page, preserving
// page order with duplicates removed.
func (c *Client) Publishers(ctx context.Context, game *models.Game) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "bgg.Client.Publishers")
	defer span.End()

	content, err := c.fetchPage(ctx, c.gameURL(game))
	if err != nil {
		return nil, err
	}

	if preload, ok := extractPreload(content); ok {
		if publishers := preload.publishers(); len(publishers) > 0 {
			return publishers, nil
		}
	}

	return publishersFromHTML(content), nil
}

// Enrich fills in the game's name, publishers, and stats from its page.
// The incoming game only needs ObjectID set.
func (c *Client) Enrich(ctx context.Context, game *models.Game) error {
	ctx, span := tracing.StartSpan(ctx, "bgg.Client.Enrich")
	defer span.End()

	content, err := c.fetchPage(ctx, c.gameURL(game))
	if err != nil {
		return err
	}

	preload, ok := extractPreload(content)
	if !ok {
		// Old page layout; publishers are all we can recover.
		game.Publishers = publishersFromHTML(content)
		c.log.WithContext(ctx).WithFields(map[string]any{"object_id": game.ObjectID}).Debug("No preload JSON on game page")
		return nil
	}

	if publishers := preload.publishers(); len(publishers) > 0 {
		game.Publishers = publishers
	} else {
		game.Publishers = publishersFromHTML(content)
	}

	item := preload.Item
	if name := strings.TrimSpace(item.Name); name != "" {
		game.Name = name
	}
	if v, ok := floatFrom(item.Stats["average"]); ok {
		game.AverageRating = &v
	}
	if v, ok := floatFrom(item.Stats["avgweight"]); ok {
		game.ComplexityWeight = &v
	}
	if v, ok := intFrom(item.MinPlaytime); ok {
		game.PlayingTime = &v
	}
	if v, ok := intFrom(item.MinPlayers); ok {
		game.MinPlayers = &v
	}
	if v, ok := intFrom(item.MaxPlayers); ok {
		game.MaxPlayers = &v
	}

	return nil
}

func (c *Client) gameURL(game *models.Game) string {
	return fmt.Sprintf("%s/boardgame/%d", c.baseURL, game.ObjectID)
}

// fetchPage returns a page body, from the cache when possible. Live fetches
// are rate limited to stay polite.
func (c *Client) fetchPage(ctx context.Context, url string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "bgg.Client.fetchPage")
	defer span.End()

	if c.cache != nil {
		if content, ok, err := c.cache.Get(ctx, url); err != nil {
			c.log.WithContext(ctx).WithError(err).Warn("Page cache read failed")
		} else if ok {
			return content, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	// BGG serves a stripped page to unknown agents
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}

	content := string(body)
	if c.cache != nil {
		if err := c.cache.Put(ctx, url, content); err != nil {
			c.log.WithContext(ctx).WithError(err).Warn("Page cache write failed")
		}
	}

	return content, nil
}

// preload mirrors the slice of GEEK.geekitemPreload spielplan reads. BGG
// serves numbers as strings in some fields and as numbers in others, so the
// loosely typed fields go through floatFrom/intFrom.
type preload struct {
	Item struct {
		Name  string         `json:"name"`
		Links struct {
			BoardGamePublisher []struct {
				Name string `json:"name"`
			} `json:"boardgamepublisher"`
		} `json:"links"`
		Stats       map[string]any `json:"stats"`
		MinPlaytime any            `json:"minplaytime"`
		MinPlayers  any            `json:"minplayers"`
		MaxPlayers  any            `json:"maxplayers"`
	} `json:"item"`
}

func (p *preload) publishers() []string {
	var publishers []string
	seen := make(map[string]struct{})
	for _, link := range p.Item.Links.BoardGamePublisher {
		name := strings.TrimSpace(link.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		publishers = append(publishers, name)
	}
	return publishers
}

func extractPreload(content string) (*preload, bool) {
	match := geekPreloadRe.FindStringSubmatch(content)
	if match == nil {
		return nil, false
	}
	var p preload
	if err := json.Unmarshal([]byte(match[1]), &p); err != nil {
		return nil, false
	}
	return &p, true
}

// publishersFromHTML walks the document for anchors into
// /boardgamepublisher/, the pre-preload page layout.
func publishersFromHTML(content string) []string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var publishers []string
	seen := make(map[string]struct{})

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && strings.Contains(attr.Val, "/boardgamepublisher/") {
					name := strings.TrimSpace(nodeText(n))
					if name != "" {
						if _, ok := seen[name]; !ok {
							seen[name] = struct{}{}
							publishers = append(publishers, name)
						}
					}
					break
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return publishers
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

func floatFrom(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func intFrom(v any) (int, bool) {
	f, ok := floatFrom(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}
