// Package messe fetches the Essen Spiel exhibitor and product directories
// from the fair's maps API and normalizes them into spielplan records.
package messe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/spielplan/pkg/models"
	"github.com/Ramsey-B/spielplan/pkg/tracing"
)

// PageCache stores raw API payloads between runs. Same interface as the
// BGG client's cache; both are backed by the pagecache repository.
type PageCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key string, payload string) error
}

// Config contains configuration for the messe client.
type Config struct {
	BaseURL string        // default: https://maps.eyeled-services.de
	Timeout time.Duration // per-request timeout (default: 60s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://maps.eyeled-services.de",
		Timeout: 60 * time.Second,
	}
}

// Client fetches Essen Spiel data.
type Client struct {
	log        ectologger.Logger
	cache      PageCache
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new messe client. The cache may be nil.
func NewClient(log ectologger.Logger, cache PageCache, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		log:        log,
		cache:      cache,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		now:        time.Now,
	}
}

// Year returns the two-digit Spiel year the API is keyed by, e.g. "25".
func (c *Client) Year() string {
	year := fmt.Sprintf("%d", c.now().Year())
	return year[len(year)-2:]
}

// The API takes its column list as a literal JSON array in the query string.
const (
	exhibitorColumns = `["ID","NAME","ADRESSE","LAND","LOGO","PLZ","STADT","WEB","EMAIL","INFO","TELEFON","S_ORDER","STAND","HALLE"]`
	productColumns   = `["INFO","S_ORDER","TITEL","FIRMA_ID","UNTERTITEL","BILDER","BILDER_VERSIONEN","BILDER_TEXTE"]`
)

// FetchExhibitors returns the exhibitor directory, one record per booth
// location. useCache=false forces a live fetch.
func (c *Client) FetchExhibitors(ctx context.Context, useCache bool) ([]models.Exhibitor, error) {
	ctx, span := tracing.StartSpan(ctx, "messe.Client.FetchExhibitors")
	defer span.End()

	url := fmt.Sprintf("%s/en/spiel%s/exhibitors?columns=%s", c.baseURL, c.Year(), exhibitorColumns)
	rows, err := c.fetchRows(ctx, url, "exhibitors", useCache)
	if err != nil {
		return nil, err
	}

	exhibitors := processExhibitors(rows)

	c.log.WithContext(ctx).WithFields(map[string]any{
		"raw":       len(rows),
		"processed": len(exhibitors),
	}).Info("Fetched Essen exhibitors")

	return exhibitors, nil
}

// FetchProducts returns the announced products, dropping records without a
// title or company ID.
func (c *Client) FetchProducts(ctx context.Context, useCache bool) ([]models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "messe.Client.FetchProducts")
	defer span.End()

	url := fmt.Sprintf("%s/en/spiel%s/products?columns=%s", c.baseURL, c.Year(), productColumns)
	rows, err := c.fetchRows(ctx, url, "products", useCache)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	for _, row := range rows {
		p := models.Product{
			Title:     strField(row, "TITEL"),
			CompanyID: strField(row, "FIRMA_ID"),
			Subtitle:  strField(row, "UNTERTITEL"),
			Info:      strField(row, "INFO"),
		}
		if p.Title == "" || p.CompanyID == "" {
			continue
		}
		p.Extra = extraFields(row, "TITEL", "FIRMA_ID", "UNTERTITEL", "INFO")
		products = append(products, p)
	}

	c.log.WithContext(ctx).WithFields(map[string]any{
		"raw":       len(rows),
		"processed": len(products),
	}).Info("Fetched Essen products")

	return products, nil
}

// fetchRows fetches a payload (through the cache unless bypassed) and
// decodes it. The API answers either a bare array or an object wrapping the
// array under a key named after the resource.
func (c *Client) fetchRows(ctx context.Context, url, key string, useCache bool) ([]map[string]any, error) {
	if useCache && c.cache != nil {
		if payload, ok, err := c.cache.Get(ctx, url); err != nil {
			c.log.WithContext(ctx).WithError(err).Warn("Essen cache read failed")
		} else if ok {
			return decodeRows([]byte(payload), key)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, key)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", key, err)
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, url, string(body)); err != nil {
			c.log.WithContext(ctx).WithError(err).Warn("Essen cache write failed")
		}
	}

	return decodeRows(body, key)
}

func decodeRows(payload []byte, key string) ([]map[string]any, error) {
	var rows []map[string]any
	if err := json.Unmarshal(payload, &rows); err == nil {
		return rows, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected %s payload shape: %w", key, err)
	}
	raw, ok := wrapped[key]
	if !ok {
		return nil, nil
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("unexpected %s payload shape: %w", key, err)
	}
	return rows, nil
}

// processExhibitors fans each raw record out into one entry per booth
// location. Halls and booths come pipe-delimited and pair up by position; a
// ragged booth list falls back to the first booth. Records without hall and
// booth data are dropped.
func processExhibitors(rows []map[string]any) []models.Exhibitor {
	var exhibitors []models.Exhibitor

	for _, row := range rows {
		rawHalls := strField(row, "HALLE")
		rawBooths := strField(row, "STAND")
		if rawHalls == "" || rawBooths == "" {
			continue
		}

		halls := splitTrim(rawHalls)
		booths := splitTrim(rawBooths)

		for i, hall := range halls {
			booth := booths[0]
			if i < len(booths) {
				booth = booths[i]
			}

			exhibitors = append(exhibitors, models.Exhibitor{
				ID:              strField(row, "ID"),
				Name:            strField(row, "NAME"),
				Hall:            cleanHall(hall),
				Booth:           booth,
				Country:         strField(row, "LAND"),
				Website:         strField(row, "WEB"),
				Email:           strField(row, "EMAIL"),
				Info:            strField(row, "INFO"),
				IsMultiLocation: len(halls) > 1,
				Extra:           extraFields(row, "ID", "NAME", "HALLE", "STAND", "LAND", "WEB", "EMAIL", "INFO"),
			})
		}
	}

	return exhibitors
}

// cleanHall strips the non-breaking spaces and "Hall " prefix the API mixes
// into hall values before parsing.
func cleanHall(raw string) models.Hall {
	raw = strings.ReplaceAll(raw, "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "Hall ")
	return models.ParseHall(raw)
}

func splitTrim(s string) []string {
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func strField(row map[string]any, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// extraFields keeps the columns spielplan does not model, so nothing from
// the API is silently thrown away.
func extraFields(row map[string]any, known ...string) map[string]any {
	knownSet := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownSet[k] = struct{}{}
	}

	var extra map[string]any
	for k, v := range row {
		if _, ok := knownSet[k]; ok {
			continue
		}
		if v == nil {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra
}
