package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Ramsey-B/spielplan/pkg/models"
)

// ErrArtifactMissing is returned when a step's input has not been produced
// yet. Callers map it to a "run the earlier step first" message.
var ErrArtifactMissing = errors.New("artifact not found")

// Artifact file names under the data directory.
const (
	gamesFile         = "games.json"
	enrichedGamesFile = "enriched_games.json"
	exhibitorsFile    = "essen_exhibitors.json"
	productsFile      = "essen_products.json"
	matchedGamesFile  = "matched_games.json"
	routeReportFile   = "route_report.json"
	routeMarkdownFile = "ESSEN_ROUTE.md"
	routeHTMLFile     = "ESSEN_ROUTE.html"
	routeCSVFile      = "route_summary.csv"
)

// ArtifactStore reads and writes the JSON files the pipeline steps hand
// each other. Every step can therefore be re-run in isolation.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates a store rooted at dir.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Dir returns the artifact directory.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

// MatchedGames is the step-4 artifact: games split by match outcome.
type MatchedGames struct {
	Matched   []models.GameMatch `json:"matched"`
	Unmatched []models.Game      `json:"unmatched"`
}

func (s *ArtifactStore) SaveGames(games []models.Game) error {
	return s.write(gamesFile, games)
}

func (s *ArtifactStore) LoadGames() ([]models.Game, error) {
	var games []models.Game
	return games, s.read(gamesFile, &games)
}

func (s *ArtifactStore) SaveEnrichedGames(games []models.Game) error {
	return s.write(enrichedGamesFile, games)
}

func (s *ArtifactStore) LoadEnrichedGames() ([]models.Game, error) {
	var games []models.Game
	return games, s.read(enrichedGamesFile, &games)
}

func (s *ArtifactStore) SaveExhibitors(exhibitors []models.Exhibitor) error {
	return s.write(exhibitorsFile, exhibitors)
}

func (s *ArtifactStore) LoadExhibitors() ([]models.Exhibitor, error) {
	var exhibitors []models.Exhibitor
	return exhibitors, s.read(exhibitorsFile, &exhibitors)
}

func (s *ArtifactStore) SaveProducts(products []models.Product) error {
	return s.write(productsFile, products)
}

func (s *ArtifactStore) LoadProducts() ([]models.Product, error) {
	var products []models.Product
	return products, s.read(productsFile, &products)
}

func (s *ArtifactStore) SaveMatchedGames(m *MatchedGames) error {
	return s.write(matchedGamesFile, m)
}

func (s *ArtifactStore) LoadMatchedGames() (*MatchedGames, error) {
	var m MatchedGames
	if err := s.read(matchedGamesFile, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *ArtifactStore) SaveRouteReport(r *models.RouteReport) error {
	return s.write(routeReportFile, r)
}

func (s *ArtifactStore) LoadRouteReport() (*models.RouteReport, error) {
	var r models.RouteReport
	if err := s.read(routeReportFile, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveRendered writes a rendered report (Markdown, HTML, CSV) verbatim.
func (s *ArtifactStore) SaveRendered(name string, content []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (s *ArtifactStore) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return s.SaveRendered(name, data)
}

func (s *ArtifactStore) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrArtifactMissing, name)
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}
