package imdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"copyhound/config"
	"copyhound/models"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// titleKinds sind die Vorschlagsarten, die als Film gelten. Personen und
// Videospiele werden verworfen.
var titleKinds = map[string]struct{}{
	"movie":    {},
	"tvSeries": {},
	"tvMovie":  {},
	"short":    {},
	"video":    {},
}

var (
	ogTitleRegex   = regexp.MustCompile(`<meta property="og:title" content="([^"]*)"`)
	titleYearRegex = regexp.MustCompile(`\((\d{4})\)`)
)

// Fetcher implementiert das Adapter-Interface für IMDb (Filme). IMDb hat
// keine freie Such-API; der Adapter nutzt die öffentliche Suggestion-API
// und für Details die Meta-Tags der Titelseite.
type Fetcher struct {
	Config  *config.Config
	Logger  *zap.Logger
	limiter *rate.Limiter
}

// NewFetcher erstellt einen neuen IMDb-Adapter.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config:  cfg,
		Logger:  logger,
		limiter: rate.NewLimiter(rate.Every(cfg.ScrapingDelay()), 1),
	}
}

// Name gibt den Namen des Adapters zurück.
func (f *Fetcher) Name() string {
	return "imdb"
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.Config.UserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imdb: unexpected status %d for %s", resp.StatusCode, rawURL)
	}
	return io.ReadAll(resp.Body)
}

// Search sucht Filme über die Suggestion-API. Für andere Inhaltstypen
// liefert der Adapter nichts.
func (f *Fetcher) Search(ctx context.Context, query string, contentType models.ContentType) ([]*models.ScrapedCandidate, error) {
	if !contentType.IsUnknown() && !contentType.Matches(models.TypeFilm) {
		return nil, nil
	}
	if query == "" {
		return nil, nil
	}

	log := f.Logger.With(zap.String("query", query))
	log.Info("Searching IMDb")

	// Die Suggestion-API ist nach Anfangsbuchstabe partitioniert.
	slug := strings.ToLower(strings.ReplaceAll(query, " ", "_"))
	first := string([]rune(slug)[:1])
	suggestURL := fmt.Sprintf("%s/%s/%s.json", f.Config.IMDbSuggestBaseURL, url.PathEscape(first), url.PathEscape(slug))

	body, err := f.get(ctx, suggestURL)
	if err != nil {
		return nil, err
	}

	var suggestResponse SuggestResponse
	if err := json.Unmarshal(body, &suggestResponse); err != nil {
		return nil, err
	}

	var candidates []*models.ScrapedCandidate
	for _, entry := range suggestResponse.Entries {
		if _, ok := titleKinds[entry.Kind]; !ok {
			continue
		}

		cand := &models.ScrapedCandidate{
			Title:       entry.Title,
			Creator:     entry.Starring,
			ContentType: models.TypeFilm,
			SourceURL:   fmt.Sprintf("%s/title/%s/", f.Config.IMDbTitleBaseURL, entry.ID),
			SourceName:  "IMDb",
			Extra: map[string]any{
				"imdb_id": entry.ID,
				"type":    entry.Kind,
				"rank":    entry.Rank,
			},
			Confidence: 0.85,
			ScrapedAt:  time.Now(),
		}
		if entry.Year > 0 {
			year := entry.Year
			cand.PublicationYear = &year
		}
		candidates = append(candidates, cand)
	}

	log.Info("IMDb search finished", zap.Int("found", len(candidates)))
	return candidates, nil
}

// Details liest Titel und Jahr aus den Meta-Tags der Titelseite.
func (f *Fetcher) Details(ctx context.Context, imdbID string) (*models.ScrapedCandidate, error) {
	pageURL := fmt.Sprintf("%s/title/%s/", f.Config.IMDbTitleBaseURL, imdbID)

	body, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	title := ""
	if m := ogTitleRegex.FindSubmatch(body); m != nil {
		title = string(m[1])
	}
	if title == "" {
		return nil, fmt.Errorf("imdb: no title metadata on %s", pageURL)
	}

	var year *int
	if m := titleYearRegex.FindSubmatch(body); m != nil {
		if y, err := strconv.Atoi(string(m[1])); err == nil {
			year = &y
		}
	}
	// Jahresklammer am Titelende entfernen.
	title = strings.TrimSpace(titleYearRegex.ReplaceAllString(title, ""))

	return &models.ScrapedCandidate{
		Title:           title,
		PublicationYear: year,
		ContentType:     models.TypeFilm,
		SourceURL:       pageURL,
		SourceName:      "IMDb",
		Extra:           map[string]any{"imdb_id": imdbID},
		Confidence:      0.85,
		ScrapedAt:       time.Now(),
	}, nil
}
