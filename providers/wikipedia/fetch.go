package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"copyhound/config"
	"copyhound/models"
	"copyhound/util"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// typeQualifiers ergänzen die Suchanfrage um typabhängige Begriffe, damit
// die Volltextsuche in die richtige Richtung läuft.
var typeQualifiers = map[models.ContentType]string{
	models.TypeBook:      "novel book literature",
	models.TypeMusic:     "song album music musician",
	models.TypeFilm:      "film movie cinema",
	models.TypeArticle:   "article paper",
	models.TypeImage:     "painting photograph artwork",
	models.TypePatent:    "patent invention technology",
	models.TypeSoftware:  "software application programming",
	models.TypeCode:      "software library framework",
	models.TypeTrademark: "trademark brand company",
	models.TypeAcademic:  "research paper academic study",
}

// Fetcher implementiert das Adapter-Interface für die Wikipedia-API.
// Wikipedia ist der Generalist unter den Katalogen und liefert für alle
// Inhaltstypen, dafür mit geringerer Verlässlichkeit.
type Fetcher struct {
	Config  *config.Config
	Logger  *zap.Logger
	limiter *rate.Limiter
}

// NewFetcher erstellt einen neuen Wikipedia-Adapter.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config:  cfg,
		Logger:  logger,
		limiter: rate.NewLimiter(rate.Every(cfg.ScrapingDelay()), 1),
	}
}

// Name gibt den Namen des Adapters zurück.
func (f *Fetcher) Name() string {
	return "wikipedia"
}

func (f *Fetcher) getJSON(ctx context.Context, rawURL string, out any) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", f.Config.UserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia: unexpected status %d for %s", resp.StatusCode, rawURL)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Search sucht Werke über die MediaWiki-Volltextsuche. Treffer, deren
// erkannter Typ dem angefragten widerspricht, werden verworfen.
func (f *Fetcher) Search(ctx context.Context, query string, contentType models.ContentType) ([]*models.ScrapedCandidate, error) {
	log := f.Logger.With(zap.String("query", query))
	log.Info("Searching Wikipedia")

	searchQuery := query
	if qualifier, ok := typeQualifiers[contentType]; ok {
		searchQuery = query + " " + qualifier
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", searchQuery)
	params.Set("format", "json")
	params.Set("srlimit", "10")
	params.Set("srprop", "snippet|timestamp")

	var searchResponse SearchResponse
	if err := f.getJSON(ctx, f.Config.WikipediaBaseURL+"?"+params.Encode(), &searchResponse); err != nil {
		return nil, err
	}

	var candidates []*models.ScrapedCandidate
	for _, hit := range searchResponse.Query.Search {
		snippet := util.CleanHTML(hit.Snippet)
		detected := util.DetectContentType(snippet, hit.Title)

		finalType := detected
		if !contentType.IsUnknown() {
			// Angefragter Typ gewinnt; widersprechende Treffer fliegen raus.
			if !detected.IsUnknown() && !contentType.Matches(detected) {
				continue
			}
			finalType = contentType
		}

		candidates = append(candidates, &models.ScrapedCandidate{
			Title:           hit.Title,
			PublicationYear: util.ExtractYear(snippet),
			ContentType:     finalType,
			SourceURL:       "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(hit.Title, " ", "_"),
			SourceName:      "Wikipedia",
			Description:     util.TruncateText(snippet, 300),
			Extra: map[string]any{
				"page_id":    hit.PageID,
				"word_count": hit.WordCount,
			},
			Confidence: 0.75,
			ScrapedAt:  time.Now(),
		})
	}

	log.Info("Wikipedia search finished", zap.Int("found", len(candidates)))
	return candidates, nil
}

// Details lädt die Einleitung einer Seite und leitet daraus Typ und Jahr ab.
func (f *Fetcher) Details(ctx context.Context, pageTitle string) (*models.ScrapedCandidate, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", pageTitle)
	params.Set("format", "json")
	params.Set("prop", "extracts|info")
	params.Set("exintro", "true")
	params.Set("explaintext", "true")
	params.Set("inprop", "url")

	var detailsResponse DetailsResponse
	if err := f.getJSON(ctx, f.Config.WikipediaBaseURL+"?"+params.Encode(), &detailsResponse); err != nil {
		return nil, err
	}

	for _, page := range detailsResponse.Query.Pages {
		if page.PageID == 0 {
			continue
		}
		extract := util.CleanHTML(page.Extract)
		return &models.ScrapedCandidate{
			Title:           page.Title,
			PublicationYear: util.ExtractYear(extract),
			ContentType:     util.DetectContentType(extract, page.Title),
			SourceURL:       page.FullURL,
			SourceName:      "Wikipedia",
			Description:     util.TruncateText(extract, 500),
			Confidence:      0.8,
			ScrapedAt:       time.Now(),
		}, nil
	}
	return nil, fmt.Errorf("wikipedia: page %q not found", pageTitle)
}
