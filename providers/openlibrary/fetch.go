package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"copyhound/config"
	"copyhound/models"
	"copyhound/util"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Fetcher implementiert das Adapter-Interface für Open Library (Bücher).
type Fetcher struct {
	Config  *config.Config
	Logger  *zap.Logger
	limiter *rate.Limiter
}

// NewFetcher erstellt einen neuen Open-Library-Adapter.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config:  cfg,
		Logger:  logger,
		limiter: rate.NewLimiter(rate.Every(cfg.ScrapingDelay()), 1),
	}
}

// Name gibt den Namen des Adapters zurück.
func (f *Fetcher) Name() string {
	return "openlibrary"
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
		return fmt.Errorf("openlibrary: unexpected status %d for %s", resp.StatusCode, rawURL)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Search sucht Bücher auf Open Library. Für andere Inhaltstypen liefert
// der Adapter nichts.
func (f *Fetcher) Search(ctx context.Context, query string, contentType models.ContentType) ([]*models.ScrapedCandidate, error) {
	if !contentType.IsUnknown() && !contentType.Matches(models.TypeBook) {
		return nil, nil
	}

	log := f.Logger.With(zap.String("query", query))
	log.Info("Searching Open Library")

	searchURL := fmt.Sprintf("%s/search.json?q=%s&limit=10", f.Config.OpenLibraryBaseURL, url.QueryEscape(query))

	var searchResponse SearchResponse
	if err := f.getJSON(ctx, searchURL, &searchResponse); err != nil {
		return nil, err
	}

	candidates := make([]*models.ScrapedCandidate, 0, len(searchResponse.Docs))
	for _, doc := range searchResponse.Docs {
		candidates = append(candidates, f.mapDoc(&doc))
	}

	log.Info("Open Library search finished", zap.Int("found", len(candidates)))
	return candidates, nil
}

// mapDoc konvertiert einen Open-Library-Treffer in einen Kandidaten.
func (f *Fetcher) mapDoc(doc *Doc) *models.ScrapedCandidate {
	cand := &models.ScrapedCandidate{
		Title:       doc.Title,
		ContentType: models.TypeBook,
		SourceURL:   f.Config.OpenLibraryBaseURL + doc.Key,
		SourceName:  "Open Library",
		Extra: map[string]any{
			"isbn":          doc.ISBN,
			"publisher":     doc.Publisher,
			"edition_count": doc.EditionCount,
		},
		Confidence: 0.85,
		ScrapedAt:  time.Now(),
	}
	if len(doc.AuthorName) > 0 {
		cand.Creator = doc.AuthorName[0]
	}
	if doc.FirstPublishYear > 0 {
		year := doc.FirstPublishYear
		cand.PublicationYear = &year
	}
	if len(doc.Subject) > 5 {
		cand.Extra["subject"] = doc.Subject[:5]
	} else if len(doc.Subject) > 0 {
		cand.Extra["subject"] = doc.Subject
	}
	return cand
}

// Details lädt einen Werksdatensatz inklusive Sterbejahr des Autors.
func (f *Fetcher) Details(ctx context.Context, workKey string) (*models.ScrapedCandidate, error) {
	var work Work
	if err := f.getJSON(ctx, f.Config.OpenLibraryBaseURL+workKey+".json", &work); err != nil {
		return nil, err
	}

	var deathYear *int
	if len(work.Authors) > 0 && work.Authors[0].Author.Key != "" {
		var author Author
		if err := f.getJSON(ctx, f.Config.OpenLibraryBaseURL+work.Authors[0].Author.Key+".json", &author); err == nil {
			deathYear = util.ExtractYear(author.DeathDate)
		}
	}

	cand := &models.ScrapedCandidate{
		Title:            work.Title,
		Creator:          work.ByStatement,
		CreatorDeathYear: deathYear,
		PublicationYear:  util.ExtractYear(work.FirstPublishDate),
		ContentType:      models.TypeBook,
		SourceURL:        f.Config.OpenLibraryBaseURL + workKey,
		SourceName:       "Open Library",
		Description:      util.TruncateText(decodeDescription(work.Description), 500),
		Confidence:       0.9,
		ScrapedAt:        time.Now(),
	}
	return cand, nil
}

// decodeDescription behandelt die beiden Formate des description-Feldes:
// nackter String oder Objekt mit value.
func decodeDescription(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return ""
}
