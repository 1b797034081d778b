package openalex

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
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Fetcher implementiert das Adapter-Interface für OpenAlex
// (wissenschaftliche Arbeiten). Open-Access-Treffer gelten als
// verlässlicher als zugangsbeschränkte.
type Fetcher struct {
	Config  *config.Config
	Logger  *zap.Logger
	limiter *rate.Limiter
}

// NewFetcher erstellt einen neuen OpenAlex-Adapter.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config:  cfg,
		Logger:  logger,
		limiter: rate.NewLimiter(rate.Every(cfg.ScrapingDelay()), 1),
	}
}

// Name gibt den Namen des Adapters zurück.
func (f *Fetcher) Name() string {
	return "openalex"
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
		return fmt.Errorf("openalex: unexpected status %d for %s", resp.StatusCode, rawURL)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Search sucht wissenschaftliche Arbeiten. Für andere Inhaltstypen liefert
// der Adapter nichts.
func (f *Fetcher) Search(ctx context.Context, query string, contentType models.ContentType) ([]*models.ScrapedCandidate, error) {
	if !contentType.IsUnknown() && !contentType.Matches(models.TypeAcademic) {
		return nil, nil
	}

	log := f.Logger.With(zap.String("query", query))
	log.Info("Searching OpenAlex")

	searchURL := fmt.Sprintf("%s/works?search=%s&per-page=10", f.Config.OpenAlexBaseURL, url.QueryEscape(query))

	var searchResponse SearchResponse
	if err := f.getJSON(ctx, searchURL, &searchResponse); err != nil {
		return nil, err
	}

	candidates := make([]*models.ScrapedCandidate, 0, len(searchResponse.Results))
	for _, work := range searchResponse.Results {
		candidates = append(candidates, mapWork(&work))
	}

	log.Info("OpenAlex search finished", zap.Int("found", len(candidates)))
	return candidates, nil
}

// mapWork konvertiert eine Arbeit in einen Kandidaten.
func mapWork(work *WorkResult) *models.ScrapedCandidate {
	title := work.DisplayName
	if title == "" {
		title = work.Title
	}

	sourceURL := work.DOI
	if sourceURL == "" {
		sourceURL = work.ID
	}

	license := "Restricted"
	confidence := 0.75
	if work.OpenAccess.IsOA {
		license = "Open Access"
		confidence = 0.85
	}

	cand := &models.ScrapedCandidate{
		Title:       title,
		ContentType: models.TypeAcademic,
		SourceURL:   sourceURL,
		SourceName:  "OpenAlex",
		Extra: map[string]any{
			"doi":            work.DOI,
			"open_access":    work.OpenAccess.IsOA,
			"oa_status":      work.OpenAccess.OAStatus,
			"cited_by_count": work.CitedByCount,
			"type":           work.Type,
			"license":        license,
		},
		Confidence: confidence,
		ScrapedAt:  time.Now(),
	}
	if len(work.Authorships) > 0 {
		cand.Creator = work.Authorships[0].Author.DisplayName
	}
	if work.PublicationYear > 0 {
		year := work.PublicationYear
		cand.PublicationYear = &year
	}
	return cand
}

// Details lädt eine einzelne Arbeit über ihre OpenAlex-ID.
func (f *Fetcher) Details(ctx context.Context, id string) (*models.ScrapedCandidate, error) {
	var work WorkResult
	if err := f.getJSON(ctx, f.Config.OpenAlexBaseURL+"/works/"+url.PathEscape(id), &work); err != nil {
		return nil, err
	}
	return mapWork(&work), nil
}
