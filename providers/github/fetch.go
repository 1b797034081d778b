package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"copyhound/config"
	"copyhound/models"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Fetcher implementiert das Adapter-Interface für die GitHub-Such-API
// (Software). Die Lizenzangaben der Repositories wandern in die
// Zusatzfelder der Kandidaten.
type Fetcher struct {
	Config  *config.Config
	Logger  *zap.Logger
	limiter *rate.Limiter
}

// NewFetcher erstellt einen neuen GitHub-Adapter.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config:  cfg,
		Logger:  logger,
		limiter: rate.NewLimiter(rate.Every(cfg.ScrapingDelay()), 1),
	}
}

// Name gibt den Namen des Adapters zurück.
func (f *Fetcher) Name() string {
	return "github"
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
	req.Header.Set("Accept", "application/vnd.github+json")
	if f.Config.GitHubToken != "" {
		req.Header.Set("Authorization", "Bearer "+f.Config.GitHubToken)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github: unexpected status %d for %s", resp.StatusCode, rawURL)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Search sucht Repositories, sortiert nach Sternen.
func (f *Fetcher) Search(ctx context.Context, query string, contentType models.ContentType) ([]*models.ScrapedCandidate, error) {
	if !contentType.IsUnknown() && !contentType.Matches(models.TypeSoftware) {
		return nil, nil
	}

	log := f.Logger.With(zap.String("query", query))
	log.Info("Searching GitHub")

	searchURL := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&per_page=10", f.Config.GitHubBaseURL, url.QueryEscape(query))

	var searchResponse SearchResponse
	if err := f.getJSON(ctx, searchURL, &searchResponse); err != nil {
		return nil, err
	}

	candidates := make([]*models.ScrapedCandidate, 0, len(searchResponse.Items))
	for _, repo := range searchResponse.Items {
		candidates = append(candidates, mapRepository(&repo))
	}

	log.Info("GitHub search finished", zap.Int("found", len(candidates)))
	return candidates, nil
}

// mapRepository konvertiert ein Repository in einen Kandidaten. Ohne
// erkennbare Lizenz sinkt die Verlässlichkeit.
func mapRepository(repo *Repository) *models.ScrapedCandidate {
	licenseName := "Unknown"
	licenseType := "unknown"
	if repo.License != nil {
		if repo.License.SpdxID != "" {
			licenseName = repo.License.SpdxID
		} else if repo.License.Name != "" {
			licenseName = repo.License.Name
		}
	}
	confidence := 0.7
	if licenseName != "Unknown" {
		licenseType = "open_source"
		confidence = 0.9
	}

	title := repo.FullName
	if title == "" {
		title = repo.Name
	}

	cand := &models.ScrapedCandidate{
		Title:       title,
		Creator:     repo.Owner.Login,
		ContentType: models.TypeSoftware,
		SourceURL:   repo.HTMLURL,
		SourceName:  "GitHub",
		Description: repo.Description,
		Extra: map[string]any{
			"license":      licenseName,
			"license_type": licenseType,
			"stars":        repo.Stars,
			"forks":        repo.Forks,
			"language":     repo.Language,
			"topics":       repo.Topics,
			"is_fork":      repo.Fork,
			"archived":     repo.Archived,
		},
		Confidence: confidence,
		ScrapedAt:  time.Now(),
	}
	if len(repo.CreatedAt) >= 4 {
		if year, err := strconv.Atoi(repo.CreatedAt[:4]); err == nil {
			cand.PublicationYear = &year
		}
	}
	return cand
}

// Details lädt ein einzelnes Repository ("owner/name").
func (f *Fetcher) Details(ctx context.Context, repoName string) (*models.ScrapedCandidate, error) {
	var repo Repository
	if err := f.getJSON(ctx, f.Config.GitHubBaseURL+"/repos/"+repoName, &repo); err != nil {
		return nil, err
	}

	cand := mapRepository(&repo)
	cand.Confidence = 0.95
	if repo.License != nil {
		cand.Extra["license_url"] = repo.License.URL
	}
	cand.Extra["open_issues"] = repo.OpenIssues
	return cand, nil
}
