package patentsview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"copyhound/config"
	"copyhound/models"
	"copyhound/util"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// patentTermYears ist die US-Laufzeit eines Utility-Patents ab Erteilung.
const patentTermYears = 20

var resultFields = []string{
	"patent_number", "patent_title", "patent_date", "patent_abstract",
	"inventor_first_name", "inventor_last_name", "assignee_organization",
	"patent_type",
}

// Fetcher implementiert das Adapter-Interface für die PatentsView-API
// (USPTO-Patente). Die API erwartet ihre Abfrage als JSON per POST.
type Fetcher struct {
	Config  *config.Config
	Logger  *zap.Logger
	limiter *rate.Limiter
}

// NewFetcher erstellt einen neuen PatentsView-Adapter.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config:  cfg,
		Logger:  logger,
		limiter: rate.NewLimiter(rate.Every(cfg.ScrapingDelay()), 1),
	}
}

// Name gibt den Namen des Adapters zurück.
func (f *Fetcher) Name() string {
	return "patentsview"
}

func (f *Fetcher) postJSON(ctx context.Context, query searchQuery, out any) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(query)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.Config.PatentsViewBaseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", f.Config.UserAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("patentsview: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Search sucht Patente über die Titel-Volltextsuche. Für andere
// Inhaltstypen liefert der Adapter nichts.
func (f *Fetcher) Search(ctx context.Context, query string, contentType models.ContentType) ([]*models.ScrapedCandidate, error) {
	if !contentType.IsUnknown() && contentType != models.TypePatent {
		return nil, nil
	}

	log := f.Logger.With(zap.String("query", query))
	log.Info("Searching PatentsView")

	var searchResponse SearchResponse
	err := f.postJSON(ctx, searchQuery{
		Query:   map[string]any{"_text_any": map[string]any{"patent_title": query}},
		Fields:  resultFields,
		Options: map[string]any{"per_page": 10},
	}, &searchResponse)
	if err != nil {
		return nil, err
	}

	candidates := make([]*models.ScrapedCandidate, 0, len(searchResponse.Patents))
	for _, patent := range searchResponse.Patents {
		candidates = append(candidates, mapPatent(&patent))
	}

	log.Info("PatentsView search finished", zap.Int("found", len(candidates)))
	return candidates, nil
}

// mapPatent konvertiert ein Patent in einen Kandidaten.
func mapPatent(patent *Patent) *models.ScrapedCandidate {
	year := util.ExtractYear(patent.PatentDate)

	// Laufzeit ab Erteilung; abgelaufene Patente sind als solche markiert.
	ipStatus := "active"
	if year != nil && time.Now().Year()-*year > patentTermYears {
		ipStatus = "expired"
	}

	cand := &models.ScrapedCandidate{
		Title:           patent.PatentTitle,
		PublicationYear: year,
		ContentType:     models.TypePatent,
		SourceURL:       "https://patents.google.com/patent/US" + patent.PatentNumber,
		SourceName:      "USPTO Patent Database",
		Description:     patent.PatentAbstract,
		Extra: map[string]any{
			"patent_number": patent.PatentNumber,
			"patent_type":   patent.PatentType,
			"ip_status":     ipStatus,
			"expiry_years":  patentTermYears,
		},
		Confidence: 0.9,
		ScrapedAt:  time.Now(),
	}
	if len(patent.Inventors) > 0 {
		inv := patent.Inventors[0]
		cand.Creator = strings.TrimSpace(inv.FirstName + " " + inv.LastName)
	}
	if len(patent.Assignees) > 0 {
		cand.Extra["assignee"] = patent.Assignees[0].Organization
	}
	return cand
}

// Details lädt ein Patent über seine Patentnummer.
func (f *Fetcher) Details(ctx context.Context, patentNumber string) (*models.ScrapedCandidate, error) {
	var searchResponse SearchResponse
	err := f.postJSON(ctx, searchQuery{
		Query:   map[string]any{"patent_number": patentNumber},
		Fields:  resultFields,
		Options: map[string]any{"per_page": 1},
	}, &searchResponse)
	if err != nil {
		return nil, err
	}
	if len(searchResponse.Patents) == 0 {
		return nil, fmt.Errorf("patentsview: patent %q not found", patentNumber)
	}
	return mapPatent(&searchResponse.Patents[0]), nil
}
