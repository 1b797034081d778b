package musicbrainz

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

// politenessDelay ist die von MusicBrainz geforderte Pause zwischen zwei
// Aufrufen (max. 1 Request pro Sekunde, mit Puffer).
const politenessDelay = 1100 * time.Millisecond

// Fetcher implementiert das Adapter-Interface für MusicBrainz (Musik).
type Fetcher struct {
	Config  *config.Config
	Logger  *zap.Logger
	limiter *rate.Limiter
}

// NewFetcher erstellt einen neuen MusicBrainz-Adapter.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Config:  cfg,
		Logger:  logger,
		limiter: rate.NewLimiter(rate.Every(politenessDelay), 1),
	}
}

// Name gibt den Namen des Adapters zurück.
func (f *Fetcher) Name() string {
	return "musicbrainz"
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
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("musicbrainz: unexpected status %d for %s", resp.StatusCode, rawURL)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Search sucht Aufnahmen auf MusicBrainz. Für andere Inhaltstypen liefert
// der Adapter nichts.
func (f *Fetcher) Search(ctx context.Context, query string, contentType models.ContentType) ([]*models.ScrapedCandidate, error) {
	if !contentType.IsUnknown() && contentType != models.TypeMusic {
		return nil, nil
	}

	log := f.Logger.With(zap.String("query", query))
	log.Info("Searching MusicBrainz")

	searchURL := fmt.Sprintf("%s/recording?query=%s&fmt=json&limit=10", f.Config.MusicBrainzBaseURL, url.QueryEscape(query))

	var searchResponse SearchResponse
	if err := f.getJSON(ctx, searchURL, &searchResponse); err != nil {
		return nil, err
	}

	candidates := make([]*models.ScrapedCandidate, 0, len(searchResponse.Recordings))
	for _, recording := range searchResponse.Recordings {
		candidates = append(candidates, mapRecording(&recording))
	}

	log.Info("MusicBrainz search finished", zap.Int("found", len(candidates)))
	return candidates, nil
}

// mapRecording konvertiert eine Aufnahme in einen Kandidaten.
func mapRecording(recording *Recording) *models.ScrapedCandidate {
	cand := &models.ScrapedCandidate{
		Title:       recording.Title,
		ContentType: models.TypeMusic,
		SourceURL:   "https://musicbrainz.org/recording/" + recording.ID,
		SourceName:  "MusicBrainz",
		Extra: map[string]any{
			"mbid":           recording.ID,
			"length_ms":      recording.LengthMs,
			"disambiguation": recording.Disambiguation,
		},
		Confidence: 0.9,
		ScrapedAt:  time.Now(),
	}
	if len(recording.ArtistCredit) > 0 {
		cand.Creator = recording.ArtistCredit[0].Name
	}
	if len(recording.Releases) > 0 {
		cand.PublicationYear = util.ExtractYear(recording.Releases[0].Date)
	}
	return cand
}

// Details lädt eine Aufnahme samt Künstler-Lebensdaten.
func (f *Fetcher) Details(ctx context.Context, mbid string) (*models.ScrapedCandidate, error) {
	detailsURL := fmt.Sprintf("%s/recording/%s?inc=artists+releases&fmt=json", f.Config.MusicBrainzBaseURL, mbid)

	var recording Recording
	if err := f.getJSON(ctx, detailsURL, &recording); err != nil {
		return nil, err
	}

	cand := mapRecording(&recording)
	cand.SourceURL = "https://musicbrainz.org/recording/" + mbid

	if len(recording.ArtistCredit) > 0 && recording.ArtistCredit[0].Artist.ID != "" {
		var artist Artist
		artistURL := fmt.Sprintf("%s/artist/%s?fmt=json", f.Config.MusicBrainzBaseURL, recording.ArtistCredit[0].Artist.ID)
		if err := f.getJSON(ctx, artistURL, &artist); err == nil && artist.LifeSpan.End != "" {
			cand.CreatorDeathYear = util.ExtractYear(artist.LifeSpan.End)
		}
	}
	return cand, nil
}
