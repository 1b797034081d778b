package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"copyhound/config"
	"copyhound/models"
	"copyhound/providers"
	"copyhound/storage"
	"copyhound/util"
)

// adapterRouting wählt die Katalog-Adapter pro Inhaltstyp. Unbekannte
// Typen laufen über alle Adapter.
var adapterRouting = map[models.ContentType][]string{
	models.TypeBook:      {"openlibrary", "wikipedia"},
	models.TypeMusic:     {"musicbrainz", "wikipedia"},
	models.TypeFilm:      {"imdb", "wikipedia"},
	models.TypeMovie:     {"imdb", "wikipedia"},
	models.TypeSoftware:  {"github", "wikipedia"},
	models.TypeCode:      {"github", "wikipedia"},
	models.TypeLibrary:   {"github", "wikipedia"},
	models.TypePatent:    {"patentsview", "wikipedia"},
	models.TypeTrademark: {"wikipedia"},
	models.TypeAcademic:  {"openalex", "wikipedia"},
	models.TypeArticle:   {"openalex", "wikipedia"},
	models.TypeArtwork:   {"wikipedia"},
	models.TypeImage:     {"wikipedia"},
	models.TypeProject:   {"github", "wikipedia"},
	models.TypeCompany:   {"wikipedia"},
}

// CollectorStatus beschreibt den Zustand des Collectors für /stats.
type CollectorStatus struct {
	Running        bool      `json:"running"`
	LastRun        time.Time `json:"last_run"`
	TotalCollected int       `json:"total_collected"`
	AdapterCount   int       `json:"adapter_count"`
}

// Collector orchestriert die Katalog-Adapter und führt deren Kandidaten in
// den Bestand zusammen (Merge/Dedup über den Schlüssel aus normalisiertem
// Titel und Inhaltstyp).
type Collector struct {
	cfg      *config.Config
	store    storage.RecordStore
	adapters []providers.Adapter
	counter  prometheus.Counter
	logger   *zap.Logger

	mu             sync.Mutex
	running        bool
	lastRun        time.Time
	totalCollected int
}

// NewCollector erstellt einen Collector. counter zählt neu angelegte
// Datensätze und darf nil sein.
func NewCollector(cfg *config.Config, store storage.RecordStore, adapters []providers.Adapter, counter prometheus.Counter, logger *zap.Logger) *Collector {
	return &Collector{
		cfg:      cfg,
		store:    store,
		adapters: adapters,
		counter:  counter,
		logger:   logger,
	}
}

// selectAdapters wählt die Adapter für den Inhaltstyp anhand der
// Routing-Tabelle.
func (c *Collector) selectAdapters(contentType models.ContentType) []providers.Adapter {
	names, ok := adapterRouting[contentType]
	if !ok || contentType.IsUnknown() {
		return c.adapters
	}

	nameSet := make(map[string]struct{}, len(names))
	for _, n := range names {
		nameSet[n] = struct{}{}
	}

	var selected []providers.Adapter
	for _, a := range c.adapters {
		if _, ok := nameSet[a.Name()]; ok {
			selected = append(selected, a)
		}
	}
	if len(selected) == 0 {
		return c.adapters
	}
	return selected
}

// SearchAll fragt die passenden Adapter nebenläufig ab. Einzelne
// Adapter-Fehler werden protokolliert und zu null Kandidaten
// zusammengefaltet; die Funktion meldet selbst nie einen Fehler.
// Das Ergebnis ist typgefiltert und nach Verlässlichkeit sortiert.
func (c *Collector) SearchAll(ctx context.Context, query string, contentType models.ContentType) []*models.ScrapedCandidate {
	log := c.logger.With(zap.String("query", query), zap.String("content_type", string(contentType)))

	selected := c.selectAdapters(contentType)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []*models.ScrapedCandidate
	)

	for _, adapter := range selected {
		wg.Add(1)
		go func(a providers.Adapter) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, c.cfg.AdapterTimeout())
			defer cancel()

			candidates, err := a.Search(callCtx, query, contentType)
			if err != nil {
				log.Warn("Adapter search failed", zap.String("adapter", a.Name()), zap.Error(err))
				return
			}

			mu.Lock()
			results = append(results, candidates...)
			mu.Unlock()
		}(adapter)
	}
	wg.Wait()

	// Strikte Typfilterung über die Äquivalenzgruppen.
	if !contentType.IsUnknown() {
		var filtered []*models.ScrapedCandidate
		for _, cand := range results {
			if contentType.Matches(cand.ContentType) {
				filtered = append(filtered, cand)
			}
		}
		results = filtered
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	log.Info("Adapter search finished", zap.Int("candidates", len(results)))
	return results
}

// Ingest validiert Kandidaten und führt sie in den Bestand zusammen.
// Kaputte Kandidaten (ohne Titel) werden übersprungen; ein Store-Fehler
// bricht die ganze Charge ab und verwirft deren Schreibzugriffe.
func (c *Collector) Ingest(ctx context.Context, candidates []*models.ScrapedCandidate) ([]*models.WorkRecord, error) {
	var merged []*models.WorkRecord

	err := c.store.Transaction(ctx, func(tx storage.RecordStore) error {
		merged = merged[:0]
		for _, cand := range candidates {
			if cand.Title == "" {
				c.logger.Warn("Skipping candidate without title", zap.String("source", cand.SourceName))
				continue
			}

			rec, err := c.mergeCandidate(ctx, tx, cand)
			if err != nil {
				return err
			}
			merged = append(merged, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingest failed: %w", err)
	}
	return merged, nil
}

// mergeCandidate schreibt einen Kandidaten in den Bestand: Update des
// vorhandenen Datensatzes oder Insert mit Status "unknown". Ein verlorenes
// Insert-Rennen wechselt auf den Update-Pfad.
func (c *Collector) mergeCandidate(ctx context.Context, store storage.RecordStore, cand *models.ScrapedCandidate) (*models.WorkRecord, error) {
	titleNormalized := util.NormalizeTitle(cand.Title)
	contentType := cand.ContentType
	if contentType == "" {
		contentType = models.TypeUnknown
	}

	existing, err := store.ByKey(ctx, titleNormalized, contentType)
	if err == nil {
		applyCandidate(existing, cand)
		if err := store.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	rec := &models.WorkRecord{
		Title:            cand.Title,
		TitleNormalized:  titleNormalized,
		ContentType:      contentType,
		Creator:          cand.Creator,
		CreatorDeathYear: cand.CreatorDeathYear,
		PublicationYear:  cand.PublicationYear,
		SourceURL:        cand.SourceURL,
		SourceName:       cand.SourceName,
		DataConfidence:   cand.Confidence,
		CopyrightStatus:  "unknown",
	}

	err = store.Insert(ctx, rec)
	if errors.Is(err, storage.ErrDuplicateKey) {
		// Konkurrierendes Insert mit demselben Schlüssel hat gewonnen.
		existing, err := store.ByKey(ctx, titleNormalized, contentType)
		if err != nil {
			return nil, err
		}
		applyCandidate(existing, cand)
		if err := store.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	if c.counter != nil {
		c.counter.Inc()
	}
	return rec, nil
}

// applyCandidate überträgt Kandidatendaten auf einen vorhandenen Datensatz:
// leere Felder werden aufgefüllt, befüllte nie mit Leerem überschrieben;
// die Verlässlichkeit steigt nur monoton.
func applyCandidate(rec *models.WorkRecord, cand *models.ScrapedCandidate) {
	if cand.Creator != "" && rec.Creator == "" {
		rec.Creator = cand.Creator
	}
	if cand.CreatorDeathYear != nil && rec.CreatorDeathYear == nil {
		rec.CreatorDeathYear = cand.CreatorDeathYear
	}
	if cand.PublicationYear != nil && rec.PublicationYear == nil {
		rec.PublicationYear = cand.PublicationYear
	}
	if cand.Confidence > rec.DataConfidence {
		rec.DataConfidence = cand.Confidence
	}
	now := time.Now()
	rec.LastVerifiedAt = &now
}

// CollectForQuery ist der Sammelpfad der Suche: Adapter abfragen und die
// Kandidaten in den Bestand übernehmen.
func (c *Collector) CollectForQuery(ctx context.Context, query string, contentType models.ContentType) ([]*models.WorkRecord, error) {
	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.lastRun = time.Now()
		c.mu.Unlock()
	}()

	candidates := c.SearchAll(ctx, query, contentType)
	if len(candidates) == 0 {
		return nil, nil
	}

	merged, err := c.Ingest(ctx, candidates)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.totalCollected += len(merged)
	c.mu.Unlock()

	c.logger.Info("Collection finished",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
		zap.Int("merged", len(merged)))
	return merged, nil
}

// VerifyAndUpdate recherchiert einen vorhandenen Datensatz nach und
// übernimmt den besten Treffer, wenn die Titelähnlichkeit über 0.8 liegt.
func (c *Collector) VerifyAndUpdate(ctx context.Context, id uint) (*models.WorkRecord, error) {
	rec, err := c.store.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load record %d: %w", id, err)
	}

	candidates := c.SearchAll(ctx, rec.Title, rec.ContentType)
	if len(candidates) == 0 {
		return rec, nil
	}

	var best *models.ScrapedCandidate
	bestScore := 0.0
	for _, cand := range candidates {
		if sim := util.SimilarityRatio(rec.Title, cand.Title); sim > bestScore {
			bestScore = sim
			best = cand
		}
	}

	if best != nil && bestScore > 0.8 {
		applyCandidate(rec, best)
		if err := c.store.Save(ctx, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Status liefert den Collector-Zustand für den Statistik-Endpunkt.
func (c *Collector) Status() CollectorStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CollectorStatus{
		Running:        c.running,
		LastRun:        c.lastRun,
		TotalCollected: c.totalCollected,
		AdapterCount:   len(c.adapters),
	}
}
