package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"copyhound/config"
	"copyhound/models"
	"copyhound/providers"
	"copyhound/storage"
	"copyhound/util"
)

// stubAdapter ist ein Adapter mit festen Antworten für Collector-Tests.
type stubAdapter struct {
	name       string
	candidates []*models.ScrapedCandidate
	err        error
}

var _ providers.Adapter = (*stubAdapter)(nil)

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Search(ctx context.Context, query string, contentType models.ContentType) ([]*models.ScrapedCandidate, error) {
	return s.candidates, s.err
}

func (s *stubAdapter) Details(ctx context.Context, id string) (*models.ScrapedCandidate, error) {
	return nil, errors.New("not implemented")
}

func collectorConfig() *config.Config {
	return &config.Config{AdapterTimeoutSeconds: 5}
}

func makeCandidate(title string, ct models.ContentType, confidence float64) *models.ScrapedCandidate {
	return &models.ScrapedCandidate{
		Title:       title,
		ContentType: ct,
		SourceName:  "stub",
		Confidence:  confidence,
		ScrapedAt:   time.Now(),
	}
}

func TestSearchAllSwallowsAdapterErrors(t *testing.T) {
	adapters := []providers.Adapter{
		&stubAdapter{name: "openlibrary", err: errors.New("upstream down")},
		&stubAdapter{name: "wikipedia", err: errors.New("timeout")},
	}
	c := NewCollector(collectorConfig(), storage.NewMemoryStore(), adapters, nil, zap.NewNop())

	results := c.SearchAll(context.Background(), "moby dick", models.TypeBook)
	assert.Empty(t, results)
}

func TestSearchAllMergesAndSortsByConfidence(t *testing.T) {
	adapters := []providers.Adapter{
		&stubAdapter{name: "openlibrary", candidates: []*models.ScrapedCandidate{
			makeCandidate("Moby Dick", models.TypeBook, 0.85),
		}},
		&stubAdapter{name: "wikipedia", candidates: []*models.ScrapedCandidate{
			makeCandidate("Moby-Dick; or, The Whale", models.TypeBook, 0.95),
		}},
	}
	c := NewCollector(collectorConfig(), storage.NewMemoryStore(), adapters, nil, zap.NewNop())

	results := c.SearchAll(context.Background(), "moby dick", models.TypeBook)
	require.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Confidence, results[1].Confidence)
}

func TestSearchAllStrictTypeFilter(t *testing.T) {
	adapters := []providers.Adapter{
		&stubAdapter{name: "github", candidates: []*models.ScrapedCandidate{
			makeCandidate("gorm", models.TypeCode, 0.9),
			makeCandidate("Gorm the Book", models.TypeBook, 0.9),
		}},
	}
	c := NewCollector(collectorConfig(), storage.NewMemoryStore(), adapters, nil, zap.NewNop())

	// "code" gehört zur Software-Gruppe und bleibt, das Buch fliegt raus.
	results := c.SearchAll(context.Background(), "gorm", models.TypeSoftware)
	require.Len(t, results, 1)
	assert.Equal(t, models.TypeCode, results[0].ContentType)
}

func TestSearchAllRoutesBySelectedAdapters(t *testing.T) {
	musicHit := makeCandidate("Abbey Road", models.TypeMusic, 0.9)
	adapters := []providers.Adapter{
		&stubAdapter{name: "musicbrainz", candidates: []*models.ScrapedCandidate{musicHit}},
		&stubAdapter{name: "github", candidates: []*models.ScrapedCandidate{
			makeCandidate("abbey-road-cli", models.TypeSoftware, 0.9),
		}},
	}
	c := NewCollector(collectorConfig(), storage.NewMemoryStore(), adapters, nil, zap.NewNop())

	// Für Musik wird GitHub gar nicht erst angefragt.
	results := c.SearchAll(context.Background(), "abbey road", models.TypeMusic)
	require.Len(t, results, 1)
	assert.Equal(t, "Abbey Road", results[0].Title)
}

func TestSearchAllRoutesPatentsAndFilms(t *testing.T) {
	adapters := []providers.Adapter{
		&stubAdapter{name: "patentsview", candidates: []*models.ScrapedCandidate{
			makeCandidate("Irrigation apparatus", models.TypePatent, 0.9),
		}},
		&stubAdapter{name: "imdb", candidates: []*models.ScrapedCandidate{
			makeCandidate("The Matrix", models.TypeFilm, 0.85),
		}},
		&stubAdapter{name: "openlibrary", candidates: []*models.ScrapedCandidate{
			makeCandidate("The Matrix Comics", models.TypeBook, 0.85),
		}},
	}
	c := NewCollector(collectorConfig(), storage.NewMemoryStore(), adapters, nil, zap.NewNop())

	results := c.SearchAll(context.Background(), "irrigation apparatus", models.TypePatent)
	require.Len(t, results, 1)
	assert.Equal(t, models.TypePatent, results[0].ContentType)

	results = c.SearchAll(context.Background(), "the matrix", models.TypeFilm)
	require.Len(t, results, 1)
	assert.Equal(t, "The Matrix", results[0].Title)
}

func TestIngestInsertsNewRecords(t *testing.T) {
	store := storage.NewMemoryStore()
	c := NewCollector(collectorConfig(), store, nil, nil, zap.NewNop())
	ctx := context.Background()

	year := 1851
	cand := makeCandidate("Moby Dick", models.TypeBook, 0.85)
	cand.Creator = "Herman Melville"
	cand.PublicationYear = &year

	merged, err := c.Ingest(ctx, []*models.ScrapedCandidate{cand})
	require.NoError(t, err)
	require.Len(t, merged, 1)

	rec, err := store.ByKey(ctx, "moby dick", models.TypeBook)
	require.NoError(t, err)
	assert.Equal(t, "Herman Melville", rec.Creator)
	assert.Equal(t, "unknown", rec.CopyrightStatus)
	assert.InDelta(t, 0.85, rec.DataConfidence, 1e-9)
}

func TestIngestSkipsMalformedCandidates(t *testing.T) {
	store := storage.NewMemoryStore()
	c := NewCollector(collectorConfig(), store, nil, nil, zap.NewNop())
	ctx := context.Background()

	merged, err := c.Ingest(ctx, []*models.ScrapedCandidate{
		makeCandidate("", models.TypeBook, 0.9),
		makeCandidate("Moby Dick", models.TypeBook, 0.85),
	})
	require.NoError(t, err)
	assert.Len(t, merged, 1)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestIngestMergesExistingRecord(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	deathYear := 1891
	existing := &models.WorkRecord{
		Title:            "Moby Dick",
		TitleNormalized:  "moby dick",
		ContentType:      models.TypeBook,
		Creator:          "Herman Melville",
		CreatorDeathYear: &deathYear,
		DataConfidence:   0.9,
		CopyrightStatus:  "public_domain",
	}
	require.NoError(t, store.Insert(ctx, existing))

	c := NewCollector(collectorConfig(), store, nil, nil, zap.NewNop())

	year := 1851
	cand := makeCandidate("Moby Dick", models.TypeBook, 0.6)
	cand.Creator = "" // darf das befüllte Feld nicht leeren
	cand.PublicationYear = &year

	merged, err := c.Ingest(ctx, []*models.ScrapedCandidate{cand})
	require.NoError(t, err)
	require.Len(t, merged, 1)

	rec, err := store.ByKey(ctx, "moby dick", models.TypeBook)
	require.NoError(t, err)

	// Befüllte Felder überleben, Leeres wird aufgefüllt, die Verlässlichkeit
	// sinkt nie.
	assert.Equal(t, "Herman Melville", rec.Creator)
	require.NotNil(t, rec.CreatorDeathYear)
	assert.Equal(t, 1891, *rec.CreatorDeathYear)
	require.NotNil(t, rec.PublicationYear)
	assert.Equal(t, 1851, *rec.PublicationYear)
	assert.InDelta(t, 0.9, rec.DataConfidence, 1e-9)
	assert.Equal(t, "public_domain", rec.CopyrightStatus)
	assert.NotNil(t, rec.LastVerifiedAt)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestIngestTakesHigherConfidence(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	c := NewCollector(collectorConfig(), store, nil, nil, zap.NewNop())

	_, err := c.Ingest(ctx, []*models.ScrapedCandidate{makeCandidate("Moby Dick", models.TypeBook, 0.6)})
	require.NoError(t, err)
	_, err = c.Ingest(ctx, []*models.ScrapedCandidate{makeCandidate("Moby Dick", models.TypeBook, 0.95)})
	require.NoError(t, err)

	rec, err := store.ByKey(ctx, "moby dick", models.TypeBook)
	require.NoError(t, err)
	assert.InDelta(t, 0.95, rec.DataConfidence, 1e-9)
}

func TestCollectForQueryStoresResults(t *testing.T) {
	store := storage.NewMemoryStore()
	adapters := []providers.Adapter{
		&stubAdapter{name: "openlibrary", candidates: []*models.ScrapedCandidate{
			makeCandidate("Moby Dick", models.TypeBook, 0.85),
			makeCandidate("Moby Dick; or, The Whale", models.TypeBook, 0.8),
		}},
	}
	c := NewCollector(collectorConfig(), store, adapters, nil, zap.NewNop())

	merged, err := c.CollectForQuery(context.Background(), "moby dick", models.TypeBook)
	require.NoError(t, err)
	assert.Len(t, merged, 2)

	status := c.Status()
	assert.False(t, status.Running)
	assert.Equal(t, 2, status.TotalCollected)
	assert.False(t, status.LastRun.IsZero())
}

func TestVerifyAndUpdateRequiresHighSimilarity(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	rec := &models.WorkRecord{
		Title:           "Moby Dick",
		TitleNormalized: util.NormalizeTitle("Moby Dick"),
		ContentType:     models.TypeBook,
		DataConfidence:  0.5,
	}
	require.NoError(t, store.Insert(ctx, rec))

	// Kandidat mit fremdem Titel: keine Übernahme.
	c := NewCollector(collectorConfig(), store, []providers.Adapter{
		&stubAdapter{name: "openlibrary", candidates: []*models.ScrapedCandidate{
			makeCandidate("Completely Different", models.TypeBook, 0.95),
		}},
	}, nil, zap.NewNop())

	got, err := c.VerifyAndUpdate(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastVerifiedAt)
	assert.InDelta(t, 0.5, got.DataConfidence, 1e-9)

	// Kandidat mit fast identischem Titel: Übernahme samt Zeitstempel.
	c = NewCollector(collectorConfig(), store, []providers.Adapter{
		&stubAdapter{name: "openlibrary", candidates: []*models.ScrapedCandidate{
			makeCandidate("Moby Dicke", models.TypeBook, 0.95),
		}},
	}, nil, zap.NewNop())

	got, err = c.VerifyAndUpdate(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastVerifiedAt)
	assert.InDelta(t, 0.95, got.DataConfidence, 1e-9)

	stored, err := store.ByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastVerifiedAt)
}
