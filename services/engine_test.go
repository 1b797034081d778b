package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"copyhound/config"
	"copyhound/models"
	"copyhound/storage"
	"copyhound/util"
)

func testConfig() *config.Config {
	return &config.Config{
		MaxSearchResults: 10,
		MinSimilarity:    0.6,
	}
}

func newTestEngine(t *testing.T, records storage.RecordStore) (*SearchEngine, *storage.MemorySearchLogStore) {
	t.Helper()
	logs := storage.NewMemorySearchLogStore()
	speller := NewSpellCorrector(zap.NewNop())
	engine := NewSearchEngine(testConfig(), records, logs, speller, NewTFIDFEncoder(), nil, NoopPredictor{}, zap.NewNop())
	return engine, logs
}

func seedRecord(t *testing.T, s storage.RecordStore, title string, ct models.ContentType, confidence float64) *models.WorkRecord {
	t.Helper()
	rec := &models.WorkRecord{
		Title:           title,
		TitleNormalized: util.NormalizeTitle(title),
		ContentType:     ct,
		CopyrightStatus: "unknown",
		DataConfidence:  confidence,
	}
	require.NoError(t, s.Insert(context.Background(), rec))
	return rec
}

func TestSearchRejectsInvalidQueries(t *testing.T) {
	engine, _ := newTestEngine(t, storage.NewMemoryStore())
	ctx := context.Background()

	_, err := engine.Search(ctx, SearchRequest{Query: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = engine.Search(ctx, SearchRequest{Query: strings.Repeat("x", 501)})
	assert.ErrorIs(t, err, ErrQueryTooLong)
}

func TestSearchExactMatchRanksFirst(t *testing.T) {
	store := storage.NewMemoryStore()
	seedRecord(t, store, "The Great Gatsby", models.TypeBook, 0.9)
	seedRecord(t, store, "Great Expectations", models.TypeBook, 0.9)
	seedRecord(t, store, "Moby Dick", models.TypeBook, 0.9)

	engine, _ := newTestEngine(t, store)
	resp, err := engine.Search(context.Background(), SearchRequest{Query: "The Great Gatsby"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	assert.Equal(t, "The Great Gatsby", resp.Results[0].Title)
	assert.Greater(t, resp.Results[0].Score, 0.5)
	assert.Empty(t, resp.CorrectedQuery)
	assert.NotZero(t, resp.SearchID)
	assert.NotEmpty(t, resp.SessionID)
}

func TestSearchCorrectsTypo(t *testing.T) {
	store := storage.NewMemoryStore()
	seedRecord(t, store, "Harry Potter", models.TypeBook, 0.9)

	engine, _ := newTestEngine(t, store)
	resp, err := engine.Search(context.Background(), SearchRequest{Query: "harry poter"})
	require.NoError(t, err)

	assert.Equal(t, "harry potter", resp.CorrectedQuery)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "Harry Potter", resp.Results[0].Title)
	assert.Contains(t, resp.Explanation, "corrected from")
}

func TestSearchNoResults(t *testing.T) {
	engine, _ := newTestEngine(t, storage.NewMemoryStore())
	resp, err := engine.Search(context.Background(), SearchRequest{Query: "completely unheard of title"})
	require.NoError(t, err)

	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.TotalFound)
	assert.NotEmpty(t, resp.Explanation)
}

func TestSearchRespectsMaxResults(t *testing.T) {
	store := storage.NewMemoryStore()
	for _, title := range []string{
		"Gatsby One", "Gatsby Two", "Gatsby Three", "Gatsby Four", "Gatsby Five",
	} {
		seedRecord(t, store, title, models.TypeBook, 0.8)
	}

	engine, _ := newTestEngine(t, store)
	resp, err := engine.Search(context.Background(), SearchRequest{Query: "gatsby", MaxResults: 3})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(resp.Results), 3)
}

func TestSearchContentTypeFilter(t *testing.T) {
	store := storage.NewMemoryStore()
	seedRecord(t, store, "Solaris", models.TypeBook, 0.9)
	seedRecord(t, store, "Solaris the Film", models.TypeFilm, 0.9)

	engine, _ := newTestEngine(t, store)
	resp, err := engine.Search(context.Background(), SearchRequest{Query: "solaris", ContentType: models.TypeFilm})
	require.NoError(t, err)

	require.NotEmpty(t, resp.Results)
	for _, r := range resp.Results {
		assert.Equal(t, models.TypeFilm, r.ContentType)
	}
}

func TestScoreStaysInRange(t *testing.T) {
	engine, _ := newTestEngine(t, storage.NewMemoryStore())

	records := []*models.WorkRecord{
		{Title: "The Great Gatsby", DataConfidence: 1.0},
		{Title: "Completely Unrelated Thing", DataConfidence: 0},
		{Title: "gatsby", DataConfidence: 0.5},
		{Title: "", DataConfidence: 0.5},
	}
	queries := []string{"the great gatsby", "gatsby", "zzz qqq", "single"}

	for _, q := range queries {
		qa := engine.analyzeQuery(q)
		for _, rec := range records {
			s := engine.score(q, rec, qa)
			assert.GreaterOrEqual(t, s, 0.0, "query %q title %q", q, rec.Title)
			assert.LessOrEqual(t, s, 1.0, "query %q title %q", q, rec.Title)
		}
	}
}

func TestScoreExactBeatsPartial(t *testing.T) {
	engine, _ := newTestEngine(t, storage.NewMemoryStore())
	qa := engine.analyzeQuery("the great gatsby")

	exact := engine.score("the great gatsby", &models.WorkRecord{Title: "The Great Gatsby", DataConfidence: 0.5}, qa)
	partial := engine.score("the great gatsby", &models.WorkRecord{Title: "The Great Train Robbery", DataConfidence: 0.5}, qa)

	assert.Greater(t, exact, 0.5)
	assert.Greater(t, exact, partial)
}

func TestScoreLowOverlapPenalty(t *testing.T) {
	engine, _ := newTestEngine(t, storage.NewMemoryStore())
	// Phrasenanfrage: MinWordMatchRatio 0.7, ein Treffer von drei Wörtern
	// liegt darunter und wird hart bestraft.
	qa := engine.analyzeQuery("great american novel")
	require.True(t, qa.IsPhrase)

	rec := &models.WorkRecord{Title: "Great Expectations", DataConfidence: 0.5}
	low := engine.score("great american novel", rec, qa)
	high := engine.score("great american novel", &models.WorkRecord{Title: "Great American Novel", DataConfidence: 0.5}, qa)
	assert.Greater(t, high, low)
	assert.Less(t, low, 0.5)

	// Dieselbe Anfrage ohne greifende Überlappschwelle: die Differenz muss
	// genau dem auf ein Fünftel gestutzten Phrasenanteil entsprechen
	// (Überlapp 1/3, keine Bigramme).
	lenient := qa
	lenient.MinWordMatchRatio = 0.3
	unpenalized := engine.score("great american novel", rec, lenient)
	rawPhrase := (1.0 / 3.0) * 0.7
	assert.InDelta(t, 0.8*phraseWeight*rawPhrase, unpenalized-low, 1e-9)
}

func TestAnalyzeQuery(t *testing.T) {
	engine, _ := newTestEngine(t, storage.NewMemoryStore())

	qa := engine.analyzeQuery("the great gatsby")
	assert.True(t, qa.MultiWord)
	assert.False(t, qa.IsPhrase, "kurzes Füllwort verhindert Phrasen-Einstufung")
	assert.InDelta(t, 0.3, qa.MinWordMatchRatio, 1e-9)

	qa = engine.analyzeQuery("great gatsby")
	assert.True(t, qa.IsPhrase)
	assert.InDelta(t, 0.7, qa.MinWordMatchRatio, 1e-9)

	qa = engine.analyzeQuery("patent for irrigation apparatus")
	assert.Equal(t, models.TypePatent, qa.SuggestedType)

	qa = engine.analyzeQuery("novel about whales")
	assert.Equal(t, models.TypeBook, qa.SuggestedType)

	qa = engine.analyzeQuery("gatsby")
	assert.False(t, qa.MultiWord)
}

func TestSuggestionsDeduplicateCreatorsByNormalizedName(t *testing.T) {
	engine, _ := newTestEngine(t, storage.NewMemoryStore())

	results := []scoredRecord{
		{rec: &models.WorkRecord{ID: 1, Title: "A Study in Scarlet", Creator: "Sir Arthur Conan Doyle"}, score: 0.9},
		{rec: &models.WorkRecord{ID: 2, Title: "The Sign of the Four", Creator: "Arthur Conan Doyle"}, score: 0.8},
	}

	suggestions := engine.suggestions("sherlock holmes", results)

	var creatorSuggestions []string
	for _, s := range suggestions {
		if strings.HasPrefix(s, "Works by ") {
			creatorSuggestions = append(creatorSuggestions, s)
		}
	}
	require.Len(t, creatorSuggestions, 1, "Anrede-Variante desselben Urhebers ergibt keinen zweiten Vorschlag")
	assert.Equal(t, "Works by Sir Arthur Conan Doyle", creatorSuggestions[0])
}

func TestRankAndDeduplicate(t *testing.T) {
	engine, _ := newTestEngine(t, storage.NewMemoryStore())

	results := []scoredRecord{
		{rec: &models.WorkRecord{ID: 1, Title: "The Great Gatsby"}, score: 0.9},
		{rec: &models.WorkRecord{ID: 2, Title: "the great gatsby"}, score: 0.8}, // Duplikat nach Normalisierung
		{rec: &models.WorkRecord{ID: 3, Title: "Great Expectations"}, score: 0.4},
		{rec: &models.WorkRecord{ID: 4, Title: "Noise"}, score: 0.05}, // unter der Schwelle
		{rec: &models.WorkRecord{ID: 5, Title: "Moby Dick"}, score: 0.95},
	}

	ranked := engine.rankAndDeduplicate(results, 10)
	require.Len(t, ranked, 3)
	assert.Equal(t, uint(5), ranked[0].rec.ID)
	assert.Equal(t, uint(1), ranked[1].rec.ID)
	assert.Equal(t, uint(3), ranked[2].rec.ID)

	truncated := engine.rankAndDeduplicate(results, 2)
	assert.Len(t, truncated, 2)
}

func TestLearnFromSelectionUpdatesLogAndSpeller(t *testing.T) {
	store := storage.NewMemoryStore()
	rec := seedRecord(t, store, "Harry Potter", models.TypeBook, 0.9)

	engine, logs := newTestEngine(t, store)
	ctx := context.Background()

	resp, err := engine.Search(ctx, SearchRequest{Query: "hary pottre"})
	require.NoError(t, err)
	require.NotZero(t, resp.SearchID)

	require.NoError(t, engine.LearnFromSelection(ctx, resp.SearchID, rec.ID))

	entry, err := logs.ByID(ctx, resp.SearchID)
	require.NoError(t, err)
	require.NotNil(t, entry.SelectedRecordID)
	assert.Equal(t, rec.ID, *entry.SelectedRecordID)

	// Die gleiche Anfrage wird jetzt direkt korrigiert.
	corrected, wasCorrected := engine.speller.Correct("hary pottre")
	assert.True(t, wasCorrected)
	assert.Equal(t, "harry potter", corrected)
}

func TestRecordFeedback(t *testing.T) {
	store := storage.NewMemoryStore()
	seedRecord(t, store, "Moby Dick", models.TypeBook, 0.9)

	engine, logs := newTestEngine(t, store)
	ctx := context.Background()

	resp, err := engine.Search(ctx, SearchRequest{Query: "moby dick"})
	require.NoError(t, err)

	rating := 4
	require.NoError(t, engine.RecordFeedback(ctx, resp.SearchID, true, &rating))

	entry, err := logs.ByID(ctx, resp.SearchID)
	require.NoError(t, err)
	assert.True(t, entry.WasSuccessful)
	require.NotNil(t, entry.FeedbackScore)
	assert.Equal(t, 4, *entry.FeedbackScore)
}

func TestStats(t *testing.T) {
	store := storage.NewMemoryStore()
	seedRecord(t, store, "Moby Dick", models.TypeBook, 0.9)

	engine, _ := newTestEngine(t, store)
	ctx := context.Background()

	_, err := engine.Search(ctx, SearchRequest{Query: "moby dick"})
	require.NoError(t, err)

	stats := engine.Stats(ctx)
	assert.EqualValues(t, int64(1), stats["record_count"])
	assert.EqualValues(t, int64(1), stats["searches_today"])
}
