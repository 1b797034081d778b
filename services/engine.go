package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"copyhound/config"
	"copyhound/models"
	"copyhound/storage"
	"copyhound/util"
)

// Gewichte der Relevanzsignale. Exakt- und Phrasentreffer dominieren.
const (
	exactWeight    = 0.35
	phraseWeight   = 0.25
	semanticWeight = 0.25
	fuzzyWeight    = 0.15

	// minResultScore filtert irrelevante Treffer vor dem Ranking.
	minResultScore = 0.15

	maxQueryLength = 500
)

var (
	// ErrEmptyQuery meldet eine leere Suchanfrage.
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrQueryTooLong meldet eine Anfrage über der Längengrenze.
	ErrQueryTooLong = fmt.Errorf("query exceeds %d characters", maxQueryLength)
)

// techKeywords deuten auf Patent-/Software-Suchen hin.
var techKeywords = map[string]struct{}{
	"system": {}, "device": {}, "apparatus": {}, "method": {}, "process": {},
	"technology": {}, "software": {}, "hardware": {}, "algorithm": {},
	"machine": {}, "engine": {}, "sensor": {}, "controller": {}, "network": {},
	"protocol": {}, "interface": {}, "platform": {}, "framework": {},
	"autonomous": {}, "automated": {}, "smart": {}, "intelligent": {},
	"ai": {}, "ml": {}, "iot": {}, "electric": {}, "electronic": {},
	"digital": {}, "wireless": {}, "bluetooth": {}, "wifi": {}, "robot": {},
	"robotic": {}, "automotive": {}, "vehicle": {}, "car": {}, "drone": {},
	"camera": {}, "battery": {}, "solar": {}, "renewable": {}, "energy": {},
	"power": {}, "chip": {}, "processor": {}, "computer": {}, "computing": {},
	"cloud": {}, "database": {}, "server": {}, "api": {}, "mobile": {},
}

// creativeKeywords deuten auf kreative Werke hin.
var creativeKeywords = map[string]struct{}{
	"song": {}, "album": {}, "music": {}, "book": {}, "novel": {}, "story": {},
	"poem": {}, "poetry": {}, "film": {}, "movie": {}, "documentary": {},
	"series": {}, "show": {}, "episode": {}, "symphony": {}, "concerto": {},
	"opera": {}, "play": {}, "drama": {}, "comedy": {}, "painting": {},
	"artwork": {},
}

// stopwords disqualifizieren eine Mehrwortanfrage als feste Phrase.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "for": {}, "and": {}, "or": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "by": {},
}

// QueryAnalysis beschreibt die erkannte Absicht einer Suchanfrage und
// steuert Matching-Schwellen und Strafterme.
type QueryAnalysis struct {
	IsTechnical   bool
	MultiWord     bool
	IsPhrase      bool
	SuggestedType models.ContentType
	WordCount     int

	// MinWordMatchRatio ist der geforderte Wortüberlapp: 0.7 für Phrasen,
	// sonst 0.3.
	MinWordMatchRatio float64
}

// SearchRequest ist die validierte Eingabe einer Suche.
type SearchRequest struct {
	Query             string
	ContentType       models.ContentType
	MaxResults        int
	IncludeWebResults bool
	SessionID         string
}

// SearchResult ist ein einzelner Treffer der Suche.
type SearchResult struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Creator         string             `json:"creator,omitempty"`
	PublicationYear *int               `json:"publication_year,omitempty"`
	ContentType     models.ContentType `json:"content_type"`
	CopyrightStatus string             `json:"copyright_status"`
	Score           float64            `json:"score"`
	Source          string             `json:"source,omitempty"`
}

// SearchResponse ist das vollständige Suchergebnis samt Erklärung.
type SearchResponse struct {
	Query          string         `json:"query"`
	CorrectedQuery string         `json:"corrected_query,omitempty"`
	Results        []SearchResult `json:"results"`
	TotalFound     int            `json:"total_found"`
	SearchTimeMs   int64          `json:"search_time_ms"`
	Explanation    string         `json:"explanation"`
	Suggestions    []string       `json:"suggestions,omitempty"`
	SearchID       uint           `json:"search_id"`
	SessionID      string         `json:"session_id"`
}

type scoredRecord struct {
	rec   *models.WorkRecord
	score float64
}

// SearchEngine kombiniert Rechtschreibkorrektur, lokale Suche, Relevanz-
// Scoring und die Nachrecherche über die Katalog-Adapter.
type SearchEngine struct {
	cfg       *config.Config
	records   storage.RecordStore
	logs      storage.SearchLogStore
	speller   *SpellCorrector
	encoder   TextEncoder
	collector *Collector
	predictor Predictor
	logger    *zap.Logger
}

// NewSearchEngine verdrahtet die Suche. collector darf nil sein, dann wird
// keine Web-Nachrecherche ausgeführt.
func NewSearchEngine(
	cfg *config.Config,
	records storage.RecordStore,
	logs storage.SearchLogStore,
	speller *SpellCorrector,
	encoder TextEncoder,
	collector *Collector,
	predictor Predictor,
	logger *zap.Logger,
) *SearchEngine {
	return &SearchEngine{
		cfg:       cfg,
		records:   records,
		logs:      logs,
		speller:   speller,
		encoder:   encoder,
		collector: collector,
		predictor: predictor,
		logger:    logger,
	}
}

// analyzeQuery bestimmt Absicht und Matching-Strategie der Anfrage.
func (e *SearchEngine) analyzeQuery(query string) QueryAnalysis {
	normalized := util.NormalizeTitle(query)
	words := strings.Fields(normalized)

	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[w] = struct{}{}
	}

	techMatches := 0
	creativeMatches := 0
	for w := range wordSet {
		if _, ok := techKeywords[w]; ok {
			techMatches++
		}
		if _, ok := creativeKeywords[w]; ok {
			creativeMatches++
		}
	}

	multiWord := len(wordSet) > 1

	// Eine Phrase ist eine Mehrwortanfrage ohne kurze Füllwörter.
	isPhrase := multiWord
	for w := range wordSet {
		if len(w) < 4 {
			if _, ok := stopwords[w]; ok {
				isPhrase = false
				break
			}
		}
	}

	suggested := models.TypeUnknown
	switch {
	case hasWord(wordSet, "patent") || (techMatches > creativeMatches && techMatches >= 2):
		suggested = models.TypePatent
	case hasWord(wordSet, "software") || hasWord(wordSet, "code") || hasWord(wordSet, "library"):
		suggested = models.TypeSoftware
	case hasWord(wordSet, "trademark") || hasWord(wordSet, "brand"):
		suggested = models.TypeTrademark
	case hasWord(wordSet, "book") || hasWord(wordSet, "novel") || hasWord(wordSet, "author") || hasWord(wordSet, "story"):
		suggested = models.TypeBook
	case hasWord(wordSet, "song") || hasWord(wordSet, "album") || hasWord(wordSet, "artist") || hasWord(wordSet, "band"):
		suggested = models.TypeMusic
	case hasWord(wordSet, "film") || hasWord(wordSet, "movie") || hasWord(wordSet, "director"):
		suggested = models.TypeFilm
	}

	minRatio := 0.3
	if isPhrase {
		minRatio = 0.7
	}

	return QueryAnalysis{
		IsTechnical:       techMatches > creativeMatches,
		MultiWord:         multiWord,
		IsPhrase:          isPhrase,
		SuggestedType:     suggested,
		WordCount:         len(wordSet),
		MinWordMatchRatio: minRatio,
	}
}

func hasWord(set map[string]struct{}, w string) bool {
	_, ok := set[w]
	return ok
}

// score berechnet die Relevanz eines Datensatzes für die Anfrage (0..1).
func (e *SearchEngine) score(query string, rec *models.WorkRecord, qa QueryAnalysis) float64 {
	normalizedQuery := util.NormalizeTitle(query)
	normalizedTitle := util.NormalizeTitle(rec.Title)

	queryWords := strings.Fields(normalizedQuery)
	titleWords := strings.Fields(normalizedTitle)

	// Exakt-Komponente
	exactScore := 0.0
	switch {
	case normalizedQuery == normalizedTitle:
		exactScore = 1.0
	case strings.Contains(normalizedTitle, normalizedQuery):
		exactScore = 0.85
	case strings.Contains(normalizedQuery, normalizedTitle):
		exactScore = 0.6
	}

	// Phrasen-/Wortüberlapp-Komponente
	phraseScore := 0.0
	if len(queryWords) > 1 {
		matching := 0
		for _, w := range queryWords {
			if strings.Contains(normalizedTitle, w) {
				matching++
			}
		}
		overlapRatio := float64(matching) / float64(len(queryWords))

		consecutive := 0
		for i := 0; i < len(queryWords)-1; i++ {
			bigram := queryWords[i] + " " + queryWords[i+1]
			if strings.Contains(normalizedTitle, bigram) {
				consecutive++
			}
		}

		phraseScore = overlapRatio * 0.7
		if consecutive > 0 {
			phraseScore += 0.3 * float64(consecutive) / float64(len(queryWords)-1)
		}

		// Harte Strafe bei zu geringem Wortüberlapp.
		if overlapRatio < qa.MinWordMatchRatio {
			phraseScore *= 0.2
		}
	} else {
		switch {
		case containsWord(titleWords, normalizedQuery):
			phraseScore = 0.8
		case strings.Contains(normalizedTitle, normalizedQuery):
			phraseScore = 0.5
		}
	}

	fuzzyScore := CombinedFuzzyScore(query, rec.Title)
	semanticScore := CosineSimilarity(e.encoder.Encode(query), e.encoder.Encode(rec.Title))

	confidence := rec.DataConfidence
	if confidence == 0 {
		confidence = 0.5
	}
	confidenceBoost := confidence * 0.05

	// Bei Mehrwortanfragen wird das Fuzzy-Gewicht halbiert, ohne die
	// übrigen Gewichte neu zu normieren; die Summe bleibt bewusst unter 1.
	effectiveFuzzy := fuzzyWeight
	if len(queryWords) > 1 {
		effectiveFuzzy *= 0.5
	}

	combined := exactWeight*exactScore +
		phraseWeight*phraseScore +
		semanticWeight*semanticScore +
		effectiveFuzzy*fuzzyScore +
		confidenceBoost

	if combined > 1 {
		combined = 1
	}
	if combined < 0 {
		combined = 0
	}
	return combined
}

func containsWord(words []string, w string) bool {
	for _, v := range words {
		if v == w {
			return true
		}
	}
	return false
}

// searchStore durchsucht den Bestand mit vier Strategien in fester
// Reihenfolge. Bereits gefundene Datensätze werden nicht erneut bewertet.
// Store-Fehler werden nur gemeldet, wenn gar nichts gefunden wurde.
func (e *SearchEngine) searchStore(ctx context.Context, query string, contentType models.ContentType, limit int, qa QueryAnalysis) ([]scoredRecord, error) {
	normalizedQuery := util.NormalizeTitle(query)
	queryWords := strings.Fields(normalizedQuery)

	var results []scoredRecord
	seen := make(map[uint]struct{})
	var storeErr error

	add := func(rec *models.WorkRecord, score float64) {
		if _, ok := seen[rec.ID]; ok {
			return
		}
		seen[rec.ID] = struct{}{}
		results = append(results, scoredRecord{rec: rec, score: score})
	}

	// Strategie 1: exakter Treffer auf dem normalisierten Titel.
	exact, err := e.records.ExactTitle(ctx, normalizedQuery, contentType, 5)
	if err != nil {
		storeErr = err
	}
	for _, rec := range exact {
		add(rec, 1.0)
	}

	// Strategie 2: vollständige Anfrage als Teilstring.
	contains, err := e.records.TitleContains(ctx, normalizedQuery, contentType, limit)
	if err != nil {
		storeErr = err
	}
	for _, rec := range contains {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		add(rec, e.score(query, rec, qa))
	}

	// Strategie 3: wortweise ODER-Suche.
	if len(queryWords) > 1 {
		var longWords []string
		for _, w := range queryWords {
			if len(w) > 2 {
				longWords = append(longWords, w)
			}
		}
		if len(longWords) > 0 {
			wordMatches, err := e.records.TitleContainsAny(ctx, longWords, contentType, limit*2)
			if err != nil {
				storeErr = err
			}
			for _, rec := range wordMatches {
				if _, ok := seen[rec.ID]; ok {
					continue
				}
				titleNormalized := util.NormalizeTitle(rec.Title)
				matching := 0
				for _, w := range queryWords {
					if strings.Contains(titleNormalized, w) {
						matching++
					}
				}
				overlapRatio := float64(matching) / float64(len(queryWords))

				if overlapRatio >= qa.MinWordMatchRatio || !qa.IsPhrase {
					score := e.score(query, rec, qa)
					if overlapRatio < 0.5 && qa.IsPhrase {
						score *= 0.5
					}
					add(rec, score)
				}
			}
		}
	} else {
		wordMatches, err := e.records.TitleContainsAny(ctx, queryWords, contentType, limit)
		if err != nil {
			storeErr = err
		}
		for _, rec := range wordMatches {
			if _, ok := seen[rec.ID]; ok {
				continue
			}
			add(rec, e.score(query, rec, qa))
		}
	}

	// Strategie 4: semantische Ähnlichkeit für die restlichen Plätze.
	if len(results) < limit {
		sample, err := e.records.Sample(ctx, contentType, limit*3)
		if err != nil {
			storeErr = err
		}

		queryVec := e.encoder.Encode(query)
		type semHit struct {
			rec *models.WorkRecord
			sim float64
		}
		var hits []semHit
		for _, rec := range sample {
			if _, ok := seen[rec.ID]; ok {
				continue
			}
			sim := CosineSimilarity(queryVec, e.encoder.Encode(rec.Title))
			if sim >= e.cfg.MinSimilarity {
				hits = append(hits, semHit{rec: rec, sim: sim})
			}
		}
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].sim > hits[j].sim })

		slots := limit - len(results)
		for i, h := range hits {
			if i >= slots {
				break
			}
			add(h.rec, h.sim)
		}
	}

	if len(results) == 0 && storeErr != nil {
		return nil, storeErr
	}
	return results, nil
}

// rankAndDeduplicate filtert unter minResultScore, dedupliziert nach
// normalisiertem Titel (der erste Treffer gewinnt) und sortiert absteigend.
func (e *SearchEngine) rankAndDeduplicate(results []scoredRecord, maxResults int) []scoredRecord {
	var filtered []scoredRecord
	for _, r := range results {
		if r.score >= minResultScore {
			filtered = append(filtered, r)
		}
	}

	seenTitles := make(map[string]struct{})
	var unique []scoredRecord
	for _, r := range filtered {
		normalized := util.NormalizeTitle(r.rec.Title)
		if _, ok := seenTitles[normalized]; ok {
			continue
		}
		seenTitles[normalized] = struct{}{}
		unique = append(unique, r)
	}

	sort.SliceStable(unique, func(i, j int) bool { return unique[i].score > unique[j].score })

	if len(unique) > maxResults {
		unique = unique[:maxResults]
	}
	return unique
}

// Search führt die komplette Suchpipeline aus: Korrektur, Bestandssuche,
// optionale Web-Nachrecherche, Ranking, Erklärung, Protokollierung.
func (e *SearchEngine) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	start := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if len(query) > maxQueryLength {
		return nil, ErrQueryTooLong
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = e.cfg.MaxSearchResults
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = util.NewSessionID()
	}

	correctedQuery, wasCorrected := e.speller.Correct(query)
	searchQuery := correctedQuery

	log := e.logger.With(zap.String("query", query), zap.String("session_id", sessionID))
	log.Info("Executing search",
		zap.String("corrected", correctedQuery),
		zap.Bool("was_corrected", wasCorrected))

	qa := e.analyzeQuery(searchQuery)
	if req.ContentType.IsUnknown() && !qa.SuggestedType.IsUnknown() {
		log.Info("Query suggests content type", zap.String("suggested_type", string(qa.SuggestedType)))
	}

	allResults, err := e.searchStore(ctx, searchQuery, req.ContentType, maxResults*2, qa)
	if err != nil {
		// Ohne lokale Treffer ist der Store-Fehler nicht kompensierbar.
		return nil, fmt.Errorf("store search failed: %w", err)
	}

	// Web-Nachrecherche nur bei dünner Trefferlage.
	if req.IncludeWebResults && len(allResults) < maxResults && e.collector != nil {
		newRecords, err := e.collector.CollectForQuery(ctx, searchQuery, req.ContentType)
		if err != nil {
			log.Warn("Web collection failed, serving local results only", zap.Error(err))
			if len(allResults) == 0 {
				return nil, fmt.Errorf("collect failed with no local results: %w", err)
			}
		}
		seen := make(map[uint]struct{}, len(allResults))
		for _, r := range allResults {
			seen[r.rec.ID] = struct{}{}
		}
		for _, rec := range newRecords {
			if _, ok := seen[rec.ID]; ok {
				continue
			}
			allResults = append(allResults, scoredRecord{rec: rec, score: e.score(searchQuery, rec, qa)})
		}
	}

	ranked := e.rankAndDeduplicate(allResults, maxResults)

	explanation := e.explanation(query, correctedQuery, wasCorrected, ranked, req.ContentType, qa)
	suggestions := e.suggestions(searchQuery, ranked)

	searchTimeMs := time.Since(start).Milliseconds()
	searchID := e.logSearch(ctx, query, correctedQuery, len(ranked), sessionID, searchTimeMs)

	results := make([]SearchResult, 0, len(ranked))
	for _, r := range ranked {
		status := r.rec.CopyrightStatus
		if status == "" {
			status = "unknown"
		}
		results = append(results, SearchResult{
			ID:              r.rec.ID,
			Title:           r.rec.Title,
			Creator:         r.rec.Creator,
			PublicationYear: r.rec.PublicationYear,
			ContentType:     r.rec.ContentType,
			CopyrightStatus: status,
			Score:           r.score,
			Source:          r.rec.SourceName,
		})
	}

	resp := &SearchResponse{
		Query:        query,
		Results:      results,
		TotalFound:   len(results),
		SearchTimeMs: searchTimeMs,
		Explanation:  explanation,
		Suggestions:  suggestions,
		SearchID:     searchID,
		SessionID:    sessionID,
	}
	if wasCorrected {
		resp.CorrectedQuery = correctedQuery
	}
	return resp, nil
}

// explanation erzeugt die menschenlesbare Begründung des Suchergebnisses.
func (e *SearchEngine) explanation(originalQuery, correctedQuery string, wasCorrected bool, results []scoredRecord, contentType models.ContentType, qa QueryAnalysis) string {
	var parts []string

	if wasCorrected {
		parts = append(parts, fmt.Sprintf("I understood you were looking for %q (corrected from %q).", correctedQuery, originalQuery))
	} else {
		parts = append(parts, fmt.Sprintf("Searching for %q.", originalQuery))
	}

	if !contentType.IsUnknown() {
		parts = append(parts, fmt.Sprintf("Filtered by content type: %s.", contentType))
	}

	if contentType.IsUnknown() && qa.IsTechnical && !qa.SuggestedType.IsUnknown() {
		parts = append(parts, fmt.Sprintf("Tip: This looks like a technical query. Try selecting '%s' as the content type for more relevant results.", qa.SuggestedType))
	}

	switch {
	case len(results) == 0:
		parts = append(parts, "I couldn't find any matching works in the local store or the web catalogs. Try a different search term or check the spelling.")
		if qa.IsTechnical {
			parts = append(parts, "For technology-related searches, try selecting 'patent' or 'software' as the content type.")
		}
	case len(results) == 1:
		r := results[0]
		confidence := "low"
		if r.score > 0.8 {
			confidence = "high"
		} else if r.score > 0.6 {
			confidence = "moderate"
		}
		ct := string(r.rec.ContentType)
		if ct == "" {
			ct = "unknown type"
		}
		parts = append(parts, fmt.Sprintf("Found 1 result with %s confidence. Best match: %q (%s).", confidence, r.rec.Title, ct))
	default:
		best := results[0]
		parts = append(parts, fmt.Sprintf("Found %d results. Best match: %q with %.0f%% relevance.", len(results), best.rec.Title, best.score*100))

		if best.score < 0.5 && qa.IsPhrase {
			parts = append(parts, "Results may not be exactly what you're looking for. Try a more specific search or select a content type.")
		}

		typeSet := make(map[models.ContentType]struct{})
		var types []string
		for _, r := range results {
			if r.rec.ContentType.IsUnknown() {
				continue
			}
			if _, ok := typeSet[r.rec.ContentType]; ok {
				continue
			}
			typeSet[r.rec.ContentType] = struct{}{}
			types = append(types, string(r.rec.ContentType))
		}
		if len(types) > 1 {
			parts = append(parts, fmt.Sprintf("Results include: %s.", strings.Join(types, ", ")))
		}
	}

	return strings.Join(parts, " ")
}

// suggestions erzeugt verwandte Suchvorschläge.
func (e *SearchEngine) suggestions(query string, results []scoredRecord) []string {
	suggestions := e.speller.Suggestions(query, 2)

	if len(results) > 0 {
		creatorSet := make(map[string]struct{})
		added := 0
		for i, r := range results {
			if i >= 3 || added >= 2 {
				break
			}
			if r.rec.Creator == "" {
				continue
			}
			// Dedup über den normalisierten Namen, damit "Sir Arthur Conan
			// Doyle" und "Arthur Conan Doyle" nur einen Vorschlag ergeben.
			creatorKey := util.NormalizeCreator(r.rec.Creator)
			if _, ok := creatorSet[creatorKey]; ok {
				continue
			}
			creatorSet[creatorKey] = struct{}{}
			suggestions = append(suggestions, "Works by "+r.rec.Creator)
			added++
		}

		if ct := results[0].rec.ContentType; !ct.IsUnknown() {
			suggestions = append(suggestions, fmt.Sprintf("More %ss", ct))
		}
	}

	var unique []string
	seen := make(map[string]struct{})
	for _, s := range suggestions {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		unique = append(unique, s)
	}
	if len(unique) > 5 {
		unique = unique[:5]
	}
	return unique
}

// logSearch protokolliert die Suche; Fehler beim Protokollieren brechen die
// Suche nicht ab.
func (e *SearchEngine) logSearch(ctx context.Context, originalQuery, correctedQuery string, resultCount int, sessionID string, searchTimeMs int64) uint {
	entry := &models.SearchLogEntry{
		QueryText:       originalQuery,
		QueryNormalized: util.NormalizeTitle(originalQuery),
		ResultCount:     resultCount,
		WasSuccessful:   resultCount > 0,
		SearchTimeMs:    searchTimeMs,
		SessionID:       sessionID,
		Timestamp:       time.Now(),
	}
	if correctedQuery != originalQuery {
		entry.CorrectedQuery = correctedQuery
	}

	if err := e.logs.Append(ctx, entry); err != nil {
		e.logger.Error("Failed to log search", zap.Error(err))
		return 0
	}
	return entry.ID
}

// LearnFromSelection verarbeitet eine bestätigte Trefferauswahl: der
// Korrektor lernt die Schreibweise, das Suchprotokoll erhält die Auswahl.
func (e *SearchEngine) LearnFromSelection(ctx context.Context, searchID, recordID uint) error {
	rec, err := e.records.ByID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("load selected record: %w", err)
	}

	entry, err := e.logs.ByID(ctx, searchID)
	if err != nil {
		return fmt.Errorf("load search log: %w", err)
	}

	e.speller.LearnFromSearch(entry.QueryText, rec.Title)

	entry.SelectedRecordID = &recordID
	if err := e.logs.Save(ctx, entry); err != nil {
		e.logger.Error("Failed to update search log", zap.Error(err))
	}

	if e.predictor != nil {
		if err := e.predictor.TrainIncremental(ctx, rec, rec.CopyrightStatus); err != nil {
			e.logger.Warn("Predictor training failed", zap.Error(err))
		}
	}
	return nil
}

// RecordFeedback trägt eine Nutzerbewertung in das Suchprotokoll nach.
func (e *SearchEngine) RecordFeedback(ctx context.Context, searchID uint, wasCorrect bool, rating *int) error {
	entry, err := e.logs.ByID(ctx, searchID)
	if err != nil {
		return fmt.Errorf("load search log: %w", err)
	}

	entry.WasSuccessful = wasCorrect
	entry.FeedbackScore = rating
	return e.logs.Save(ctx, entry)
}

// Stats liefert Kennzahlen der Suche für den Statistik-Endpunkt.
func (e *SearchEngine) Stats(ctx context.Context) map[string]any {
	recordCount, err := e.records.Count(ctx)
	if err != nil {
		e.logger.Warn("Failed to count records", zap.Error(err))
	}
	searchesToday, err := e.logs.CountSince(ctx, time.Now().Truncate(24*time.Hour))
	if err != nil {
		e.logger.Warn("Failed to count searches", zap.Error(err))
	}

	return map[string]any{
		"record_count":   recordCount,
		"searches_today": searchesToday,
		"weights": map[string]float64{
			"exact":    exactWeight,
			"phrase":   phraseWeight,
			"semantic": semanticWeight,
			"fuzzy":    fuzzyWeight,
		},
	}
}
