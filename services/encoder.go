package services

import (
	"hash/fnv"
	"math"
	"strings"
	"sync"

	"copyhound/util"
)

// embeddingSize ist die feste Vektordimension aller Encoder.
const embeddingSize = 384

// TextEncoder liefert Vektor-Repräsentationen für Titeltexte. Die konkrete
// Strategie wird beim Verdrahten gewählt und an den Aufrufstellen nicht
// mehr unterschieden.
type TextEncoder interface {
	Encode(text string) []float64
}

// CosineSimilarity berechnet die Kosinus-Ähnlichkeit zweier Vektoren.
func CosineSimilarity(v1, v2 []float64) float64 {
	n := min(len(v1), len(v2))
	var dot, norm1, norm2 float64
	for i := 0; i < n; i++ {
		dot += v1[i] * v2[i]
	}
	for _, x := range v1 {
		norm1 += x * x
	}
	for _, x := range v2 {
		norm2 += x * x
	}
	if norm1 == 0 || norm2 == 0 {
		return 0
	}
	return dot / (math.Sqrt(norm1) * math.Sqrt(norm2))
}

// TFIDFEncoder baut ein Vokabular inkrementell auf und kodiert Texte als
// normalisierte TF-IDF-Vektoren. Vokabular, IDF-Werte und Vektor-Cache
// wachsen nur (append-only) und sind mutexgeschützt; leicht veraltete
// Cache-Einträge sind in Kauf genommen.
type TFIDFEncoder struct {
	mu       sync.Mutex
	vocab    map[string]int
	idf      map[string]float64
	docCount int
	cache    map[string][]float64
}

// NewTFIDFEncoder erstellt einen leeren TF-IDF-Encoder.
func NewTFIDFEncoder() *TFIDFEncoder {
	return &TFIDFEncoder{
		vocab: make(map[string]int),
		idf:   make(map[string]float64),
		cache: make(map[string][]float64),
	}
}

// Encode liefert den TF-IDF-Vektor des Textes. Unbekannte Wörter erweitern
// das Vokabular; liegt der Vokabularindex außerhalb der Vektordimension,
// fällt das Wort aus dem Vektor heraus.
func (e *TFIDFEncoder) Encode(text string) []float64 {
	if text == "" {
		return make([]float64, embeddingSize)
	}

	normalized := util.NormalizeTitle(text)

	e.mu.Lock()
	defer e.mu.Unlock()

	if vec, ok := e.cache[normalized]; ok {
		return vec
	}

	words := strings.Fields(normalized)
	for _, w := range words {
		if _, ok := e.vocab[w]; !ok {
			e.vocab[w] = len(e.vocab)
		}
	}

	vector := make([]float64, embeddingSize)
	if len(words) == 0 {
		return vector
	}

	tf := make(map[string]int)
	for _, w := range words {
		tf[w]++
	}

	for word, count := range tf {
		idx := e.vocab[word]
		if idx >= embeddingSize {
			continue
		}
		idfScore, ok := e.idf[word]
		if !ok {
			idfScore = 1.0
		}
		vector[idx] = float64(count) / float64(len(words)) * idfScore
	}

	normalizeVector(vector)
	e.cache[normalized] = vector
	return vector
}

// UpdateIDF aktualisiert die IDF-Werte mit neuen Dokumenten (z. B. den
// Titeln des Bestands beim Start).
func (e *TFIDFEncoder) UpdateIDF(documents []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.docCount += len(documents)

	docFreq := make(map[string]int)
	for _, doc := range documents {
		seen := make(map[string]struct{})
		for _, w := range strings.Fields(strings.ToLower(doc)) {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			docFreq[w]++
		}
	}

	for word, freq := range docFreq {
		e.idf[word] = math.Log(float64(e.docCount) / float64(1+freq))
	}

	// IDF-Änderungen machen gecachte Vektoren ungültig.
	e.cache = make(map[string][]float64)
}

// HashingEncoder kodiert Texte über Zeichen-Trigramm-Hashing. Er ist
// zustandslos und braucht kein Vokabular, verliert dafür die Wortebene.
type HashingEncoder struct{}

// NewHashingEncoder erstellt einen Trigramm-Hashing-Encoder.
func NewHashingEncoder() *HashingEncoder {
	return &HashingEncoder{}
}

// Encode liefert den normalisierten Trigramm-Hash-Vektor des Textes.
func (e *HashingEncoder) Encode(text string) []float64 {
	vector := make([]float64, embeddingSize)
	if text == "" {
		return vector
	}

	normalized := util.NormalizeTitle(text)
	runes := []rune(" " + normalized + " ")
	if len(runes) < 3 {
		return vector
	}

	for i := 0; i+3 <= len(runes); i++ {
		h := fnv.New32a()
		h.Write([]byte(string(runes[i : i+3])))
		vector[h.Sum32()%embeddingSize]++
	}

	normalizeVector(vector)
	return vector
}

func normalizeVector(v []float64) {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
}
