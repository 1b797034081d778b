package services

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// curatedCorrections enthält bekannte Falschschreibungen berühmter Werke
// und Urheber.
var curatedCorrections = map[string]string{
	"harry poter":   "harry potter",
	"hary potter":   "harry potter",
	"harrry potter": "harry potter",

	"lord of the ring": "lord of the rings",
	"starwars":         "star wars",
	"star war":         "star wars",
	"beatles":          "the beatles",
	"romeo juliet":     "romeo and juliet",

	"shakespear":      "shakespeare",
	"shakspeare":      "shakespeare",
	"micheal jackson": "michael jackson",
	"micheal":         "michael",
	"lenon":           "lennon",
	"beethovn":        "beethoven",
	"mozard":          "mozart",
	"tolstoi":         "tolstoy",
	"dostoevsky":      "dostoyevsky",
	"hemmingway":      "hemingway",
	"fitzgerld":       "fitzgerald",
}

// curatedSplits enthält bekannte Zusammenschreibungen.
var curatedSplits = map[string]string{
	"harrypotter":    "harry potter",
	"lordoftherings": "lord of the rings",
	"starwars":       "star wars",
	"gameofthrones":  "game of thrones",
}

// SpellCorrector korrigiert Tippfehler in Suchanfragen und lernt aus
// bestätigten Auswahlvorgängen. Alle Zustandszugriffe sind mutexgeschützt.
type SpellCorrector struct {
	logger *zap.Logger

	mu          sync.Mutex
	learned     map[string]string
	wordFreq    map[string]int
	knownTitles map[string]struct{}
}

// NewSpellCorrector erstellt einen Korrektor mit den kuratierten Tabellen.
func NewSpellCorrector(logger *zap.Logger) *SpellCorrector {
	return &SpellCorrector{
		logger:      logger,
		learned:     make(map[string]string),
		wordFreq:    make(map[string]int),
		knownTitles: make(map[string]struct{}),
	}
}

// Correct korrigiert die Anfrage und meldet, ob etwas geändert wurde.
// Prioritätskette: kuratierte Tabelle, gelernte Korrekturen, bekannter
// Titel (keine Änderung), Wortkorrektur per Editierdistanz, Zerlegung
// zusammengeschriebener Wörter.
func (s *SpellCorrector) Correct(text string) (string, bool) {
	if text == "" {
		return text, false
	}

	original := strings.ToLower(strings.TrimSpace(text))

	if fixed, ok := curatedCorrections[original]; ok {
		return fixed, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if fixed, ok := s.learned[original]; ok {
		return fixed, true
	}

	if _, ok := s.knownTitles[original]; ok {
		return text, false
	}

	words := strings.Fields(original)
	correctedWords := make([]string, 0, len(words))
	wasCorrected := false

	for _, word := range words {
		switch {
		case curatedCorrections[word] != "":
			correctedWords = append(correctedWords, curatedCorrections[word])
			wasCorrected = true
		case s.learned[word] != "":
			correctedWords = append(correctedWords, s.learned[word])
			wasCorrected = true
		default:
			fixed := s.correctWord(word)
			if fixed != word {
				wasCorrected = true
			}
			correctedWords = append(correctedWords, fixed)
		}
	}

	corrected := strings.Join(correctedWords, " ")

	// Fehlende Leerzeichen ("harrypotter") nur versuchen, wenn bisher
	// nichts gegriffen hat.
	if !wasCorrected && !strings.Contains(original, " ") {
		if split := s.trySplit(original); split != "" && split != original {
			return split, true
		}
	}

	return corrected, wasCorrected
}

// correctWord korrigiert ein einzelnes Wort gegen das gelernte Vokabular.
// Wörter unter drei Zeichen und bekannte Wörter bleiben unverändert.
func (s *SpellCorrector) correctWord(word string) string {
	if len(word) < 3 {
		return word
	}
	if _, ok := s.wordFreq[word]; ok {
		return word
	}

	candidates := s.candidates(word)
	if len(candidates) == 0 {
		return word
	}

	// Häufigster Kandidat gewinnt; bei Gleichstand der lexikographisch
	// kleinste, damit das Ergebnis deterministisch ist.
	best := ""
	bestFreq := -1
	for _, c := range candidates {
		freq := s.wordFreq[c]
		if freq > bestFreq || (freq == bestFreq && c < best) {
			best = c
			bestFreq = freq
		}
	}
	return best
}

// candidates liefert Vokabularwörter mit Editierdistanz 1, sonst 2.
func (s *SpellCorrector) candidates(word string) []string {
	edits := edits1(word)

	var found []string
	for e := range edits {
		if _, ok := s.wordFreq[e]; ok {
			found = append(found, e)
		}
	}
	if len(found) > 0 {
		sort.Strings(found)
		return found
	}

	seen := make(map[string]struct{})
	for e1 := range edits {
		for e2 := range edits1(e1) {
			if _, ok := seen[e2]; ok {
				continue
			}
			seen[e2] = struct{}{}
			if _, ok := s.wordFreq[e2]; ok {
				found = append(found, e2)
			}
		}
	}
	sort.Strings(found)
	return found
}

const letters = "abcdefghijklmnopqrstuvwxyz"

// edits1 erzeugt alle Strings mit Editierdistanz 1 (Löschung, Vertauschung,
// Ersetzung, Einfügung).
func edits1(word string) map[string]struct{} {
	out := make(map[string]struct{})
	runes := []rune(word)

	for i := 0; i <= len(runes); i++ {
		left, right := runes[:i], runes[i:]

		if len(right) > 0 {
			out[string(left)+string(right[1:])] = struct{}{}
		}
		if len(right) > 1 {
			out[string(left)+string(right[1])+string(right[0])+string(right[2:])] = struct{}{}
		}
		for _, c := range letters {
			if len(right) > 0 {
				out[string(left)+string(c)+string(right[1:])] = struct{}{}
			}
			out[string(left)+string(c)+string(right)] = struct{}{}
		}
	}
	return out
}

// trySplit zerlegt zusammengeschriebene Wörter: erst kuratierte Fälle,
// dann gierig über das längste bekannte Präfix.
func (s *SpellCorrector) trySplit(text string) string {
	if split, ok := curatedSplits[text]; ok {
		return split
	}
	if len(s.wordFreq) == 0 {
		return ""
	}

	var words []string
	remaining := text
	for remaining != "" {
		found := false
		for end := len(remaining); end > 0; end-- {
			candidate := remaining[:end]
			if len(candidate) >= 2 {
				if _, ok := s.wordFreq[candidate]; ok {
					words = append(words, candidate)
					remaining = remaining[end:]
					found = true
					break
				}
			}
		}
		if !found {
			words = append(words, remaining[:1])
			remaining = remaining[1:]
		}
	}

	result := strings.Join(words, " ")
	if len(words) > 1 {
		return result
	}
	return ""
}

// LearnFromSearch lernt aus einer bestätigten Auswahl: Anfrage->Titel als
// Korrektur (falls verschieden), Titel ins Vokabular.
func (s *SpellCorrector) LearnFromSearch(query, selectedTitle string) {
	queryNorm := strings.ToLower(strings.TrimSpace(query))
	titleNorm := strings.ToLower(strings.TrimSpace(selectedTitle))
	if queryNorm == "" || titleNorm == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if queryNorm != titleNorm {
		s.learned[queryNorm] = titleNorm
	}
	s.knownTitles[titleNorm] = struct{}{}
	for _, word := range strings.Fields(titleNorm) {
		s.wordFreq[word]++
	}

	s.logger.Debug("Learned from search selection",
		zap.String("query", queryNorm),
		zap.String("title", titleNorm))
}

// AddKnownTitles füllt das Vokabular aus dem Bestand (Seed beim Start).
func (s *SpellCorrector) AddKnownTitles(titles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, title := range titles {
		titleNorm := strings.ToLower(strings.TrimSpace(title))
		if titleNorm == "" {
			continue
		}
		s.knownTitles[titleNorm] = struct{}{}
		for _, word := range strings.Fields(titleNorm) {
			if len(word) >= 2 {
				s.wordFreq[word]++
			}
		}
	}
}

// Suggestions liefert alternative Schreibweisen für eine Anfrage.
// Phonetisch passende Kandidaten werden bevorzugt.
func (s *SpellCorrector) Suggestions(query string, maxSuggestions int) []string {
	var suggestions []string

	corrected, wasCorrected := s.Correct(query)
	if wasCorrected {
		suggestions = append(suggestions, corrected)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	words := strings.Fields(strings.ToLower(query))
	for i, word := range words {
		candidates := s.candidates(word)
		sort.SliceStable(candidates, func(a, b int) bool {
			return matchPhonetically(candidates[a], word) && !matchPhonetically(candidates[b], word)
		})
		if len(candidates) > 2 {
			candidates = candidates[:2]
		}
		for _, candidate := range candidates {
			variation := make([]string, len(words))
			copy(variation, words)
			variation[i] = candidate
			suggestion := strings.Join(variation, " ")
			if !contains(suggestions, suggestion) {
				suggestions = append(suggestions, suggestion)
			}
		}
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// soundex erzeugt den Soundex-Code eines Wortes.
func soundex(word string) string {
	if word == "" {
		return ""
	}

	upper := strings.ToUpper(word)
	code := string(upper[0])

	mapping := map[byte]byte{
		'B': '1', 'F': '1', 'P': '1', 'V': '1',
		'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
		'D': '3', 'T': '3',
		'L': '4',
		'M': '5', 'N': '5',
		'R': '6',
	}

	for i := 1; i < len(upper); i++ {
		if digit, ok := mapping[upper[i]]; ok && digit != code[len(code)-1] {
			code += string(digit)
		}
	}

	if len(code) > 4 {
		code = code[:4]
	}
	for len(code) < 4 {
		code += "0"
	}
	return code
}

// matchPhonetically meldet, ob zwei Wörter denselben Soundex-Code haben.
func matchPhonetically(word1, word2 string) bool {
	return soundex(word1) == soundex(word2)
}
