package util

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"copyhound/models"
)

var (
	// Alles außer Wortzeichen, Leerraum, Bindestrich und Apostroph fliegt raus.
	specialCharsRegex = regexp.MustCompile(`[^\w\s\-']`)
	yearRegex         = regexp.MustCompile(`\b(1[0-9]{3}|20[0-2][0-9])\b`)
	htmlTagRegex      = regexp.MustCompile(`<[^>]+>`)
)

// foldTransformer zerlegt Zeichen per NFKD und entfernt kombinierende
// Akzente, damit "Café" und "Cafe" denselben Schlüssel ergeben.
var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTitle normalisiert einen Titel für Suche und Dedup-Schlüssel:
// Kleinschreibung, Akzente falten, Sonderzeichen entfernen, Leerraum
// zusammenfassen. Die Funktion ist deterministisch und idempotent.
func NormalizeTitle(title string) string {
	if title == "" {
		return ""
	}
	folded, _, err := transform.String(foldTransformer, title)
	if err != nil {
		folded = title
	}
	lowered := strings.ToLower(folded)
	stripped := specialCharsRegex.ReplaceAllString(lowered, "")
	return strings.Join(strings.Fields(stripped), " ")
}

// NormalizeCreator normalisiert einen Urhebernamen und entfernt gängige
// Anreden.
func NormalizeCreator(name string) string {
	if name == "" {
		return ""
	}
	folded, _, err := transform.String(foldTransformer, name)
	if err != nil {
		folded = name
	}
	lowered := strings.ToLower(folded)
	for _, t := range []string{"dr.", "mr.", "mrs.", "ms.", "prof.", "sir ", "dame "} {
		lowered = strings.ReplaceAll(lowered, t, "")
	}
	return strings.Join(strings.Fields(lowered), " ")
}

// ExtractYear zieht das wahrscheinlichste Publikationsjahr aus einem
// Freitext. Jahre vor 1400 und weiter als ein Jahr in der Zukunft werden
// verworfen.
func ExtractYear(text string) *int {
	if text == "" {
		return nil
	}
	currentYear := time.Now().Year()
	for _, m := range yearRegex.FindAllString(text, -1) {
		year, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if year >= 1400 && year <= currentYear+1 {
			return &year
		}
	}
	return nil
}

// CleanHTML entfernt Tags und gängige Entities aus API-Snippets.
func CleanHTML(htmlText string) string {
	if htmlText == "" {
		return ""
	}
	clean := htmlTagRegex.ReplaceAllString(htmlText, "")
	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&apos;", "'",
	)
	clean = replacer.Replace(clean)
	return strings.Join(strings.Fields(clean), " ")
}

// typeIndicators ordnet Schlüsselwörter den Inhaltstypen zu. Die Reihenfolge
// der Einträge macht den Gleichstands-Fall deterministisch.
var typeIndicators = []struct {
	contentType models.ContentType
	keywords    []string
}{
	{models.TypeBook, []string{"book", "novel", "author", "publisher", "isbn", "chapter", "edition", "paperback", "hardcover", "literary"}},
	{models.TypeMusic, []string{"song", "album", "artist", "track", "music", "composer", "lyrics", "record", "single", "band", "musician"}},
	{models.TypeFilm, []string{"film", "movie", "director", "starring", "cinema", "screenplay", "runtime", "box office", "actor", "actress"}},
	{models.TypeArticle, []string{"article", "journal", "published in", "doi", "abstract", "citation"}},
	{models.TypeImage, []string{"photograph", "photo", "image", "painting", "artwork", "illustration", "gallery"}},
	{models.TypeSoftware, []string{"software", "program", "application", "code", "license", "version", "github", "repository", "library", "framework", "api", "npm", "pip", "package"}},
	{models.TypePatent, []string{"patent", "invention", "inventor", "claims", "apparatus", "method", "device", "system", "utility", "granted", "filing", "assignee", "prior art"}},
	{models.TypeTrademark, []string{"trademark", "brand", "registered", "logo", "service mark", "trade name", "corporation", "company"}},
	{models.TypeAcademic, []string{"research", "study", "paper", "thesis", "dissertation", "peer-reviewed", "academic", "university", "professor", "phd"}},
}

// DetectContentType rät den Inhaltstyp aus Textindizien. Bei Gleichstand
// gewinnt der zuerst gelistete Typ; ohne Treffer TypeUnknown.
func DetectContentType(text, title string) models.ContentType {
	combined := strings.ToLower(title + " " + text)

	best := models.TypeUnknown
	bestScore := 0
	for _, ind := range typeIndicators {
		score := 0
		for _, kw := range ind.keywords {
			if strings.Contains(combined, kw) {
				score++
			}
		}
		if score > bestScore {
			best = ind.contentType
			bestScore = score
		}
	}
	return best
}

// Levenshtein berechnet die Editierdistanz zwischen zwei Strings.
func Levenshtein(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) < len(r2) {
		r1, r2 = r2, r1
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, c1 := range r1 {
		curr[0] = i + 1
		for j, c2 := range r2 {
			cost := 1
			if c1 == c2 {
				cost = 0
			}
			curr[j+1] = min(prev[j+1]+1, curr[j]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

// SimilarityRatio liefert die normalisierte Titelähnlichkeit (0..1).
func SimilarityRatio(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	n1 := NormalizeTitle(s1)
	n2 := NormalizeTitle(s2)
	if n1 == n2 {
		return 1
	}
	maxLen := max(len([]rune(n1)), len([]rune(n2)))
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(Levenshtein(n1, n2))/float64(maxLen)
}

// TruncateText kürzt Text auf maxLength Zeichen an einer Wortgrenze.
func TruncateText(text string, maxLength int) string {
	if text == "" || len(text) <= maxLength {
		return text
	}
	const suffix = "..."
	cut := text[:maxLength-len(suffix)]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + suffix
}
