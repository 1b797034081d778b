package models

import "time"

// ScrapedCandidate ist das flüchtige Ergebnis eines Katalog-Adapters.
// Kandidaten werden nie direkt persistiert, sondern vom Merger validiert
// und in WorkRecords überführt.
type ScrapedCandidate struct {
	Title            string
	Creator          string
	CreatorDeathYear *int
	PublicationYear  *int
	ContentType      ContentType
	SourceURL        string
	SourceName       string
	Description      string

	// Katalogspezifische Zusatzfelder (Lizenz, Sterne, Open-Access-Flag, ...).
	Extra map[string]any

	// Verlässlichkeit des liefernden Katalogs für diesen Treffer (0..1).
	Confidence float64

	ScrapedAt time.Time
}
