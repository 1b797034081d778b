package models

import "time"

// WorkRecord repräsentiert die gespeicherten Metadaten eines Werks
// (Buch, Musik, Film, Software, ...). Es werden ausschließlich Metadaten
// gespeichert, niemals Inhalte.
type WorkRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title           string      `json:"title" gorm:"size:500;not null;index"`
	TitleNormalized string      `json:"title_normalized" gorm:"size:500;uniqueIndex:idx_title_type"`
	ContentType     ContentType `json:"content_type" gorm:"size:50;uniqueIndex:idx_title_type"`

	Creator          string `json:"creator,omitempty" gorm:"size:300;index"`
	CreatorDeathYear *int   `json:"creator_death_year,omitempty"`
	PublicationYear  *int   `json:"publication_year,omitempty" gorm:"index"`

	// Herkunft des Datensatzes (Katalogname und Fundstelle).
	SourceURL  string `json:"source_url,omitempty" gorm:"size:1000"`
	SourceName string `json:"source_name,omitempty" gorm:"size:200"`

	// Verlässlichkeit der Quelldaten (0..1).
	DataConfidence float64 `json:"data_confidence" gorm:"default:0.5"`

	// Wird vom Kern immer als "unknown" geschrieben; die eigentliche
	// Bewertung liefert die Regel-Engine als externer Kollaborateur.
	CopyrightStatus string `json:"copyright_status" gorm:"size:100;default:unknown"`

	LastVerifiedAt *time.Time `json:"last_verified_at,omitempty"`
}

// Key liefert den Dedup-Schlüssel des Datensatzes.
func (w *WorkRecord) Key() (string, ContentType) {
	return w.TitleNormalized, w.ContentType
}
