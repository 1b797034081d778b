package storage

import (
	"context"
	"errors"
	"time"

	"copyhound/models"
)

var (
	// ErrNotFound wird geliefert, wenn kein Datensatz zum Schlüssel existiert.
	ErrNotFound = errors.New("storage: record not found")
	// ErrDuplicateKey wird geliefert, wenn ein Insert den eindeutigen
	// Schlüssel (title_normalized, content_type) verletzt.
	ErrDuplicateKey = errors.New("storage: duplicate record key")
)

// RecordStore abstrahiert die Persistenz der WorkRecords. Die Produktion
// läuft über Postgres (GormStore); Tests nutzen den MemoryStore.
type RecordStore interface {
	ByID(ctx context.Context, id uint) (*models.WorkRecord, error)
	ByKey(ctx context.Context, titleNormalized string, contentType models.ContentType) (*models.WorkRecord, error)

	// ExactTitle liefert Datensätze mit exakt diesem normalisierten Titel.
	// contentType schränkt auf die Äquivalenzgruppe ein; unknown = alle.
	ExactTitle(ctx context.Context, titleNormalized string, contentType models.ContentType, limit int) ([]*models.WorkRecord, error)

	// TitleContains liefert Datensätze, deren normalisierter Titel den
	// Teilstring enthält.
	TitleContains(ctx context.Context, substr string, contentType models.ContentType, limit int) ([]*models.WorkRecord, error)

	// TitleContainsAny liefert Datensätze, deren normalisierter Titel
	// mindestens eines der Wörter enthält (ODER-Verknüpfung).
	TitleContainsAny(ctx context.Context, words []string, contentType models.ContentType, limit int) ([]*models.WorkRecord, error)

	// Sample liefert einen begrenzten Ausschnitt des Bestands für die
	// semantische Nachrecherche.
	Sample(ctx context.Context, contentType models.ContentType, limit int) ([]*models.WorkRecord, error)

	// Stale liefert Datensätze, deren LastVerifiedAt fehlt oder vor dem
	// Stichtag liegt.
	Stale(ctx context.Context, cutoff time.Time, limit int) ([]*models.WorkRecord, error)

	// Insert legt einen neuen Datensatz an; bei Schlüsselkonflikt
	// ErrDuplicateKey, damit der Merger auf den Update-Pfad wechseln kann.
	Insert(ctx context.Context, rec *models.WorkRecord) error
	Save(ctx context.Context, rec *models.WorkRecord) error

	Count(ctx context.Context) (int64, error)

	// Transaction führt fn atomar aus; bei einem Fehler werden alle
	// Schreibzugriffe des Aufrufs verworfen.
	Transaction(ctx context.Context, fn func(RecordStore) error) error
}

// SearchLogStore persistiert das Suchprotokoll (anhängen plus spätere
// Auswahl-/Feedback-Nachträge).
type SearchLogStore interface {
	Append(ctx context.Context, entry *models.SearchLogEntry) error
	ByID(ctx context.Context, id uint) (*models.SearchLogEntry, error)
	Save(ctx context.Context, entry *models.SearchLogEntry) error
	CountSince(ctx context.Context, since time.Time) (int64, error)
}
