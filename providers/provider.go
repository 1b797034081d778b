package providers

import (
	"context"

	"copyhound/models"
)

// Adapter ist das Interface, das jeder Katalog-Adapter implementieren muss.
// Search liefert flüchtige Kandidaten; Fehler (Timeout, Nicht-2xx, kaputtes
// Payload) gehen als error an den Orchestrator und werden dort zu null
// Kandidaten zusammengefaltet.
type Adapter interface {
	Name() string
	Search(ctx context.Context, query string, contentType models.ContentType) ([]*models.ScrapedCandidate, error)
	Details(ctx context.Context, id string) (*models.ScrapedCandidate, error)
}
