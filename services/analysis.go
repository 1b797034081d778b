package services

import (
	"context"

	"copyhound/models"
)

// Analysis ist das Ergebnis einer Rechtsstatus-Bewertung durch die externe
// Regel-Engine.
type Analysis struct {
	Status      string   `json:"status"`
	Confidence  float64  `json:"confidence"`
	ExpiryYear  *int     `json:"expiry_year,omitempty"`
	AllowedUses []string `json:"allowed_uses,omitempty"`
	Reasoning   string   `json:"reasoning,omitempty"`
}

// Prediction ist die Statusvorhersage des externen ML-Modells.
type Prediction struct {
	Status      string  `json:"status"`
	Probability float64 `json:"probability"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// RuleEngine bewertet den Rechtsstatus eines Werks. Der Kern persistiert
// selbst immer nur den Sentinel "unknown" und überlässt die Bewertung
// diesem Kollaborateur.
type RuleEngine interface {
	Analyze(ctx context.Context, rec *models.WorkRecord, jurisdiction string, pred *Prediction) (*Analysis, error)
}

// Predictor ist das externe Vorhersagemodell mit inkrementellem Training.
type Predictor interface {
	Predict(ctx context.Context, rec *models.WorkRecord) (*Prediction, error)
	TrainIncremental(ctx context.Context, rec *models.WorkRecord, actualStatus string) error
}

// NoopPredictor ist die Standardverdrahtung, solange kein Modell
// angebunden ist.
type NoopPredictor struct{}

func (NoopPredictor) Predict(ctx context.Context, rec *models.WorkRecord) (*Prediction, error) {
	return &Prediction{Status: "unknown", Probability: 0, Confidence: 0}, nil
}

func (NoopPredictor) TrainIncremental(ctx context.Context, rec *models.WorkRecord, actualStatus string) error {
	return nil
}
