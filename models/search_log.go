package models

import "time"

// SearchLogEntry protokolliert jede Suche für Auswertung und inkrementelles
// Lernen. Einträge werden angehängt; nur Auswahl und Feedback werden später
// nachgetragen.
type SearchLogEntry struct {
	ID uint `json:"id" gorm:"primaryKey"`

	QueryText       string `json:"query_text" gorm:"size:500;not null"`
	QueryNormalized string `json:"query_normalized" gorm:"size:500"`
	CorrectedQuery  string `json:"corrected_query,omitempty" gorm:"size:500"`

	ResultCount   int  `json:"result_count"`
	WasSuccessful bool `json:"was_successful"`

	SelectedRecordID *uint `json:"selected_record_id,omitempty"`
	FeedbackScore    *int  `json:"feedback_score,omitempty"`

	SearchTimeMs int64     `json:"search_time_ms"`
	SessionID    string    `json:"session_id,omitempty" gorm:"size:100;index"`
	Timestamp    time.Time `json:"timestamp" gorm:"autoCreateTime"`
}
