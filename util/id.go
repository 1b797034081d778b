package util

import "github.com/google/uuid"

// NewSessionID erzeugt eine Session-Kennung für nicht zugeordnete Suchen.
func NewSessionID() string {
	return uuid.NewString()
}
