package models

import (
	"time"

	"github.com/google/uuid"
)

// Suggestion is a feature idea on the suggestion board. Unlike bubbles,
// suggestions never expire and votes are a toggle, not a direction.
type Suggestion struct {
	ID                 uuid.UUID `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Votes              int       `json:"votes"`
	CreatedAt          time.Time `json:"created_at"`
	CreatorFingerprint string    `json:"creator_fingerprint"`
}
