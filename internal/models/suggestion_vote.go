package models

import "github.com/google/uuid"

// SuggestionVote marks that a fingerprint voted for a suggestion.
// Existence-only: present means voted, absent means not.
type SuggestionVote struct {
	SuggestionID uuid.UUID `json:"suggestion_id"`
	Fingerprint  string    `json:"fingerprint"`
}
