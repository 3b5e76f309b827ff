package models

import "github.com/google/uuid"

// Vote values. Exactly one row exists per (bubble, fingerprint) pair.
const (
	VoteUp   = 1
	VoteDown = -1
	VoteNone = 0
)

// Vote records a single fingerprint's vote on a bubble.
type Vote struct {
	BubbleID    uuid.UUID `json:"bubble_id"`
	Fingerprint string    `json:"fingerprint"`
	Value       int       `json:"vote"`
}

// ValidVoteValue reports whether v is an acceptable vote direction.
func ValidVoteValue(v int) bool {
	return v == VoteUp || v == VoteDown
}
