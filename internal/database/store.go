package database

import (
	"context"

	"thewherewhat/internal/models"

	"github.com/google/uuid"
)

// BubbleStore is the persistence surface the bubble lifecycle engine writes
// through. The engine keeps authoritative state in memory and treats the
// store as a synchronous durability layer; a nil store disables persistence
// (used by tests).
type BubbleStore interface {
	LoadBubbles(ctx context.Context) ([]*models.Bubble, error)
	LoadVotes(ctx context.Context) ([]*models.Vote, error)
	SaveBubble(ctx context.Context, bubble *models.Bubble) error
	DeleteBubbles(ctx context.Context, ids []uuid.UUID) error
	SaveVote(ctx context.Context, vote *models.Vote) error
	DeleteVotesForBubbles(ctx context.Context, bubbleIDs []uuid.UUID) error
}

// SuggestionStore persists the suggestion board.
type SuggestionStore interface {
	LoadSuggestions(ctx context.Context) ([]*models.Suggestion, error)
	LoadSuggestionVotes(ctx context.Context) ([]*models.SuggestionVote, error)
	SaveSuggestion(ctx context.Context, suggestion *models.Suggestion) error
	SaveSuggestionVote(ctx context.Context, vote *models.SuggestionVote) error
	DeleteSuggestionVote(ctx context.Context, suggestionID uuid.UUID, fingerprint string) error
}
