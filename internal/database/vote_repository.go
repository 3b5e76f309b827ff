package database

import (
	"context"
	"fmt"
	"time"

	"thewherewhat/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VoteDocument represents the MongoDB schema for a vote. The document ID is
// the composite "<bubbleID>:<fingerprint>", which gives the one-row-per-pair
// guarantee the scoring invariant depends on.
type VoteDocument struct {
	ID          string `bson:"_id"`
	BubbleID    string `bson:"bubbleid"`
	Fingerprint string `bson:"fingerprint"`
	Value       int    `bson:"vote"`
}

func voteDocumentID(bubbleID uuid.UUID, fingerprint string) string {
	return bubbleID.String() + ":" + fingerprint
}

// VoteToDocument converts a Vote model to a MongoDB document.
func VoteToDocument(vote *models.Vote) *VoteDocument {
	return &VoteDocument{
		ID:          voteDocumentID(vote.BubbleID, vote.Fingerprint),
		BubbleID:    vote.BubbleID.String(),
		Fingerprint: vote.Fingerprint,
		Value:       vote.Value,
	}
}

// DocumentToVote converts a MongoDB document to a Vote model.
func DocumentToVote(doc *VoteDocument) (*models.Vote, error) {
	bubbleID, err := uuid.Parse(doc.BubbleID)
	if err != nil {
		return nil, fmt.Errorf("invalid bubble ID on vote: %v", err)
	}
	return &models.Vote{
		BubbleID:    bubbleID,
		Fingerprint: doc.Fingerprint,
		Value:       doc.Value,
	}, nil
}

// LoadVotes reads every stored vote for engine rehydration.
func (m *MongoDB) LoadVotes(ctx context.Context) ([]*models.Vote, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := m.Votes.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %v", err)
	}
	defer cursor.Close(ctx)

	var votes []*models.Vote
	for cursor.Next(ctx) {
		var doc VoteDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode vote: %v", err)
		}
		vote, err := DocumentToVote(&doc)
		if err != nil {
			return nil, err
		}
		votes = append(votes, vote)
	}
	return votes, cursor.Err()
}

// SaveVote upserts a vote, overwriting a reversed vote in place.
func (m *MongoDB) SaveVote(ctx context.Context, vote *models.Vote) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := VoteToDocument(vote)
	opts := options.Replace().SetUpsert(true)
	_, err := m.Votes.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save vote %s: %v", doc.ID, err)
	}
	return nil
}

// DeleteVotesForBubbles cascades vote deletion when bubbles expire.
func (m *MongoDB) DeleteVotesForBubbles(ctx context.Context, bubbleIDs []uuid.UUID) error {
	if len(bubbleIDs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	idStrings := make([]string, len(bubbleIDs))
	for i, id := range bubbleIDs {
		idStrings[i] = id.String()
	}

	_, err := m.Votes.DeleteMany(ctx, bson.M{"bubbleid": bson.M{"$in": idStrings}})
	if err != nil {
		return fmt.Errorf("failed to delete votes: %v", err)
	}
	return nil
}
