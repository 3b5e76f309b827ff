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

// SuggestionDocument represents the MongoDB schema for a suggestion.
type SuggestionDocument struct {
	ID                 string    `bson:"_id"`
	Title              string    `bson:"title"`
	Description        string    `bson:"description"`
	Votes              int       `bson:"votes"`
	CreatedAt          time.Time `bson:"createdat"`
	CreatorFingerprint string    `bson:"creatorfingerprint"`
}

// SuggestionVoteDocument marks a (suggestion, fingerprint) toggle vote.
type SuggestionVoteDocument struct {
	ID           string `bson:"_id"`
	SuggestionID string `bson:"suggestionid"`
	Fingerprint  string `bson:"fingerprint"`
}

// SuggestionToDocument converts a Suggestion model to a MongoDB document.
func SuggestionToDocument(s *models.Suggestion) *SuggestionDocument {
	return &SuggestionDocument{
		ID:                 s.ID.String(),
		Title:              s.Title,
		Description:        s.Description,
		Votes:              s.Votes,
		CreatedAt:          s.CreatedAt,
		CreatorFingerprint: s.CreatorFingerprint,
	}
}

// DocumentToSuggestion converts a MongoDB document to a Suggestion model.
func DocumentToSuggestion(doc *SuggestionDocument) (*models.Suggestion, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid suggestion ID: %v", err)
	}
	return &models.Suggestion{
		ID:                 id,
		Title:              doc.Title,
		Description:        doc.Description,
		Votes:              doc.Votes,
		CreatedAt:          doc.CreatedAt,
		CreatorFingerprint: doc.CreatorFingerprint,
	}, nil
}

// LoadSuggestions reads every stored suggestion.
func (m *MongoDB) LoadSuggestions(ctx context.Context) ([]*models.Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := m.Suggestions.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestions: %v", err)
	}
	defer cursor.Close(ctx)

	var suggestions []*models.Suggestion
	for cursor.Next(ctx) {
		var doc SuggestionDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode suggestion: %v", err)
		}
		s, err := DocumentToSuggestion(&doc)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, cursor.Err()
}

// LoadSuggestionVotes reads every stored suggestion vote.
func (m *MongoDB) LoadSuggestionVotes(ctx context.Context) ([]*models.SuggestionVote, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := m.SuggestionVotes.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestion votes: %v", err)
	}
	defer cursor.Close(ctx)

	var votes []*models.SuggestionVote
	for cursor.Next(ctx) {
		var doc SuggestionVoteDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode suggestion vote: %v", err)
		}
		suggestionID, err := uuid.Parse(doc.SuggestionID)
		if err != nil {
			return nil, fmt.Errorf("invalid suggestion ID on vote: %v", err)
		}
		votes = append(votes, &models.SuggestionVote{
			SuggestionID: suggestionID,
			Fingerprint:  doc.Fingerprint,
		})
	}
	return votes, cursor.Err()
}

// SaveSuggestion upserts a suggestion document.
func (m *MongoDB) SaveSuggestion(ctx context.Context, s *models.Suggestion) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := SuggestionToDocument(s)
	opts := options.Replace().SetUpsert(true)
	_, err := m.Suggestions.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save suggestion %s: %v", doc.ID, err)
	}
	return nil
}

// SaveSuggestionVote records a toggle vote.
func (m *MongoDB) SaveSuggestionVote(ctx context.Context, vote *models.SuggestionVote) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := &SuggestionVoteDocument{
		ID:           vote.SuggestionID.String() + ":" + vote.Fingerprint,
		SuggestionID: vote.SuggestionID.String(),
		Fingerprint:  vote.Fingerprint,
	}
	opts := options.Replace().SetUpsert(true)
	_, err := m.SuggestionVotes.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save suggestion vote %s: %v", doc.ID, err)
	}
	return nil
}

// DeleteSuggestionVote removes a toggle vote.
func (m *MongoDB) DeleteSuggestionVote(ctx context.Context, suggestionID uuid.UUID, fingerprint string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	id := suggestionID.String() + ":" + fingerprint
	_, err := m.SuggestionVotes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete suggestion vote %s: %v", id, err)
	}
	return nil
}
