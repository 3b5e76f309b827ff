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

// BubbleDocument represents the MongoDB schema for a bubble.
type BubbleDocument struct {
	ID                 string     `bson:"_id"`
	Lat                float64    `bson:"lat"`
	Lng                float64    `bson:"lng"`
	Title              string     `bson:"title"`
	Caption            string     `bson:"caption"`
	MediaURL           string     `bson:"mediaurl,omitempty"`
	MediaType          string     `bson:"mediatype,omitempty"`
	Score              int        `bson:"score"`
	CreatedAt          time.Time  `bson:"createdat"`
	LastInteraction    time.Time  `bson:"lastinteraction"`
	CreatorFingerprint string     `bson:"creatorfingerprint"`
	BotSource          string     `bson:"botsource,omitempty"`
	EventURL           string     `bson:"eventurl,omitempty"`
	EventDate          *time.Time `bson:"eventdate,omitempty"`
	EventEndDate       *time.Time `bson:"eventenddate,omitempty"`
}

// BubbleToDocument converts a Bubble model to a MongoDB document.
func BubbleToDocument(bubble *models.Bubble) *BubbleDocument {
	return &BubbleDocument{
		ID:                 bubble.ID.String(),
		Lat:                bubble.Lat,
		Lng:                bubble.Lng,
		Title:              bubble.Title,
		Caption:            bubble.Caption,
		MediaURL:           bubble.MediaURL,
		MediaType:          bubble.MediaType,
		Score:              bubble.Score,
		CreatedAt:          bubble.CreatedAt,
		LastInteraction:    bubble.LastInteraction,
		CreatorFingerprint: bubble.CreatorFingerprint,
		BotSource:          bubble.BotSource,
		EventURL:           bubble.EventURL,
		EventDate:          bubble.EventDate,
		EventEndDate:       bubble.EventEndDate,
	}
}

// DocumentToBubble converts a MongoDB document to a Bubble model.
func DocumentToBubble(doc *BubbleDocument) (*models.Bubble, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid bubble ID: %v", err)
	}

	return &models.Bubble{
		ID:                 id,
		Lat:                doc.Lat,
		Lng:                doc.Lng,
		Title:              doc.Title,
		Caption:            doc.Caption,
		MediaURL:           doc.MediaURL,
		MediaType:          doc.MediaType,
		Score:              doc.Score,
		CreatedAt:          doc.CreatedAt,
		LastInteraction:    doc.LastInteraction,
		CreatorFingerprint: doc.CreatorFingerprint,
		BotSource:          doc.BotSource,
		EventURL:           doc.EventURL,
		EventDate:          doc.EventDate,
		EventEndDate:       doc.EventEndDate,
	}, nil
}

// LoadBubbles reads every stored bubble. Called once when the lifecycle
// engine starts, to rehydrate its in-memory state.
func (m *MongoDB) LoadBubbles(ctx context.Context) ([]*models.Bubble, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := m.Bubbles.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to load bubbles: %v", err)
	}
	defer cursor.Close(ctx)

	var bubbles []*models.Bubble
	for cursor.Next(ctx) {
		var doc BubbleDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode bubble: %v", err)
		}
		bubble, err := DocumentToBubble(&doc)
		if err != nil {
			return nil, err
		}
		bubbles = append(bubbles, bubble)
	}
	return bubbles, cursor.Err()
}

// SaveBubble upserts a bubble document.
func (m *MongoDB) SaveBubble(ctx context.Context, bubble *models.Bubble) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := BubbleToDocument(bubble)
	opts := options.Replace().SetUpsert(true)
	_, err := m.Bubbles.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save bubble %s: %v", doc.ID, err)
	}
	return nil
}

// DeleteBubbles removes the given bubbles in one call.
func (m *MongoDB) DeleteBubbles(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	_, err := m.Bubbles.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": idStrings}})
	if err != nil {
		return fmt.Errorf("failed to delete bubbles: %v", err)
	}
	return nil
}
