package models

import (
	"time"

	"github.com/google/uuid"
)

// Media type classifications for bubble attachments.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
)

// Bubble is a geotagged post on the map. User bubbles have BotSource == ""
// and live as long as someone keeps interacting with them; bot bubbles carry
// a source tag and live until their event end date passes.
type Bubble struct {
	ID                 uuid.UUID  `json:"id"`
	Lat                float64    `json:"lat"`
	Lng                float64    `json:"lng"`
	Title              string     `json:"title"`
	Caption            string     `json:"caption"`
	MediaURL           string     `json:"media_url,omitempty"`
	MediaType          string     `json:"media_type,omitempty"`
	Score              int        `json:"score"`
	CreatedAt          time.Time  `json:"created_at"`
	LastInteraction    time.Time  `json:"last_interaction"`
	CreatorFingerprint string     `json:"creator_fingerprint"`
	BotSource          string     `json:"bot_source,omitempty"`
	EventURL           string     `json:"event_url,omitempty"`
	EventDate          *time.Time `json:"event_date,omitempty"`
	EventEndDate       *time.Time `json:"event_end_date,omitempty"`
}

// IsBot reports whether the bubble was imported from an external event feed.
func (b *Bubble) IsBot() bool {
	return b.BotSource != ""
}

// VisibleAt reports whether the bubble should appear on the map at the given
// instant. User bubbles are visible while their last interaction is within
// the retention window; bot bubbles while their end date has not passed.
func (b *Bubble) VisibleAt(now time.Time, retention time.Duration) bool {
	if b.IsBot() {
		return b.EventEndDate == nil || b.EventEndDate.After(now)
	}
	return b.LastInteraction.After(now.Add(-retention))
}
