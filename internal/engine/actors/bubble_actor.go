package actors

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"thewherewhat/internal/database"
	"thewherewhat/internal/fingerprint"
	"thewherewhat/internal/models"
	"thewherewhat/internal/utils"
	"thewherewhat/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Broadcaster is the slice of the websocket hub the actors need. Nil
// disables broadcasting (tests).
type Broadcaster interface {
	BroadcastEvent(event websocket.Event)
}

// Bot bubbles within this distance (degrees) of an existing one with the
// same title and source are considered the same event (~100m).
const DedupEpsilon = 0.001

// Message types for bubble operations
type (
	CreateBubbleMsg struct {
		Lat         float64
		Lng         float64
		Title       string
		Caption     string
		MediaURL    string
		MediaType   string
		Fingerprint string
	}

	VoteBubbleMsg struct {
		BubbleID    uuid.UUID
		Fingerprint string
		Value       int
	}

	// VoteResult is the response to a successful VoteBubbleMsg.
	VoteResult struct {
		NewScore int `json:"newScore"`
		YourVote int `json:"yourVote"`
	}

	GetVoteMsg struct {
		BubbleID    uuid.UUID
		Fingerprint string
	}

	ListVisibleMsg struct {
		// Zero means time.Now().
		Now time.Time
	}

	ImportBotEventMsg struct {
		Event models.BotEvent
	}

	// ImportResult reports whether a candidate event was inserted or
	// skipped as a duplicate.
	ImportResult struct {
		Imported bool
		Bubble   *models.Bubble
	}

	ExpireSweepMsg struct {
		// Zero means time.Now().
		Now time.Time
	}

	// SweepResult counts what an expiry sweep removed.
	SweepResult struct {
		ExpiredUser int `json:"expiredUser"`
		ExpiredBot  int `json:"expiredBot"`
	}

	RemoveDistantMsg struct {
		CenterLat     float64
		CenterLng     float64
		MaxDistanceKm float64
	}

	// CleanupResult reports how many bubbles a distance cleanup removed.
	CleanupResult struct {
		Deleted int `json:"deleted"`
	}

	GetCountsMsg struct{}
)

// BubbleActor is the bubble lifecycle engine. It owns all bubble and vote
// state; every mutation arrives as a message, so mutations never interleave.
// State is held in memory and written through to the store synchronously.
type BubbleActor struct {
	bubblesByID map[uuid.UUID]*models.Bubble
	// votes[bubbleID][fingerprint] = -1 or +1
	votes map[uuid.UUID]map[string]int

	retention time.Duration
	store     database.BubbleStore
	hub       Broadcaster
	metrics   *utils.MetricsCollector
}

// NewBubbleActor creates the lifecycle engine actor. store and hub may be
// nil, which disables persistence and broadcasting respectively.
func NewBubbleActor(retention time.Duration, store database.BubbleStore, hub Broadcaster, metrics *utils.MetricsCollector) actor.Actor {
	return &BubbleActor{
		bubblesByID: make(map[uuid.UUID]*models.Bubble),
		votes:       make(map[uuid.UUID]map[string]int),
		retention:   retention,
		store:       store,
		hub:         hub,
		metrics:     metrics,
	}
}

// Receive handles incoming messages
func (a *BubbleActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("BubbleActor started")
		a.hydrate()

	case *actor.Stopping:
		log.Printf("BubbleActor stopping")

	case *CreateBubbleMsg:
		a.handleCreate(context, msg)
	case *VoteBubbleMsg:
		a.handleVote(context, msg)
	case *GetVoteMsg:
		a.handleGetVote(context, msg)
	case *ListVisibleMsg:
		a.handleListVisible(context, msg)
	case *ImportBotEventMsg:
		a.handleImport(context, msg)
	case *ExpireSweepMsg:
		a.handleSweep(context, msg)
	case *RemoveDistantMsg:
		a.handleRemoveDistant(context, msg)
	case *GetCountsMsg:
		context.Respond(len(a.bubblesByID))
	default:
		log.Printf("BubbleActor: Unknown message type: %T", msg)
	}
}

// hydrate reloads bubbles and votes from the store. A store failure here is
// fatal: the system cannot run without its persistent state.
func (a *BubbleActor) hydrate() {
	if a.store == nil {
		return
	}

	ctx := context.Background()
	bubbles, err := a.store.LoadBubbles(ctx)
	if err != nil {
		log.Fatalf("BubbleActor: failed to load bubbles: %v", err)
	}
	for _, bubble := range bubbles {
		a.bubblesByID[bubble.ID] = bubble
	}

	votes, err := a.store.LoadVotes(ctx)
	if err != nil {
		log.Fatalf("BubbleActor: failed to load votes: %v", err)
	}
	for _, vote := range votes {
		if _, exists := a.votes[vote.BubbleID]; !exists {
			a.votes[vote.BubbleID] = make(map[string]int)
		}
		a.votes[vote.BubbleID][vote.Fingerprint] = vote.Value
	}

	log.Printf("BubbleActor: loaded %d bubbles, %d votes", len(bubbles), len(votes))
}

func (a *BubbleActor) handleCreate(context actor.Context, msg *CreateBubbleMsg) {
	startTime := time.Now()

	title := strings.TrimSpace(msg.Title)
	if title == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Missing required fields", nil))
		return
	}
	if math.Abs(msg.Lat) > 90 || math.Abs(msg.Lng) > 180 {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Invalid coordinates", nil))
		return
	}

	now := time.Now()
	bubble := &models.Bubble{
		ID:                 uuid.New(),
		Lat:                msg.Lat,
		Lng:                msg.Lng,
		Title:              title,
		Caption:            msg.Caption,
		MediaURL:           msg.MediaURL,
		MediaType:          msg.MediaType,
		Score:              0,
		CreatedAt:          now,
		LastInteraction:    now,
		CreatorFingerprint: msg.Fingerprint,
	}

	if err := a.saveBubble(bubble); err != nil {
		context.Respond(err)
		return
	}

	a.bubblesByID[bubble.ID] = bubble
	a.votes[bubble.ID] = make(map[string]int)
	log.Printf("BubbleActor: created bubble %s (%q)", bubble.ID, bubble.Title)

	a.broadcast(websocket.Event{Type: websocket.EventNewBubble, Bubble: bubble})
	if a.metrics != nil {
		a.metrics.AddOperationLatency("create_bubble", time.Since(startTime))
	}
	context.Respond(bubble)
}

func (a *BubbleActor) handleVote(context actor.Context, msg *VoteBubbleMsg) {
	startTime := time.Now()

	if !models.ValidVoteValue(msg.Value) {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Invalid vote", nil))
		return
	}

	bubble, exists := a.bubblesByID[msg.BubbleID]
	if !exists {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "Bubble not found", nil))
		return
	}

	if bubble.CreatorFingerprint == msg.Fingerprint {
		context.Respond(utils.NewAppError(utils.ErrForbidden, "Cannot vote on your own bubble", nil))
		return
	}

	if _, tracked := a.votes[msg.BubbleID]; !tracked {
		a.votes[msg.BubbleID] = make(map[string]int)
	}

	scoreDelta := msg.Value
	if previous, hasVoted := a.votes[msg.BubbleID][msg.Fingerprint]; hasVoted {
		if previous == msg.Value {
			context.Respond(utils.NewAppError(utils.ErrDuplicateVote, "Already voted", nil))
			return
		}
		// Reversing: undo the old vote and apply the new one in one step.
		scoreDelta = 2 * msg.Value
	}

	updated := *bubble
	updated.Score += scoreDelta
	updated.LastInteraction = time.Now()

	vote := &models.Vote{BubbleID: msg.BubbleID, Fingerprint: msg.Fingerprint, Value: msg.Value}
	if a.store != nil {
		if err := a.store.SaveVote(contextBackground(), vote); err != nil {
			log.Printf("BubbleActor: failed to persist vote: %v", err)
			context.Respond(utils.NewStorageError("Failed to persist vote", err))
			return
		}
		if err := a.store.SaveBubble(contextBackground(), &updated); err != nil {
			log.Printf("BubbleActor: failed to persist bubble: %v", err)
			context.Respond(utils.NewStorageError("Failed to persist bubble", err))
			return
		}
	}

	*bubble = updated
	a.votes[msg.BubbleID][msg.Fingerprint] = msg.Value

	a.broadcast(websocket.Event{Type: websocket.EventUpdateBubble, Bubble: bubble})
	if a.metrics != nil {
		a.metrics.AddOperationLatency("vote_bubble", time.Since(startTime))
	}
	context.Respond(&VoteResult{NewScore: bubble.Score, YourVote: msg.Value})
}

func (a *BubbleActor) handleGetVote(context actor.Context, msg *GetVoteMsg) {
	if bubbleVotes, exists := a.votes[msg.BubbleID]; exists {
		if value, voted := bubbleVotes[msg.Fingerprint]; voted {
			context.Respond(value)
			return
		}
	}
	context.Respond(models.VoteNone)
}

func (a *BubbleActor) handleListVisible(context actor.Context, msg *ListVisibleMsg) {
	now := msg.Now
	if now.IsZero() {
		now = time.Now()
	}

	visible := make([]*models.Bubble, 0, len(a.bubblesByID))
	for _, bubble := range a.bubblesByID {
		if bubble.VisibleAt(now, a.retention) {
			visible = append(visible, bubble)
		}
	}
	context.Respond(visible)
}

func (a *BubbleActor) handleImport(context actor.Context, msg *ImportBotEventMsg) {
	event := msg.Event

	// Same title from the same source at (almost) the same spot is the
	// same event.
	for _, existing := range a.bubblesByID {
		if existing.BotSource == event.Source &&
			existing.Title == event.Title &&
			math.Abs(existing.Lat-event.Lat) < DedupEpsilon &&
			math.Abs(existing.Lng-event.Lng) < DedupEpsilon {
			context.Respond(&ImportResult{Imported: false})
			return
		}
	}

	now := time.Now()
	bubble := &models.Bubble{
		ID:                 uuid.New(),
		Lat:                event.Lat,
		Lng:                event.Lng,
		Title:              event.Title,
		Caption:            event.Caption,
		Score:              0,
		CreatedAt:          now,
		LastInteraction:    now,
		CreatorFingerprint: fingerprint.BotSentinel,
		BotSource:          event.Source,
		EventURL:           event.EventURL,
		EventDate:          event.EventDate,
		EventEndDate:       event.EventEndDate,
	}

	if err := a.saveBubble(bubble); err != nil {
		context.Respond(err)
		return
	}

	a.bubblesByID[bubble.ID] = bubble
	a.votes[bubble.ID] = make(map[string]int)
	log.Printf("BubbleActor: imported %s event %q", bubble.BotSource, bubble.Title)

	a.broadcast(websocket.Event{Type: websocket.EventNewBubble, Bubble: bubble})
	context.Respond(&ImportResult{Imported: true, Bubble: bubble})
}

func (a *BubbleActor) handleSweep(context actor.Context, msg *ExpireSweepMsg) {
	now := msg.Now
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := now.Add(-a.retention)

	result := &SweepResult{}
	var expired []uuid.UUID
	for id, bubble := range a.bubblesByID {
		if bubble.IsBot() {
			if bubble.EventEndDate != nil && bubble.EventEndDate.Before(now) {
				expired = append(expired, id)
				result.ExpiredBot++
			}
		} else if bubble.LastInteraction.Before(cutoff) {
			expired = append(expired, id)
			result.ExpiredUser++
		}
	}

	if len(expired) == 0 {
		context.Respond(result)
		return
	}

	if err := a.deleteBubbles(expired); err != nil {
		context.Respond(err)
		return
	}

	for _, id := range expired {
		delete(a.bubblesByID, id)
		delete(a.votes, id)
	}
	log.Printf("BubbleActor: cleaned up %d old user bubbles, %d past events", result.ExpiredUser, result.ExpiredBot)

	a.broadcast(websocket.Event{Type: websocket.EventCleanup})
	context.Respond(result)
}

func (a *BubbleActor) handleRemoveDistant(context actor.Context, msg *RemoveDistantMsg) {
	var distant []uuid.UUID
	for id, bubble := range a.bubblesByID {
		if bubble.IsBot() {
			continue
		}
		if haversineKm(msg.CenterLat, msg.CenterLng, bubble.Lat, bubble.Lng) > msg.MaxDistanceKm {
			distant = append(distant, id)
		}
	}

	if len(distant) > 0 {
		if err := a.deleteBubbles(distant); err != nil {
			context.Respond(err)
			return
		}
		for _, id := range distant {
			log.Printf("BubbleActor: removed distant bubble %q", a.bubblesByID[id].Title)
			delete(a.bubblesByID, id)
			delete(a.votes, id)
		}
		a.broadcast(websocket.Event{Type: websocket.EventCleanup})
	}

	context.Respond(&CleanupResult{Deleted: len(distant)})
}

func (a *BubbleActor) saveBubble(bubble *models.Bubble) *utils.AppError {
	if a.store == nil {
		return nil
	}
	if err := a.store.SaveBubble(contextBackground(), bubble); err != nil {
		log.Printf("BubbleActor: failed to persist bubble: %v", err)
		return utils.NewStorageError("Failed to persist bubble", err)
	}
	return nil
}

func (a *BubbleActor) deleteBubbles(ids []uuid.UUID) *utils.AppError {
	if a.store == nil {
		return nil
	}
	if err := a.store.DeleteBubbles(contextBackground(), ids); err != nil {
		log.Printf("BubbleActor: failed to delete bubbles: %v", err)
		return utils.NewStorageError("Failed to delete bubbles", err)
	}
	if err := a.store.DeleteVotesForBubbles(contextBackground(), ids); err != nil {
		log.Printf("BubbleActor: failed to cascade votes: %v", err)
		return utils.NewStorageError("Failed to delete votes", err)
	}
	return nil
}

func (a *BubbleActor) broadcast(event websocket.Event) {
	if a.hub != nil {
		a.hub.BroadcastEvent(event)
	}
}

// The actor.Context parameter shadows the context package inside handlers.
func contextBackground() context.Context {
	return context.Background()
}

// haversineKm returns the great-circle distance between two points.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*sinLng*sinLng
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
