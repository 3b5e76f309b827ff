package actors

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"thewherewhat/internal/database"
	"thewherewhat/internal/models"
	"thewherewhat/internal/utils"
	"thewherewhat/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Suggestion titles shorter than this are rejected.
const minSuggestionTitleLen = 5

// Message types for suggestion board operations
type (
	CreateSuggestionMsg struct {
		Title       string
		Description string
		Fingerprint string
	}

	ToggleSuggestionVoteMsg struct {
		SuggestionID uuid.UUID
		Fingerprint  string
	}

	// ToggleResult is the response to a ToggleSuggestionVoteMsg.
	ToggleResult struct {
		Votes int  `json:"votes"`
		Voted bool `json:"voted"`
	}

	GetSuggestionVoteMsg struct {
		SuggestionID uuid.UUID
		Fingerprint  string
	}

	ListSuggestionsMsg struct{}
)

// SuggestionActor runs the suggestion board: a simpler sibling of the bubble
// engine where votes are a strict toggle and nothing ever expires.
type SuggestionActor struct {
	suggestionsByID map[uuid.UUID]*models.Suggestion
	// voters[suggestionID][fingerprint] marks a cast vote.
	voters map[uuid.UUID]map[string]bool

	store   database.SuggestionStore
	hub     Broadcaster
	metrics *utils.MetricsCollector
}

// NewSuggestionActor creates the suggestion board actor. store and hub may
// be nil.
func NewSuggestionActor(store database.SuggestionStore, hub Broadcaster, metrics *utils.MetricsCollector) actor.Actor {
	return &SuggestionActor{
		suggestionsByID: make(map[uuid.UUID]*models.Suggestion),
		voters:          make(map[uuid.UUID]map[string]bool),
		store:           store,
		hub:             hub,
		metrics:         metrics,
	}
}

// Receive handles incoming messages
func (a *SuggestionActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("SuggestionActor started")
		a.hydrate()

	case *CreateSuggestionMsg:
		a.handleCreate(context, msg)
	case *ToggleSuggestionVoteMsg:
		a.handleToggleVote(context, msg)
	case *GetSuggestionVoteMsg:
		a.handleGetVote(context, msg)
	case *ListSuggestionsMsg:
		a.handleList(context)
	default:
		log.Printf("SuggestionActor: Unknown message type: %T", msg)
	}
}

func (a *SuggestionActor) hydrate() {
	if a.store == nil {
		return
	}

	ctx := context.Background()
	suggestions, err := a.store.LoadSuggestions(ctx)
	if err != nil {
		log.Fatalf("SuggestionActor: failed to load suggestions: %v", err)
	}
	for _, s := range suggestions {
		a.suggestionsByID[s.ID] = s
	}

	votes, err := a.store.LoadSuggestionVotes(ctx)
	if err != nil {
		log.Fatalf("SuggestionActor: failed to load suggestion votes: %v", err)
	}
	for _, vote := range votes {
		if _, exists := a.voters[vote.SuggestionID]; !exists {
			a.voters[vote.SuggestionID] = make(map[string]bool)
		}
		a.voters[vote.SuggestionID][vote.Fingerprint] = true
	}

	log.Printf("SuggestionActor: loaded %d suggestions, %d votes", len(suggestions), len(votes))
}

func (a *SuggestionActor) handleCreate(context actor.Context, msg *CreateSuggestionMsg) {
	startTime := time.Now()

	title := strings.TrimSpace(msg.Title)
	if len(title) < minSuggestionTitleLen {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Title too short", nil))
		return
	}

	suggestion := &models.Suggestion{
		ID:                 uuid.New(),
		Title:              title,
		Description:        strings.TrimSpace(msg.Description),
		Votes:              0,
		CreatedAt:          time.Now(),
		CreatorFingerprint: msg.Fingerprint,
	}

	if a.store != nil {
		if err := a.store.SaveSuggestion(contextBackground(), suggestion); err != nil {
			log.Printf("SuggestionActor: failed to persist suggestion: %v", err)
			context.Respond(utils.NewStorageError("Failed to persist suggestion", err))
			return
		}
	}

	a.suggestionsByID[suggestion.ID] = suggestion
	a.voters[suggestion.ID] = make(map[string]bool)

	a.broadcast(websocket.Event{Type: websocket.EventNewSuggestion, Suggestion: suggestion})
	if a.metrics != nil {
		a.metrics.AddOperationLatency("create_suggestion", time.Since(startTime))
	}
	context.Respond(suggestion)
}

func (a *SuggestionActor) handleToggleVote(context actor.Context, msg *ToggleSuggestionVoteMsg) {
	suggestion, exists := a.suggestionsByID[msg.SuggestionID]
	if !exists {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "Suggestion not found", nil))
		return
	}

	if _, tracked := a.voters[msg.SuggestionID]; !tracked {
		a.voters[msg.SuggestionID] = make(map[string]bool)
	}

	hadVoted := a.voters[msg.SuggestionID][msg.Fingerprint]

	updated := *suggestion
	if hadVoted {
		updated.Votes--
	} else {
		updated.Votes++
	}

	if a.store != nil {
		vote := &models.SuggestionVote{SuggestionID: msg.SuggestionID, Fingerprint: msg.Fingerprint}
		var err error
		if hadVoted {
			err = a.store.DeleteSuggestionVote(contextBackground(), msg.SuggestionID, msg.Fingerprint)
		} else {
			err = a.store.SaveSuggestionVote(contextBackground(), vote)
		}
		if err != nil {
			log.Printf("SuggestionActor: failed to persist vote toggle: %v", err)
			context.Respond(utils.NewStorageError("Failed to persist vote", err))
			return
		}
		if err := a.store.SaveSuggestion(contextBackground(), &updated); err != nil {
			log.Printf("SuggestionActor: failed to persist suggestion: %v", err)
			context.Respond(utils.NewStorageError("Failed to persist suggestion", err))
			return
		}
	}

	*suggestion = updated
	if hadVoted {
		delete(a.voters[msg.SuggestionID], msg.Fingerprint)
	} else {
		a.voters[msg.SuggestionID][msg.Fingerprint] = true
	}

	a.broadcast(websocket.Event{Type: websocket.EventUpdateSuggestion, Suggestion: suggestion})
	context.Respond(&ToggleResult{Votes: suggestion.Votes, Voted: !hadVoted})
}

func (a *SuggestionActor) handleGetVote(context actor.Context, msg *GetSuggestionVoteMsg) {
	if voters, exists := a.voters[msg.SuggestionID]; exists {
		context.Respond(voters[msg.Fingerprint])
		return
	}
	context.Respond(false)
}

func (a *SuggestionActor) handleList(context actor.Context) {
	suggestions := make([]*models.Suggestion, 0, len(a.suggestionsByID))
	for _, s := range a.suggestionsByID {
		suggestions = append(suggestions, s)
	}

	// Most voted first; newest first among ties.
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Votes != suggestions[j].Votes {
			return suggestions[i].Votes > suggestions[j].Votes
		}
		return suggestions[i].CreatedAt.After(suggestions[j].CreatedAt)
	})

	context.Respond(suggestions)
}

func (a *SuggestionActor) broadcast(event websocket.Event) {
	if a.hub != nil {
		a.hub.BroadcastEvent(event)
	}
}
