package engine

import (
	"time"

	"thewherewhat/internal/database"
	"thewherewhat/internal/engine/actors"
	"thewherewhat/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine spawns and owns the domain actors. All bubble and suggestion
// mutations flow through their actor mailboxes, which is what serializes
// request-driven and timer-driven writes against each other.
type Engine struct {
	bubbleActor     *actor.PID
	suggestionActor *actor.PID
}

// Stores groups the persistence interfaces handed to the actors. Either may
// be nil to run without persistence.
type Stores struct {
	Bubbles     database.BubbleStore
	Suggestions database.SuggestionStore
}

func NewEngine(system *actor.ActorSystem, retention time.Duration, stores Stores, hub actors.Broadcaster, metrics *utils.MetricsCollector) *Engine {
	context := system.Root

	bubbleProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewBubbleActor(retention, stores.Bubbles, hub, metrics)
	})
	bubblePID := context.Spawn(bubbleProps)

	suggestionProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewSuggestionActor(stores.Suggestions, hub, metrics)
	})
	suggestionPID := context.Spawn(suggestionProps)

	return &Engine{
		bubbleActor:     bubblePID,
		suggestionActor: suggestionPID,
	}
}

// GetBubbleActor returns the PID of the bubble lifecycle actor
func (e *Engine) GetBubbleActor() *actor.PID {
	return e.bubbleActor
}

// GetSuggestionActor returns the PID of the suggestion board actor
func (e *Engine) GetSuggestionActor() *actor.PID {
	return e.suggestionActor
}
