package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"thewherewhat/internal/config"
	"thewherewhat/internal/engine"
	"thewherewhat/internal/media"
	"thewherewhat/internal/scrapers"
	"thewherewhat/internal/utils"
	"thewherewhat/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Hub            *websocket.Hub
	Media          *media.Storage
	Importer       *scrapers.Importer
	Metrics        *utils.MetricsCollector
	Map            *config.MapConfig
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	context *actor.RootContext,
	eng *engine.Engine,
	hub *websocket.Hub,
	mediaStorage *media.Storage,
	importer *scrapers.Importer,
	metrics *utils.MetricsCollector,
	mapCfg *config.MapConfig,
) *Server {
	return &Server{
		System:         system,
		Context:        context,
		Engine:         eng,
		Hub:            hub,
		Media:          mediaStorage,
		Importer:       importer,
		Metrics:        metrics,
		Map:            mapCfg,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// Routes registers every handler on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.HandleHealth())

	mux.HandleFunc("GET /api/bubbles", s.HandleListBubbles())
	mux.HandleFunc("POST /api/bubbles", s.HandleCreateBubble())
	mux.HandleFunc("POST /api/bubbles/{id}/vote", s.HandleVoteBubble())
	mux.HandleFunc("GET /api/bubbles/{id}/vote", s.HandleGetBubbleVote())

	mux.HandleFunc("GET /api/suggestions", s.HandleListSuggestions())
	mux.HandleFunc("POST /api/suggestions", s.HandleCreateSuggestion())
	mux.HandleFunc("POST /api/suggestions/{id}/vote", s.HandleToggleSuggestionVote())
	mux.HandleFunc("GET /api/suggestions/{id}/vote", s.HandleGetSuggestionVote())

	mux.HandleFunc("POST /api/scrape", s.HandleScrape())
	mux.HandleFunc("POST /api/cleanup", s.HandleCleanup())

	mux.HandleFunc("GET /ws", s.HandleWebSocket())

	if s.Media != nil {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.Media.Dir()))))
	}

	return mux
}

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondAppError translates an AppError into the JSON error shape clients
// branch on: {"error": message, "code": code}.
func respondAppError(w http.ResponseWriter, appErr *utils.AppError) {
	respondJSON(w, utils.AppErrorToHTTPStatus(appErr.Code), map[string]string{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

// respondError writes a plain error without an application code.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
