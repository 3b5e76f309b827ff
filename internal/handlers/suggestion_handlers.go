package handlers

import (
	"encoding/json"
	"net/http"

	"thewherewhat/internal/engine/actors"
	"thewherewhat/internal/fingerprint"
	"thewherewhat/internal/models"
	"thewherewhat/internal/utils"

	"github.com/google/uuid"
)

// CreateSuggestionRequest is the JSON body for creating a suggestion.
type CreateSuggestionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HandleListSuggestions returns all suggestions, most voted first.
func (s *Server) HandleListSuggestions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		future := s.Context.RequestFuture(s.Engine.GetSuggestionActor(), &actors.ListSuggestionsMsg{}, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to fetch suggestions")
			return
		}

		respondJSON(w, http.StatusOK, result.([]*models.Suggestion))
	}
}

// HandleCreateSuggestion creates a feature suggestion.
func (s *Server) HandleCreateSuggestion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		var req CreateSuggestionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request format")
			return
		}

		msg := &actors.CreateSuggestionMsg{
			Title:       req.Title,
			Description: req.Description,
			Fingerprint: fingerprint.FromRequest(r),
		}

		future := s.Context.RequestFuture(s.Engine.GetSuggestionActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to create suggestion")
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			respondAppError(w, appErr)
			return
		}

		respondJSON(w, http.StatusOK, result.(*models.Suggestion))
	}
}

// HandleToggleSuggestionVote toggles the caller's vote on a suggestion.
func (s *Server) HandleToggleSuggestionVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		suggestionID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			respondAppError(w, utils.NewAppError(utils.ErrNotFound, "Suggestion not found", nil))
			return
		}

		msg := &actors.ToggleSuggestionVoteMsg{
			SuggestionID: suggestionID,
			Fingerprint:  fingerprint.FromRequest(r),
		}

		future := s.Context.RequestFuture(s.Engine.GetSuggestionActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to vote")
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			respondAppError(w, appErr)
			return
		}

		toggle := result.(*actors.ToggleResult)
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"votes":   toggle.Votes,
			"voted":   toggle.Voted,
		})
	}
}

// HandleGetSuggestionVote reports whether the caller voted on a suggestion.
func (s *Server) HandleGetSuggestionVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		suggestionID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			respondJSON(w, http.StatusOK, map[string]bool{"voted": false})
			return
		}

		msg := &actors.GetSuggestionVoteMsg{
			SuggestionID: suggestionID,
			Fingerprint:  fingerprint.FromRequest(r),
		}

		future := s.Context.RequestFuture(s.Engine.GetSuggestionActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to get vote")
			return
		}

		respondJSON(w, http.StatusOK, map[string]bool{"voted": result.(bool)})
	}
}
