package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"thewherewhat/internal/engine/actors"
	"thewherewhat/internal/fingerprint"
	"thewherewhat/internal/media"
	"thewherewhat/internal/models"
	"thewherewhat/internal/utils"

	"github.com/google/uuid"
)

// CreateBubbleRequest is the JSON body for bubble creation. Multipart
// requests carry the same fields as form values plus an optional media file.
// Coordinates are pointers so an absent field is distinguishable from 0.
type CreateBubbleRequest struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Title   string   `json:"title"`
	Caption string   `json:"caption"`
}

// VoteRequest is the JSON body for casting a vote.
type VoteRequest struct {
	Vote int `json:"vote"`
}

// HandleListBubbles returns the currently visible bubbles.
func (s *Server) HandleListBubbles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		future := s.Context.RequestFuture(s.Engine.GetBubbleActor(), &actors.ListVisibleMsg{}, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to list bubbles")
			return
		}

		respondJSON(w, http.StatusOK, result.([]*models.Bubble))
	}
}

// HandleCreateBubble creates a user bubble, accepting either a JSON body or
// a multipart form with an optional media attachment.
func (s *Server) HandleCreateBubble() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		msg := &actors.CreateBubbleMsg{Fingerprint: fingerprint.FromRequest(r)}

		contentType := r.Header.Get("Content-Type")
		if strings.HasPrefix(contentType, "multipart/form-data") {
			if err := r.ParseMultipartForm(media.MaxUploadSize); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid multipart form")
				return
			}

			lat, latErr := strconv.ParseFloat(r.FormValue("lat"), 64)
			lng, lngErr := strconv.ParseFloat(r.FormValue("lng"), 64)
			if latErr != nil || lngErr != nil || r.FormValue("title") == "" {
				respondAppError(w, utils.NewAppError(utils.ErrInvalidInput, "Missing required fields", nil))
				return
			}
			msg.Lat = lat
			msg.Lng = lng
			msg.Title = r.FormValue("title")
			msg.Caption = r.FormValue("caption")

			if file, header, err := r.FormFile("media"); err == nil {
				defer file.Close()
				url, mediaType, saveErr := s.Media.Save(file, header)
				if saveErr != nil {
					log.Printf("Failed to save media upload: %v", saveErr)
					respondAppError(w, utils.NewAppError(utils.ErrInvalidInput, "Unsupported media file", saveErr))
					return
				}
				msg.MediaURL = url
				msg.MediaType = mediaType
			}
		} else {
			var req CreateBubbleRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, "Invalid request format")
				return
			}
			if req.Lat == nil || req.Lng == nil {
				respondAppError(w, utils.NewAppError(utils.ErrInvalidInput, "Missing required fields", nil))
				return
			}
			msg.Lat = *req.Lat
			msg.Lng = *req.Lng
			msg.Title = req.Title
			msg.Caption = req.Caption
		}

		future := s.Context.RequestFuture(s.Engine.GetBubbleActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to create bubble")
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			respondAppError(w, appErr)
			return
		}

		respondJSON(w, http.StatusOK, result.(*models.Bubble))
	}
}

// HandleVoteBubble casts a vote on a bubble.
func (s *Server) HandleVoteBubble() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		bubbleID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			respondAppError(w, utils.NewAppError(utils.ErrNotFound, "Bubble not found", nil))
			return
		}

		var req VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request format")
			return
		}

		msg := &actors.VoteBubbleMsg{
			BubbleID:    bubbleID,
			Fingerprint: fingerprint.FromRequest(r),
			Value:       req.Vote,
		}

		future := s.Context.RequestFuture(s.Engine.GetBubbleActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to vote")
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			s.Metrics.IncrementErrors()
			respondAppError(w, appErr)
			return
		}

		voteResult := result.(*actors.VoteResult)
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"newScore": voteResult.NewScore,
			"yourVote": voteResult.YourVote,
		})
	}
}

// HandleGetBubbleVote returns the caller's current vote on a bubble
// (-1, 0 or 1).
func (s *Server) HandleGetBubbleVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		bubbleID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			respondJSON(w, http.StatusOK, map[string]int{"vote": models.VoteNone})
			return
		}

		msg := &actors.GetVoteMsg{
			BubbleID:    bubbleID,
			Fingerprint: fingerprint.FromRequest(r),
		}

		future := s.Context.RequestFuture(s.Engine.GetBubbleActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to get vote")
			return
		}

		respondJSON(w, http.StatusOK, map[string]int{"vote": result.(int)})
	}
}
