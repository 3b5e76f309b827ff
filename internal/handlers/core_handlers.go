package handlers

import (
	"net/http"

	"thewherewhat/internal/engine/actors"
	"thewherewhat/internal/utils"
)

// HandleHealth reports bubble count, connected viewers and uptime.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		future := s.Context.RequestFuture(s.Engine.GetBubbleActor(), &actors.GetCountsMsg{}, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to get bubble count")
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":        "ok",
			"bubbles":       result.(int),
			"viewers":       s.Hub.ViewerCount(),
			"uptimeSeconds": int(s.Metrics.Uptime().Seconds()),
		})
	}
}

// HandleScrape triggers one bot import cycle on demand (for testing).
func (s *Server) HandleScrape() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if s.Importer == nil {
			respondError(w, http.StatusServiceUnavailable, "Importer not configured")
			return
		}

		imported := s.Importer.Run(r.Context())
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"imported": imported,
		})
	}
}

// HandleCleanup removes user bubbles far outside the served map area.
func (s *Server) HandleCleanup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		msg := &actors.RemoveDistantMsg{
			CenterLat:     s.Map.CenterLat,
			CenterLng:     s.Map.CenterLng,
			MaxDistanceKm: s.Map.MaxDistanceKm,
		}

		future := s.Context.RequestFuture(s.Engine.GetBubbleActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to clean up")
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			s.Metrics.IncrementErrors()
			respondAppError(w, appErr)
			return
		}

		cleanup := result.(*actors.CleanupResult)
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"deleted": cleanup.Deleted,
		})
	}
}
