// Package http provides HTTP handlers and routing for the trip collection.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atinyakov/TripSync/internal/middleware"
	"github.com/atinyakov/TripSync/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SyncService defines the operations required by the SyncHandler.
type SyncService interface {
	// Sync validates and upserts a batch of places.
	Sync(ctx context.Context, places []models.TripRecord) error
	// ListByUser returns the places owned by userID.
	ListByUser(ctx context.Context, userID string) ([]models.TripRecord, error)
	// Delete removes a place, returning models.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}

// SyncHandler handles HTTP requests for the trip collection.
type SyncHandler struct {
	SyncService SyncService
	Log         *zap.Logger
}

const msgForbidden = "Forbidden"

type messageResponse struct {
	Message string `json:"message"`
}

type invalidBodyResponse struct {
	Message string              `json:"message"`
	Errors  []models.FieldError `json:"errors"`
}

func (h *SyncHandler) log() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

// Sync handles POST /api/sync requests.
// It decodes {"places": [...]} and upserts every place, or none of them
// when any place is invalid. Every 400 carries an "errors" list.
// With auth on, each place must belong to the token's user.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	places, err := models.DecodeBatch(r.Body)
	var verr *models.ValidationError
	if err != nil {
		resp := invalidBodyResponse{
			Message: models.MsgInvalidBody,
			Errors:  []models.FieldError{{Field: "body", Message: models.MsgInvalidBody}},
		}
		if errors.As(err, &verr) {
			resp.Errors = verr.Errors
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	subject := middleware.GetUserIDFromContext(r.Context())
	if subject != "" {
		for _, p := range places {
			if p.UserID != "" && p.UserID != subject {
				h.log().Warn("sync for another user rejected",
					zap.String("subject", subject), zap.String("user_id", p.UserID))
				writeJSON(w, http.StatusForbidden, messageResponse{Message: msgForbidden})
				return
			}
		}
	}

	err = h.SyncService.Sync(r.Context(), places)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, verr)
		return
	case err != nil:
		h.log().Error("failed to sync trips", zap.Int("places", len(places)), zap.String("subject", subject), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Failed to sync trips"})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Trips synced successfully"})
}

// ListByUser handles GET /api/sync/{userId} requests.
func (h *SyncHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	// chi matches on RawPath when the path has escaped slashes, leaving the param escaped.
	if r.URL.RawPath != "" {
		if v, err := url.PathUnescape(userID); err == nil {
			userID = v
		}
	}

	subject := middleware.GetUserIDFromContext(r.Context())
	if subject != "" && subject != userID {
		h.log().Warn("list for another user rejected", zap.String("subject", subject), zap.String("user_id", userID))
		writeJSON(w, http.StatusForbidden, messageResponse{Message: msgForbidden})
		return
	}

	places, err := h.SyncService.ListByUser(r.Context(), userID)
	if err != nil {
		h.log().Error("failed to fetch trips", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Failed to fetch trips"})
		return
	}

	writeJSON(w, http.StatusOK, places)
}

// Delete handles DELETE /api/sync/delete/{id} requests.
func (h *SyncHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid id"})
		return
	}

	err = h.SyncService.Delete(r.Context(), id)
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Place not found"})
		return
	case err != nil:
		h.log().Error("failed to delete place", zap.Int64("id", id),
			zap.String("subject", middleware.GetUserIDFromContext(r.Context())), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Failed to delete place"})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Place deleted successfully"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
