// Package service provides the trip synchronization business logic,
// delegating persistence to a repository interface.
package service

import (
	"context"

	"github.com/atinyakov/TripSync/internal/models"
)

// TripRepository defines the persistence operations needed by the SyncService.
type TripRepository interface {
	// UpsertPlaces inserts new places or overwrites existing ones by id.
	UpsertPlaces(ctx context.Context, places []models.TripRecord) error
	// GetPlacesByUser retrieves all places belonging to the specified user.
	GetPlacesByUser(ctx context.Context, userID string) ([]models.TripRecord, error)
	// DeletePlace removes the place with the given id and reports whether it existed.
	DeletePlace(ctx context.Context, id int64) (bool, error)
}

// SyncService implements the trip collection operations.
type SyncService struct {
	// repo is the underlying persistence repository.
	repo TripRepository
}

// NewSyncService constructs a SyncService with the provided TripRepository.
func NewSyncService(repo TripRepository) *SyncService {
	return &SyncService{repo: repo}
}

// Sync validates the whole batch and, only if every place passes, upserts
// all of them. Validation failures are returned as *models.ValidationError.
func (s *SyncService) Sync(ctx context.Context, places []models.TripRecord) error {
	if err := models.ValidateBatch(places); err != nil {
		return err
	}
	return s.repo.UpsertPlaces(ctx, places)
}

// ListByUser returns the places of userID, never nil.
func (s *SyncService) ListByUser(ctx context.Context, userID string) ([]models.TripRecord, error) {
	places, err := s.repo.GetPlacesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if places == nil {
		places = []models.TripRecord{}
	}
	return places, nil
}

// Delete removes the place with the given id.
// It returns models.ErrNotFound when there is no such place.
func (s *SyncService) Delete(ctx context.Context, id int64) error {
	found, err := s.repo.DeletePlace(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return models.ErrNotFound
	}
	return nil
}
