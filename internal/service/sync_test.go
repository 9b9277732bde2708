package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/TripSync/internal/models"
	"github.com/atinyakov/TripSync/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	UpsertPlacesFunc    func(ctx context.Context, places []models.TripRecord) error
	GetPlacesByUserFunc func(ctx context.Context, userID string) ([]models.TripRecord, error)
	DeletePlaceFunc     func(ctx context.Context, id int64) (bool, error)
}

var _ service.TripRepository = (*mockRepo)(nil)

func (m *mockRepo) UpsertPlaces(ctx context.Context, places []models.TripRecord) error {
	return m.UpsertPlacesFunc(ctx, places)
}
func (m *mockRepo) GetPlacesByUser(ctx context.Context, userID string) ([]models.TripRecord, error) {
	return m.GetPlacesByUserFunc(ctx, userID)
}
func (m *mockRepo) DeletePlace(ctx context.Context, id int64) (bool, error) {
	return m.DeletePlaceFunc(ctx, id)
}

func validPlace(id int64) models.TripRecord {
	return models.TripRecord{ID: id, PlaceName: "Goa", Experience: "Great", TravelWith: "Family", TravelBy: "Train", UserID: "u1"}
}

func TestSync_UpsertsValidBatch(t *testing.T) {
	var got []models.TripRecord
	repo := &mockRepo{
		UpsertPlacesFunc: func(_ context.Context, places []models.TripRecord) error {
			got = places
			return nil
		},
	}
	batch := []models.TripRecord{validPlace(1), validPlace(2)}

	err := service.NewSyncService(repo).Sync(context.Background(), batch)

	require.NoError(t, err)
	assert.Equal(t, batch, got)
}

func TestSync_InvalidBatchWritesNothing(t *testing.T) {
	repo := &mockRepo{
		UpsertPlacesFunc: func(context.Context, []models.TripRecord) error {
			t.Fatal("UpsertPlaces must not be called")
			return nil
		},
	}
	bad := validPlace(2)
	bad.PlaceName = ""

	err := service.NewSyncService(repo).Sync(context.Background(), []models.TripRecord{validPlace(1), bad})

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "placeName is required", verr.Message("places[1].placeName"))
}

func TestSync_EmptyBatch(t *testing.T) {
	err := service.NewSyncService(&mockRepo{}).Sync(context.Background(), nil)

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "places must be a non-empty array", verr.Message("places"))
}

func TestSync_RepoError(t *testing.T) {
	wantErr := errors.New("db down")
	repo := &mockRepo{
		UpsertPlacesFunc: func(context.Context, []models.TripRecord) error { return wantErr },
	}

	err := service.NewSyncService(repo).Sync(context.Background(), []models.TripRecord{validPlace(1)})

	assert.ErrorIs(t, err, wantErr)
}

func TestListByUser(t *testing.T) {
	repo := &mockRepo{
		GetPlacesByUserFunc: func(_ context.Context, userID string) ([]models.TripRecord, error) {
			assert.Equal(t, "u1", userID)
			return []models.TripRecord{validPlace(1)}, nil
		},
	}

	got, err := service.NewSyncService(repo).ListByUser(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, []models.TripRecord{validPlace(1)}, got)
}

func TestListByUser_NilBecomesEmpty(t *testing.T) {
	repo := &mockRepo{
		GetPlacesByUserFunc: func(context.Context, string) ([]models.TripRecord, error) { return nil, nil },
	}

	got, err := service.NewSyncService(repo).ListByUser(context.Background(), "u2")

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByUser_Error(t *testing.T) {
	wantErr := errors.New("fetch failed")
	repo := &mockRepo{
		GetPlacesByUserFunc: func(context.Context, string) ([]models.TripRecord, error) { return nil, wantErr },
	}

	_, err := service.NewSyncService(repo).ListByUser(context.Background(), "u1")

	assert.ErrorIs(t, err, wantErr)
}

func TestDelete(t *testing.T) {
	wantErr := errors.New("delete failed")
	tests := []struct {
		name    string
		found   bool
		repoErr error
		want    error
	}{
		{"deleted", true, nil, nil},
		{"missing", false, nil, models.ErrNotFound},
		{"repo error", false, wantErr, wantErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{
				DeletePlaceFunc: func(_ context.Context, id int64) (bool, error) {
					assert.Equal(t, int64(42), id)
					return tt.found, tt.repoErr
				},
			}

			err := service.NewSyncService(repo).Delete(context.Background(), 42)

			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
