// Package repository provides persistence implementations for trip
// synchronization using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/TripSync/internal/models"
	"github.com/lib/pq"
)

// PostgresTripRepository stores places in the places table. Deletes are
// tombstones; every read and delete ignores tombstoned rows.
type PostgresTripRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTripRepository creates a PostgresTripRepository using the provided *sql.DB.
func NewPostgresTripRepository(db *sql.DB) *PostgresTripRepository {
	return &PostgresTripRepository{DB: db}
}

// UpsertPlaces inserts or overwrites every place by id in one statement.
// A tombstoned id is revived. When the batch repeats an id, the last copy wins.
func (r *PostgresTripRepository) UpsertPlaces(ctx context.Context, places []models.TripRecord) error {
	places = lastByID(places)
	if len(places) == 0 {
		return nil
	}

	var (
		ids         = make([]int64, len(places))
		userIDs     = make([]string, len(places))
		names       = make([]string, len(places))
		experiences = make([]string, len(places))
		withs       = make([]string, len(places))
		bys         = make([]string, len(places))
	)
	for i, p := range places {
		ids[i] = p.ID
		userIDs[i] = p.UserID
		names[i] = p.PlaceName
		experiences[i] = p.Experience
		withs[i] = p.TravelWith
		bys[i] = p.TravelBy
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO places (id, user_id, place_name, experience, travel_with, travel_by)
		SELECT * FROM unnest($1::bigint[], $2::text[], $3::text[], $4::text[], $5::text[], $6::text[])
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			place_name = EXCLUDED.place_name,
			experience = EXCLUDED.experience,
			travel_with = EXCLUDED.travel_with,
			travel_by = EXCLUDED.travel_by,
			deleted = false,
			deleted_at = NULL
	`, pq.Array(ids), pq.Array(userIDs), pq.Array(names), pq.Array(experiences), pq.Array(withs), pq.Array(bys))
	if err != nil {
		return fmt.Errorf("UpsertPlaces: %w", err)
	}
	return nil
}

func lastByID(places []models.TripRecord) []models.TripRecord {
	pos := make(map[int64]int, len(places))
	out := make([]models.TripRecord, 0, len(places))
	for _, p := range places {
		if i, ok := pos[p.ID]; ok {
			out[i] = p
			continue
		}
		pos[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}

// GetPlacesByUser returns the live places of userID in insertion order.
func (r *PostgresTripRepository) GetPlacesByUser(ctx context.Context, userID string) ([]models.TripRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, place_name, experience, travel_with, travel_by, user_id
		FROM places
		WHERE user_id = $1 AND deleted = false
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("GetPlacesByUser: %w", err)
	}
	defer rows.Close()

	places := make([]models.TripRecord, 0)
	for rows.Next() {
		var p models.TripRecord
		if err := rows.Scan(&p.ID, &p.PlaceName, &p.Experience, &p.TravelWith, &p.TravelBy, &p.UserID); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetPlacesByUser: rows: %w", err)
	}
	return places, nil
}

// DeletePlace tombstones the place with the given id.
// It reports false when no live place had that id.
func (r *PostgresTripRepository) DeletePlace(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE places SET deleted = true, deleted_at = now()
		WHERE id = $1 AND deleted = false
	`, id)
	if err != nil {
		return false, fmt.Errorf("DeletePlace: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("DeletePlace: rows affected: %w", err)
	}
	return n > 0, nil
}
