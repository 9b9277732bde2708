package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// CleanDeletedPlaces removes places that were deleted more than retention ago
// and returns how many rows went away.
func CleanDeletedPlaces(ctx context.Context, db *sql.DB, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res, err := db.ExecContext(ctx, `
		DELETE FROM places
		 WHERE deleted = true
		   AND deleted_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartSoftDeleteCleaner purges deleted places every interval until ctx is done.
func StartSoftDeleteCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rows, err := CleanDeletedPlaces(ctx, db, retention)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Error("failed to clean deleted places", zap.Error(err))
					continue
				}
				if rows > 0 {
					log.Info("cleaned deleted places", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
