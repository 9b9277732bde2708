package storage

import (
	"errors"

	"github.com/atinyakov/TripSync/internal/config"
)

var (
	// ErrDuplicateID is returned by Insert when a record with the same id
	// is already stored.
	ErrDuplicateID = errors.New("place with this id already exists")
	// ErrClosed is returned by data operations on a store that is not open.
	ErrClosed = errors.New("local store is not open")
)

// DefaultFile is the store file used when no path is configured.
const DefaultFile = config.DefaultDBPath
