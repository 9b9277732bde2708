package tripsync

import (
	"fmt"
	"strings"

	"github.com/atinyakov/TripSync/internal/models"
)

// Source tells where the visible trip list was loaded from.
type Source int

const (
	SourceLocal Source = iota
	SourceRemote
)

func (s Source) String() string {
	switch s {
	case SourceLocal:
		return "local"
	case SourceRemote:
		return "remote"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// View is the list currently shown to the user together with its origin.
// Records from the two sources are never merged.
type View struct {
	Source  Source
	Records []models.TripRecord
}

// Empty reports whether the view has no records.
func (v View) Empty() bool {
	return len(v.Records) == 0
}

func (v View) clone() View {
	records := make([]models.TripRecord, len(v.Records))
	copy(records, v.Records)
	return View{Source: v.Source, Records: records}
}

func (v View) without(id int64) View {
	records := make([]models.TripRecord, 0, len(v.Records))
	for _, r := range v.Records {
		if r.ID != id {
			records = append(records, r)
		}
	}
	return View{Source: v.Source, Records: records}
}

// AddResult is what AddTrip hands back to the list screen.
type AddResult struct {
	// Record is the trip that was stored on the device.
	Record models.TripRecord
	// Pushed is true when the batch upsert to the server succeeded.
	Pushed bool
	// PushErr holds the push failure when Pushed is false.
	PushErr error
}

// DeletePolicy orders the two halves of a delete.
type DeletePolicy int

const (
	// DeleteLocalFirst removes the device copy first, then asks the server.
	// A server failure leaves the stores diverged.
	DeleteLocalFirst DeletePolicy = iota
	// DeleteRemoteFirst asks the server first and touches the device copy
	// only once the server no longer has the record.
	DeleteRemoteFirst
)

func (p DeletePolicy) String() string {
	switch p {
	case DeleteLocalFirst:
		return "local-first"
	case DeleteRemoteFirst:
		return "remote-first"
	default:
		return fmt.Sprintf("DeletePolicy(%d)", int(p))
	}
}

// ParseDeletePolicy accepts "local-first" and "remote-first".
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "local-first", "local":
		return DeleteLocalFirst, nil
	case "remote-first", "remote":
		return DeleteRemoteFirst, nil
	default:
		return 0, fmt.Errorf("unknown delete policy %q", s)
	}
}
