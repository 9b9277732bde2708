// Package models defines the trip record shared by the device store,
// the HTTP payloads and the server repository.
package models

import (
	"fmt"
	"strings"
)

// TripRecord is a single logged trip experience.
type TripRecord struct {
	// ID is the device timestamp (milliseconds) taken when the trip was created.
	// It is the primary key both on the device and on the server.
	ID int64 `json:"_id"`
	// PlaceName is the place visited.
	PlaceName string `json:"placeName"`
	// Experience is a free-text description of the visit.
	Experience string `json:"experience"`
	// TravelWith names the companions.
	TravelWith string `json:"travelWith"`
	// TravelBy is the mode of transport.
	TravelBy string `json:"travelBy"`
	// UserID references the owning user. Records written by old app
	// versions may have it empty on the device.
	UserID string `json:"userId"`
}

// TripInput holds the fields of the add-trip form.
type TripInput struct {
	PlaceName  string
	Experience string
	TravelWith string
	TravelBy   string
}

// Form field messages.
const (
	MsgPlaceNameRequired  = "placeName is required"
	MsgExperienceRequired = "experience is required"
	MsgTravelWithRequired = "Please enter with whom you travel"
	MsgTravelByRequired   = "Please enter your travel transport detail"
)

// Validate checks that every form field is filled in.
// It returns a *ValidationError listing each empty field, or nil.
func (in TripInput) Validate() error {
	var fields []FieldError
	if blank(in.PlaceName) {
		fields = append(fields, FieldError{Field: "placeName", Message: MsgPlaceNameRequired})
	}
	if blank(in.Experience) {
		fields = append(fields, FieldError{Field: "experience", Message: MsgExperienceRequired})
	}
	if blank(in.TravelWith) {
		fields = append(fields, FieldError{Field: "travelWith", Message: MsgTravelWithRequired})
	}
	if blank(in.TravelBy) {
		fields = append(fields, FieldError{Field: "travelBy", Message: MsgTravelByRequired})
	}
	if len(fields) > 0 {
		return &ValidationError{Errors: fields}
	}
	return nil
}

// Record builds a TripRecord from the form values.
func (in TripInput) Record(id int64, userID string) TripRecord {
	return TripRecord{
		ID:         id,
		PlaceName:  strings.TrimSpace(in.PlaceName),
		Experience: strings.TrimSpace(in.Experience),
		TravelWith: strings.TrimSpace(in.TravelWith),
		TravelBy:   strings.TrimSpace(in.TravelBy),
		UserID:     userID,
	}
}

// ValidateBatch applies the server-side rules for a bulk upsert.
// All records are checked before anything is written, so the result
// lists every problem in the batch.
func ValidateBatch(places []TripRecord) error {
	if len(places) == 0 {
		return &ValidationError{Errors: []FieldError{{Field: "places", Message: "places must be a non-empty array"}}}
	}

	var fields []FieldError
	for i, p := range places {
		path := func(name string) string { return fmt.Sprintf("places[%d].%s", i, name) }
		if p.ID <= 0 {
			fields = append(fields, FieldError{Field: path("_id"), Message: "_id must be numeric"})
		}
		if blank(p.PlaceName) {
			fields = append(fields, FieldError{Field: path("placeName"), Message: "placeName is required"})
		}
		if blank(p.Experience) {
			fields = append(fields, FieldError{Field: path("experience"), Message: "experience is required"})
		}
		if blank(p.TravelWith) {
			fields = append(fields, FieldError{Field: path("travelWith"), Message: "travelWith is required"})
		}
		if blank(p.TravelBy) {
			fields = append(fields, FieldError{Field: path("travelBy"), Message: "travelBy is required"})
		}
		if blank(p.UserID) {
			fields = append(fields, FieldError{Field: path("userId"), Message: "userId is required"})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Errors: fields}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
