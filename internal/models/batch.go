package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
)

// MsgInvalidBody is reported when a sync request body is not JSON at all.
const MsgInvalidBody = "invalid body"

// DecodeBatch reads a sync request body of the form {"places": [...]}.
//
// Only malformed JSON is an error, returned as a *ValidationError on the
// "body" field. Values of the wrong type decode to zero values so that
// ValidateBatch reports them with its usual messages: a "places" that is
// not an array yields no records, an element that is not an object yields
// an empty record, and an "_id" that is neither an integer nor a string
// holding one yields 0. Numbers and booleans in text fields keep their
// literal text.
func DecodeBatch(r io.Reader) ([]TripRecord, error) {
	var body struct {
		Places json.RawMessage `json:"places"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, nil
		}
		return nil, &ValidationError{Errors: []FieldError{{Field: "body", Message: MsgInvalidBody}}}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body.Places, &items); err != nil {
		return nil, nil
	}

	places := make([]TripRecord, 0, len(items))
	for _, item := range items {
		var w struct {
			ID         json.RawMessage `json:"_id"`
			PlaceName  json.RawMessage `json:"placeName"`
			Experience json.RawMessage `json:"experience"`
			TravelWith json.RawMessage `json:"travelWith"`
			TravelBy   json.RawMessage `json:"travelBy"`
			UserID     json.RawMessage `json:"userId"`
		}
		if err := json.Unmarshal(item, &w); err != nil {
			places = append(places, TripRecord{})
			continue
		}
		places = append(places, TripRecord{
			ID:         decodeID(w.ID),
			PlaceName:  decodeText(w.PlaceName),
			Experience: decodeText(w.Experience),
			TravelWith: decodeText(w.TravelWith),
			TravelBy:   decodeText(w.TravelBy),
			UserID:     decodeText(w.UserID),
		})
	}
	return places, nil
}

func decodeID(raw json.RawMessage) int64 {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func decodeText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch c := raw[0]; {
	case c == '-' || (c >= '0' && c <= '9'), bytes.Equal(raw, []byte("true")), bytes.Equal(raw, []byte("false")):
		return string(raw)
	}
	return ""
}
