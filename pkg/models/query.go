package models

import (
	"encoding/json"
	"time"
)

// Query is a single lookup made by a user
type Query struct {
	ID        string    `json:"id,omitempty" db:"id"`
	Word      string    `json:"word" db:"word"`
	Direction string    `json:"direction" db:"direction"` // e.g. "uz-en", "auto-uz"
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}

// UnmarshalJSON accepts timestamp with or without a zone
func (q *Query) UnmarshalJSON(data []byte) error {
	type alias Query
	aux := struct {
		*alias
		Timestamp *string `json:"timestamp"`
	}{alias: (*alias)(q)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := parseTimestampPtr(aux.Timestamp)
	if err != nil {
		return err
	}
	q.Timestamp = t
	return nil
}
