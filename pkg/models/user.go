package models

import (
	"encoding/json"
	"time"
)

// User represents a Telegram user known to the bot
type User struct {
	ID        int64     `json:"-" db:"telegram_id"` // Telegram User ID
	Username  string    `json:"username" db:"username"`
	FirstName string    `json:"first_name" db:"first_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Queries   []Query   `json:"queries" db:"-"`
}

// UnmarshalJSON accepts created_at with or without a zone
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	aux := struct {
		*alias
		CreatedAt *string `json:"created_at"`
	}{alias: (*alias)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := parseTimestampPtr(aux.CreatedAt)
	if err != nil {
		return err
	}
	u.CreatedAt = t
	return nil
}
