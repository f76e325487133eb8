package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-01T10:00:00Z", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01T12:00:00+02:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01T10:00:00.123456", time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC)},
		{"2024-05-01T10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01 10:00:00.5", time.Date(2024, 5, 1, 10, 0, 0, 500000000, time.UTC)},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestUser_UnmarshalZonelessTimestamps(t *testing.T) {
	data := `{"username": null, "first_name": "Ali", "created_at": "2024-05-01T10:00:00.123456",
		"queries": [{"word": "apple", "direction": "auto-uz", "timestamp": "2024-05-01T10:00:01.000001"}]}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(data), &u))

	assert.Equal(t, "", u.Username)
	assert.Equal(t, "Ali", u.FirstName)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC), u.CreatedAt)
	require.Len(t, u.Queries, 1)
	assert.Equal(t, "apple", u.Queries[0].Word)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 1, 1000, time.UTC), u.Queries[0].Timestamp)
}

func TestQuery_RoundTripKeepsRFC3339(t *testing.T) {
	q := Query{ID: "q1", Word: "book", Direction: "auto-uz", Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"q1","word":"book","direction":"auto-uz","timestamp":"2024-05-01T10:00:00Z"}`, string(data))

	var back Query
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, q, back)
}

func TestQuery_UnmarshalRejectsBadTimestamp(t *testing.T) {
	var q Query
	assert.Error(t, json.Unmarshal([]byte(`{"word":"x","timestamp":"soon"}`), &q))
}
