package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhrase_UnmarshalMixedForms(t *testing.T) {
	var topics map[string][]Phrase
	data := `{"greetings": ["Hello there", {"phrase": "How are you?", "meaning": "Qalaysiz?"}]}`

	require.NoError(t, json.Unmarshal([]byte(data), &topics))
	require.Len(t, topics["greetings"], 2)

	assert.Equal(t, "Hello there", topics["greetings"][0].String())
	assert.Equal(t, "How are you? – Qalaysiz?", topics["greetings"][1].String())
}

func TestPhrase_UnmarshalRejectsNumbers(t *testing.T) {
	var p Phrase
	assert.Error(t, json.Unmarshal([]byte(`42`), &p))
}
