package models

import (
	"encoding/json"
	"fmt"
)

// Phrase is a learnable phrase with an optional meaning
type Phrase struct {
	Text    string `json:"phrase"`
	Meaning string `json:"meaning,omitempty"`
}

// UnmarshalJSON accepts either a bare string or a {"phrase","meaning"} object
func (p *Phrase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Text = s
		p.Meaning = ""
		return nil
	}

	type plain Phrase
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("phrase must be a string or an object: %w", err)
	}
	*p = Phrase(obj)
	return nil
}

// String renders the phrase for a chat message
func (p Phrase) String() string {
	if p.Meaning == "" {
		return p.Text
	}
	return p.Text + " – " + p.Meaning
}
