package models

// WordInfo describes a dictionary entry for a word
type WordInfo struct {
	Translation    string   `json:"translation,omitempty"`
	PartOfSpeech   string   `json:"part_of_speech,omitempty"`
	Level          string   `json:"level,omitempty"`
	Definition     string   `json:"definition,omitempty"`
	Prefixes       []string `json:"prefixes,omitempty"`
	Suffixes       []string `json:"suffixes,omitempty"`
	SingularPlural string   `json:"singular_plural,omitempty"`
	Examples       []string `json:"examples,omitempty"`
	Synonyms       []string `json:"synonyms,omitempty"`
}

// IsEmpty reports whether the entry carries no information at all
func (w WordInfo) IsEmpty() bool {
	return w.Translation == "" && w.PartOfSpeech == "" && w.Level == "" && w.Definition == "" &&
		len(w.Prefixes) == 0 && len(w.Suffixes) == 0 && w.SingularPlural == "" &&
		len(w.Examples) == 0 && len(w.Synonyms) == 0
}
