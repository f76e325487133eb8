package translate

import "strings"

// uzbekTokens are common Uzbek words written in Latin script
var uzbekTokens = map[string]bool{
	"men": true, "sen": true, "biz": true, "siz": true, "ular": true, "va": true,
	"yoq": true, "yo'q": true, "kitob": true, "rahmat": true, "salom": true,
	"yaxshi": true, "bor": true, "yo'qlik": true, "qanday": true, "iltimos": true,
	"olma": true, "ot": true, "it": true, "bolalar": true,
}

// DetectUzbek reports whether text looks Uzbek: it contains a Cyrillic
// letter or one of the common Latin-script Uzbek words.
func DetectUzbek(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if r >= '\u0400' && r <= '\u04FF' {
			return true
		}
	}
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		if uzbekTokens[strings.Trim(tok, ".,!?;:")] {
			return true
		}
	}
	return false
}
