package quality

import (
	"strings"
	"unicode/utf8"
)

// MinReplyRunes is the shortest reply worth sending.
const MinReplyRunes = 25

var fillerPhrases = []string{
	"tell me more about what you're feeling",
	"as an ai language model",
	"i'm just an ai",
}

// IsLowQuality reports whether a sanitized reply should be replaced by a fallback.
func IsLowQuality(userMsg, reply string) bool {
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" || utf8.RuneCountInString(trimmed) < MinReplyRunes {
		return true
	}
	if normalize(trimmed) == normalize(userMsg) {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, phrase := range fillerPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
