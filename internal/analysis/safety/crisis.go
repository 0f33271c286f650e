// Package safety detects self-harm language that must bypass the normal reply pipeline.
package safety

import "strings"

// CrisisReply is returned verbatim whenever IsCrisis matches.
const CrisisReply = "I'm really sorry you're feeling this way. If you are in immediate danger, " +
	"please contact local emergency services. Consider calling a suicide prevention " +
	"helpline in your country. You are not alone."

var crisisPhrases = []string{
	"suicide",
	"kill myself",
	"end my life",
	"hurt myself",
}

// IsCrisis reports whether text contains any self-harm phrase.
func IsCrisis(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range crisisPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
