// Package quality cleans raw model output and decides whether it is fit to send.
package quality

import (
	"regexp"
	"strings"
)

// CutMarkers end a generation; anything from the first marker on is a hallucinated next turn.
var CutMarkers = []string{
	"\nUSER:", "\nUser:",
	"\nCONTEXT:", "\nContext:",
	"\nASSISTANT:", "\nAssistant:",
	"\nSYSTEM:", "\nSystem:",
}

var (
	leadingLabel = regexp.MustCompile(`^\s*(ASSISTANT:|Assistant:|RESPONSE:|Response:)\s*`)
	whitespace   = regexp.MustCompile(`\s+`)
	sentenceEnd  = regexp.MustCompile(`[.?!]+\s+`)
)

// TruncateAtMarker cuts text at the earliest role marker.
func TruncateAtMarker(text string) string {
	cut := len(text)
	for _, marker := range CutMarkers {
		if idx := strings.Index(text, marker); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return text[:cut]
}

// StripLabel removes any leading "Assistant:" style labels.
func StripLabel(text string) string {
	for {
		stripped := leadingLabel.ReplaceAllString(text, "")
		if stripped == text {
			return text
		}
		text = stripped
	}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(whitespace.ReplaceAllString(s, " ")))
	return strings.TrimRight(s, ".?!")
}

// isEcho reports whether a unit restates the user message.
func isEcho(unit, user string) bool {
	t := normalize(unit)
	if t == "" {
		return false
	}
	return t == user || strings.HasSuffix(t, user) || strings.HasSuffix(user, t)
}

// splitSentences splits a line after each run of terminal punctuation.
func splitSentences(line string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(line, -1) {
		out = append(out, strings.TrimSpace(line[start:loc[1]]))
		start = loc[1]
	}
	if tail := strings.TrimSpace(line[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

// RemoveEcho drops sentences that restate the user message and drops blank lines.
// When nothing would survive, the input is returned unchanged.
func RemoveEcho(text, userMsg string) string {
	user := normalize(userMsg)
	if user == "" {
		return text
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var parts []string
		for _, sentence := range splitSentences(line) {
			if !isEcho(sentence, user) {
				parts = append(parts, sentence)
			}
		}
		if len(parts) > 0 {
			kept = append(kept, strings.Join(parts, " "))
		}
	}
	if len(kept) == 0 {
		return text
	}
	return strings.Join(kept, "\n")
}

// Sanitize runs the full cleanup: truncate, strip labels, drop echoes, trim.
// Passes repeat until the text stops changing.
func Sanitize(userMsg, raw string) string {
	text := raw
	for {
		next := cleanPass(userMsg, text)
		if next == text {
			return next
		}
		text = next
	}
}

func cleanPass(userMsg, text string) string {
	text = TruncateAtMarker(text)
	text = StripLabel(strings.TrimSpace(text))
	text = RemoveEcho(text, userMsg)
	return strings.TrimSpace(text)
}
