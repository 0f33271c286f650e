package ai

import (
	"fmt"
	"strings"
)

const supportTemplate = `You are a supportive, trauma-informed mental-health assistant.
Use the context only if helpful. Reply as PLAIN TEXT only.
Do NOT restate or paraphrase the user's question.
Structure:
- 1 short validation sentence
- 4–6 concise, practical tips as bullet points
- 1 gentle sign-off
Avoid clinical diagnosis/treatment instructions. Not a substitute for professional care.

Context (optional):
%s

User:
%s

Answer:`

const classifyTemplate = `
You are a classifier. Classify the user's message into ONLY ONE of these modes:
medical
therapy
technical
general

User message: %s
Return ONLY the mode word.
`

// SupportPrompt builds the reply prompt; the model continues after "Answer:".
func SupportPrompt(context, userMsg string) string {
	return fmt.Sprintf(supportTemplate, strings.TrimSpace(context), strings.TrimSpace(userMsg))
}

// ClassifyPrompt asks for a single mode word.
func ClassifyPrompt(userMsg string) string {
	return fmt.Sprintf(classifyTemplate, strings.TrimSpace(userMsg))
}
