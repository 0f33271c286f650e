package emotion

import "strings"

// Label 表示用户消息的情绪类别。
type Label string

const (
	Neutral  Label = "neutral"
	Distress Label = "distress"
	Anxiety  Label = "anxiety"
	Anger    Label = "anger"
	Positive Label = "positive"
)

// bucket 是一组关键词，按顺序匹配，先命中者生效。
type bucket struct {
	label    Label
	glyph    string
	keywords []string
}

var buckets = []bucket{
	{Distress, "😢", []string{"sad", "depressed", "hopeless", "cry", "lonely", "empty", "tired"}},
	{Anxiety, "😰", []string{"anxious", "panic", "worried", "scared", "nervous", "overthinking"}},
	{Anger, "😡", []string{"angry", "mad", "furious", "rage", "irritated"}},
	{Positive, "😊", []string{"happy", "excited", "great", "good", "relieved", "peaceful"}},
}

const neutralGlyph = "💬"

// Decision 给出情绪识别结果以及对应的表情符号。
type Decision struct {
	Emotion Label
	Glyph   string
}

// Analyze 根据用户消息推断情绪类别，未命中任何关键词时返回 Neutral。
func Analyze(text string) Decision {
	normalized := strings.ToLower(text)
	for _, b := range buckets {
		for _, word := range b.keywords {
			if strings.Contains(normalized, word) {
				return Decision{Emotion: b.label, Glyph: b.glyph}
			}
		}
	}
	return Decision{Emotion: Neutral, Glyph: neutralGlyph}
}

// Tag 将 userText 对应的表情符号追加到 reply 末尾。
func Tag(reply, userText string) (string, Decision) {
	d := Analyze(userText)
	return reply + " " + d.Glyph, d
}
