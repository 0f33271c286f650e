// Package fallback produces deterministic canned guidance when generation is absent or rejected.
package fallback

import "strings"

// Tier identifies which table produced a reply.
type Tier string

const (
	TierPlaybook Tier = "playbook"
	TierCategory Tier = "category"
)

// Result is the chosen reply plus the rule that produced it.
type Result struct {
	Text string
	Tier Tier
	Rule string
}

type rule struct {
	name     string
	triggers []string
	reply    string
}

func (r rule) matches(lower string) bool {
	for _, trigger := range r.triggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

func firstMatch(rules []rule, msg string) (rule, bool) {
	lower := strings.ToLower(msg)
	for _, r := range rules {
		if r.matches(lower) {
			return r, true
		}
	}
	return rule{}, false
}

// Playbook returns the first matching tier-1 playbook.
func Playbook(msg string) (Result, bool) {
	r, ok := firstMatch(playbooks, msg)
	if !ok {
		return Result{}, false
	}
	return Result{Text: r.reply, Tier: TierPlaybook, Rule: r.name}, true
}

// Category returns the first matching tier-2 reply, or the generic catch-all.
func Category(msg string) Result {
	if r, ok := firstMatch(categories, msg); ok {
		return Result{Text: r.reply, Tier: TierCategory, Rule: r.name}
	}
	return Result{Text: genericReply, Tier: TierCategory, Rule: genericRule}
}

// Reply walks both tiers and never returns an empty text.
func Reply(msg string) Result {
	if res, ok := Playbook(msg); ok {
		return res
	}
	return Category(msg)
}
