package fallback

// Tier 1: structured coping playbooks, checked in order.
var playbooks = []rule{
	{
		name: "body_image",
		triggers: []string{
			"body image", "too fat", "fat", "overweight", "weight", "appearance",
			"judged", "judgment", "judgement", "look ugly", "look bad",
		},
		reply: "I hear how heavy this feels—fearing judgment about your body can be exhausting.\n" +
			"- Name the inner critic → label those thoughts as thoughts, not facts.\n" +
			"- Reframe comparisons → follow accounts that are body-neutral/positive; unfollow triggers.\n" +
			"- Values first → choose movement/meals for energy & care, not punishment.\n" +
			"- Gradual exposure → wear a comfortable outfit in low-stakes settings; notice predictions vs actual reactions.\n" +
			"- Limit checking/rumination → set small windows (e.g., one mirror check), then redirect to activity.\n" +
			"- Self-talk cue → “I’m learning to treat my body kindly while living my life.”\n" +
			"If eating patterns feel out of control (restriction, binge, purge), consider talking to a clinician for tailored support.",
	},
	{
		name:     "trauma",
		triggers: []string{"ptsd", "trauma", "post traumatic"},
		reply: "Thanks for reaching out—coping with trauma is hard, and you’re not alone.\n" +
			"- Grounding: 5-4-3-2-1 with senses; pair with slow exhale (6s) breaths.\n" +
			"- Triggers plan: list common triggers → choose a brief script + exit option.\n" +
			"- Body regulation: paced breathing, cold water splash, or a short walk to reset arousal.\n" +
			"- Night support: wind-down routine; keep a note pad to externalize intrusive thoughts.\n" +
			"- Values micro-steps: one small, safe action that moves life forward today.\n" +
			"If nightmares, flashbacks, or hyperarousal persist, evidence-based therapies (e.g., TF-CBT, EMDR) can help—consider a licensed professional.",
	},
	{
		name: "social_anxiety",
		triggers: []string{
			"fear of judgment", "fear of judgement", "being judged", "people judging", "social anxiety",
		},
		reply: "That fear of being judged can feel intense—I get it.\n" +
			"- Prediction test: write your feared outcome; run a tiny exposure; compare prediction vs outcome.\n" +
			"- Attention shift: place a small object in your pocket; when you notice self-focus, touch it and notice the room (sounds, colors).\n" +
			"- Self-compassion: talk to yourself as you would to a close friend; short kind phrase works.\n" +
			"- Post-event review: list 2 things that went OK before any critique.\n" +
			"- Ladder it: build exposures from easiest → harder over days, not all at once.",
	},
	{
		name:     "sleep",
		triggers: []string{"trouble sleeping", "insomnia", "can't sleep", "cant sleep", "sleep problem"},
		reply: "Sleep trouble is rough—here are bite-size steps:\n" +
			"- Consistent wake time; light exposure within an hour of waking.\n" +
			"- Wind-down 45–60 min; no problem-solving in bed—use a worry pad earlier.\n" +
			"- If awake >20–30 min, get up to a dim-light, low-stimulation activity; return when sleepy.\n" +
			"- Caffeine cutoff ~8h before bed; alcohol often worsens sleep quality.",
	},
	{
		name:     "general_help",
		triggers: []string{"help", "solve", "ways", "how to", "what to do"},
		reply: "Let’s make this practical:\n" +
			"- Name the problem in one sentence; pick one tiny next step.\n" +
			"- Schedule it on your calendar; 10–15 minutes is enough to start.\n" +
			"- Remove one friction (prep item, ask for help, set reminder).\n" +
			"- After, record one thing that went better than expected.",
	},
}

// Tier 2: short category replies.
var categories = []rule{
	{
		name: "eating_concerns",
		triggers: []string{
			"body image", "eating disorder", "anorexia", "bulimia", "binge", "purge", "disordered eating",
		},
		reply: "Thank you for sharing that—body image and eating concerns can feel heavy. " +
			"If it helps, we can talk about what you’ve been experiencing, any triggers you notice, and small steps for support. " +
			"If symptoms affect your health or daily life, consider speaking with a licensed professional for tailored care.",
	},
	{
		name:     "distress",
		triggers: []string{"depressed", "sad", "hopeless", "empty", "lonely", "worthless"},
		reply: "I'm really sorry you're feeling this low. Depression can make everything feel heavy and exhausting. " +
			"If possible, try to talk to someone you trust or consider reaching out to a counselor.",
	},
	{
		name:     "anxiety",
		triggers: []string{"anxious", "panic", "nervous", "worried", "overthinking"},
		reply: "Feeling anxious can be overwhelming. Try slowing your breathing — in for 4, hold for 4, out for 6. " +
			"You're safe right now; grounding steps can help calm your system.",
	},
	{
		name:     "stress",
		triggers: []string{"stressed", "pressure", "burned out", "overworked"},
		reply: "Stress builds up fast. Even small breaks, stretching, or stepping away briefly can help. " +
			"It's okay to slow down when things feel overwhelming.",
	},
	{
		name:     "anger",
		triggers: []string{"angry", "mad", "frustrated", "rage"},
		reply: "It sounds like you're feeling very frustrated or angry. " +
			"Taking a moment to breathe and step back can help you regain balance.",
	},
	{
		name:     "technical",
		triggers: []string{"error", "bug", "flask", "python", "api", "server"},
		reply:    "Share the exact error message and I’ll help fix it.",
	},
}

const (
	genericRule  = "generic"
	genericReply = "I’m here with you. Tell me more about what you're feeling."
)
