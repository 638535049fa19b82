package risk

// Wellbeing score per mood label on a 1..5 scale. Unrecognized labels score
// neutral.
var moodScores = map[string]int{
	"happy":      5,
	"excited":    5,
	"grateful":   4,
	"calm":       4,
	"neutral":    3,
	"reflective": 3,
	"anxious":    2,
	"sad":        1,
}

func MoodScore(mood string) int {
	if s, ok := moodScores[mood]; ok {
		return s
	}
	return 3
}
