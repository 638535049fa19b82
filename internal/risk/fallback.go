package risk

import (
	"strings"

	"github.com/reflecta/reflecta-backend/internal/types"
)

// Keyword sets for the availability fallback. Deliberately conservative:
// biased toward flagging critical phrasing, silent otherwise.
var criticalKeywords = []string{
	"suicide", "kill myself", "want to die", "end it all", "not worth living",
	"self harm", "cut myself", "hurt myself",
}

var highKeywords = []string{
	"hopeless", "worthless", "no point", "give up", "can't go on",
	"unbearable", "too much pain",
}

// FallbackClassify is the deterministic keyword classifier used when the
// primary classifier is unavailable. Total over all inputs, no external
// dependencies.
func FallbackClassify(content string, mood string) Verdict {
	contentLower := strings.ToLower(content)

	for _, keyword := range criticalKeywords {
		if !strings.Contains(contentLower, keyword) {
			continue
		}
		factorType := types.FactorSuicidalIdeation
		if strings.Contains(keyword, "harm") {
			factorType = types.FactorSelfHarmIndication
		}
		return Verdict{
			RiskLevel: types.RiskLevelCritical,
			RiskFactors: []types.RiskFactor{
				{
					Type:        factorType,
					Severity:    "high",
					Description: `Detected critical keyword: "` + keyword + `"`,
				},
			},
			Summary:    "Critical risk detected - immediate intervention recommended",
			KeyPhrases: []string{keyword},
			MoodTrend:  "declining",
			Recommendations: []string{
				"URGENT: Contact student immediately",
				"Consider emergency mental health services",
				"Notify appropriate authorities per protocol",
			},
			Confidence: 0.7,
		}
	}

	var matched []string
	for _, keyword := range highKeywords {
		if strings.Contains(contentLower, keyword) {
			matched = append(matched, keyword)
		}
	}

	negativeMood := mood == types.MoodSad || mood == types.MoodAnxious
	if len(matched) >= 2 || (negativeMood && len(matched) >= 1) {
		return Verdict{
			RiskLevel: types.RiskLevelHigh,
			RiskFactors: []types.RiskFactor{
				{
					Type:        types.FactorMoodDecline,
					Severity:    "high",
					Description: "Multiple negative indicators detected",
				},
			},
			Summary:    "High risk indicators present",
			KeyPhrases: matched,
			MoodTrend:  "declining",
			Recommendations: []string{
				"Schedule counseling session soon",
				"Monitor closely over next few days",
			},
			Confidence: 0.6,
		}
	}

	return Verdict{
		RiskLevel:  types.RiskLevelNone,
		Summary:    "No significant risk detected",
		Confidence: 0.5,
	}
}
