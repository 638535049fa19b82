package risk

import (
	"fmt"

	"github.com/reflecta/reflecta-backend/internal/types"
)

// Pattern analysis policy constants. Decline is measured on the 1..5 mood
// scale; 1.5 is the minimum signal worth a counselor's attention.
const (
	PatternMinEntries     = 5
	PatternDeclineLow     = 1.5
	PatternDeclineMedium  = 2.0
	PatternDeclineHigh    = 2.5
	PatternNegativeMedium = 4
	PatternNegativeHigh   = 5
)

type PatternResult struct {
	RiskLevel     string
	Decline       float64
	NegativeCount int
	RecentAvg     float64
	OverallAvg    float64
}

// AnalyzeMoodWindow computes the rolling-window mood decline over entries
// ordered oldest to newest. A nil result means no alert is warranted:
// either fewer than PatternMinEntries entries, or decline below threshold.
func AnalyzeMoodWindow(moods []string) *PatternResult {
	n := len(moods)
	if n < PatternMinEntries {
		return nil
	}

	scores := make([]int, n)
	total := 0
	for i, m := range moods {
		scores[i] = MoodScore(m)
		total += scores[i]
	}

	recentCount := 7
	if n < recentCount {
		recentCount = n
	}
	recentTotal := 0
	for _, s := range scores[n-recentCount:] {
		recentTotal += s
	}

	recentAvg := float64(recentTotal) / float64(recentCount)
	overallAvg := float64(total) / float64(n)
	decline := overallAvg - recentAvg

	if decline < PatternDeclineLow {
		return nil
	}

	negativeCount := 0
	for _, m := range moods[n-recentCount:] {
		if m == types.MoodAnxious || m == types.MoodSad {
			negativeCount++
		}
	}

	riskLevel := types.RiskLevelLow
	switch {
	case decline >= PatternDeclineHigh || negativeCount >= PatternNegativeHigh:
		riskLevel = types.RiskLevelHigh
	case decline >= PatternDeclineMedium || negativeCount >= PatternNegativeMedium:
		riskLevel = types.RiskLevelMedium
	}

	return &PatternResult{
		RiskLevel:     riskLevel,
		Decline:       decline,
		NegativeCount: negativeCount,
		RecentAvg:     recentAvg,
		OverallAvg:    overallAvg,
	}
}

func (r *PatternResult) Factor() types.RiskFactor {
	return types.RiskFactor{
		Type:     types.FactorMoodDecline,
		Severity: r.RiskLevel,
		Description: fmt.Sprintf(
			"Mood has declined by %.1f points over the last 7 days. %d of last 7 entries show negative mood.",
			r.Decline, r.NegativeCount,
		),
	}
}

func (r *PatternResult) Analysis() types.AIAnalysis {
	return types.AIAnalysis{
		Summary:   "Detected sustained mood decline over the past week.",
		MoodTrend: fmt.Sprintf("Recent average: %.1f/5, Overall average: %.1f/5", r.RecentAvg, r.OverallAvg),
		Recommendations: []string{
			"Check in with student about recent stressors",
			"Review recent journal entries for context",
			"Consider scheduling a counseling session",
		},
		Confidence: 0.8,
	}
}
