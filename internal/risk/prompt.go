package risk

import (
	"fmt"
	"strings"

	"github.com/reflecta/reflecta-backend/internal/types"
)

const classifierSystemPrompt = "You are a mental health risk assessment expert. Respond only with valid JSON."

const classifierPromptTemplate = `You are a mental health risk assessment AI. Analyze the following journal entry for mental health risk indicators.

CURRENT ENTRY:
Mood: %s
Content: %s

RECENT MOOD HISTORY (last 7 days):
%s

Analyze for the following risk factors:
- Suicidal ideation (CRITICAL)
- Self-harm indications (CRITICAL)
- Severe depression symptoms (HIGH)
- Anxiety/panic indicators (MEDIUM)
- Social isolation patterns (MEDIUM)
- Academic stress (LOW)
- Sleep issues (LOW)

Return a JSON response with this structure:
{
  "riskLevel": "none|low|medium|high|critical",
  "riskFactors": [
    {
      "type": "suicidal_ideation|self_harm_indication|mood_decline|negative_keywords|isolation_pattern|stress_increase|sleep_issues|academic_struggle",
      "severity": "low|medium|high",
      "description": "Brief description of the indicator"
    }
  ],
  "summary": "Brief summary of mental health status",
  "keyPhrases": ["key phrase 1", "key phrase 2"],
  "moodTrend": "improving|stable|declining",
  "recommendations": ["recommendation 1", "recommendation 2"],
  "confidence": 0.0-1.0
}

IMPORTANT:
- If you detect suicidal ideation or self-harm, set riskLevel to "critical"
- Be sensitive but accurate
- If no significant risk, set riskLevel to "none"
- Only return the JSON, no additional text`

func BuildClassifierPrompt(content string, mood string, historySummary string) string {
	return fmt.Sprintf(classifierPromptTemplate, mood, content, historySummary)
}

// HistorySummary renders recent entries as one dated mood line each,
// most-recent-first, for classifier context. Entry content is deliberately
// excluded; only the current entry's text is shared.
func HistorySummary(entries []types.JournalEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("[%s] Mood: %s", e.Date.Format("2006-01-02"), e.Mood))
	}
	return strings.Join(lines, "\n")
}
