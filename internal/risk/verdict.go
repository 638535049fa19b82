package risk

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/reflecta/reflecta-backend/internal/types"
)

// Verdict is the structured risk classification produced by either
// classifier. Field tags match the JSON contract the model is instructed to
// return.
type Verdict struct {
	RiskLevel       string             `json:"riskLevel"`
	RiskFactors     []types.RiskFactor `json:"riskFactors,omitempty"`
	Summary         string             `json:"summary"`
	KeyPhrases      []string           `json:"keyPhrases,omitempty"`
	MoodTrend       string             `json:"moodTrend,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
	Confidence      float64            `json:"confidence"`
}

// None reports whether the verdict carries no actionable risk.
func (v Verdict) None() bool {
	return v.RiskLevel == "" || v.RiskLevel == types.RiskLevelNone
}

func (v Verdict) Analysis() types.AIAnalysis {
	return types.AIAnalysis{
		Summary:         v.Summary,
		KeyPhrases:      v.KeyPhrases,
		MoodTrend:       v.MoodTrend,
		Recommendations: v.Recommendations,
		Confidence:      v.Confidence,
	}
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ParseVerdict decodes a model response into a Verdict. Extraction
// strategies are tried in order: the bare payload, then the first fenced
// code block. Anything else is a parse error.
func ParseVerdict(raw string) (Verdict, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Verdict{}, fmt.Errorf("parse verdict: empty response")
	}

	var v Verdict
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, nil
	}

	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &v); err == nil {
			return v, nil
		}
	}

	return Verdict{}, fmt.Errorf("parse verdict: response is not a JSON object")
}
