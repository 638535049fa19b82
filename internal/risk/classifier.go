package risk

import (
	"context"

	"github.com/reflecta/reflecta-backend/internal/platform/logger"
)

// AIClient is the subset of the language-model client the classifier needs.
type AIClient interface {
	GenerateJSON(ctx context.Context, system string, user string) (string, error)
}

// Classifier is the primary risk classifier. It asks the external model for
// a structured verdict and degrades to the keyword fallback on any failure:
// an entry analysis must never fail because the model is down.
type Classifier struct {
	log *logger.Logger
	ai  AIClient
}

func NewClassifier(log *logger.Logger, ai AIClient) *Classifier {
	return &Classifier{
		log: log.With("component", "RiskClassifier"),
		ai:  ai,
	}
}

// Classify never returns an error. Callers cannot observe which path ran
// except through the verdict's confidence and summary content.
func (c *Classifier) Classify(ctx context.Context, content string, mood string, historySummary string) Verdict {
	if c.ai == nil {
		return FallbackClassify(content, mood)
	}

	prompt := BuildClassifierPrompt(content, mood, historySummary)
	raw, err := c.ai.GenerateJSON(ctx, classifierSystemPrompt, prompt)
	if err != nil {
		c.log.Warn("Primary classifier unavailable, using keyword fallback", "error", err)
		return FallbackClassify(content, mood)
	}

	verdict, err := ParseVerdict(raw)
	if err != nil {
		c.log.Warn("Primary classifier response unparsable, using keyword fallback", "error", err)
		return FallbackClassify(content, mood)
	}
	return verdict
}
