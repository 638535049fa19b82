package risk

import (
	"context"
	"fmt"
	"testing"

	"github.com/reflecta/reflecta-backend/internal/platform/logger"
	"github.com/reflecta/reflecta-backend/internal/types"
)

type stubAI struct {
	response string
	err      error
	calls    int
}

func (s *stubAI) GenerateJSON(ctx context.Context, system string, user string) (string, error) {
	s.calls++
	return s.response, s.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestClassifyUsesModelVerdict(t *testing.T) {
	ai := &stubAI{response: `{"riskLevel":"medium","summary":"model summary","confidence":0.75}`}
	c := NewClassifier(testLogger(t), ai)

	v := c.Classify(context.Background(), "long day, lots on my mind", types.MoodNeutral, "")
	if ai.calls != 1 {
		t.Fatalf("model calls = %d, want 1", ai.calls)
	}
	if v.RiskLevel != types.RiskLevelMedium || v.Summary != "model summary" {
		t.Fatalf("verdict = %+v, want model verdict", v)
	}
}

func TestClassifyFallsBackOnModelError(t *testing.T) {
	ai := &stubAI{err: fmt.Errorf("upstream 503")}
	c := NewClassifier(testLogger(t), ai)

	v := c.Classify(context.Background(), "I want to end it all", types.MoodSad, "")
	if v.RiskLevel != types.RiskLevelCritical {
		t.Fatalf("RiskLevel = %q, want critical from fallback", v.RiskLevel)
	}
	if v.Confidence != 0.7 {
		t.Fatalf("Confidence = %v, want fallback confidence 0.7", v.Confidence)
	}
}

func TestClassifyFallsBackOnUnparsableResponse(t *testing.T) {
	ai := &stubAI{response: "I'm sorry, I can't help with that."}
	c := NewClassifier(testLogger(t), ai)

	v := c.Classify(context.Background(), "everything feels hopeless and worthless", types.MoodSad, "")
	if v.RiskLevel != types.RiskLevelHigh {
		t.Fatalf("RiskLevel = %q, want high from fallback", v.RiskLevel)
	}
}

func TestClassifyWithoutClient(t *testing.T) {
	c := NewClassifier(testLogger(t), nil)

	v := c.Classify(context.Background(), "a perfectly normal day", types.MoodHappy, "")
	if !v.None() {
		t.Fatalf("verdict = %+v, want none", v)
	}
}
