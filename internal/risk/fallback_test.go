package risk

import (
	"testing"

	"github.com/reflecta/reflecta-backend/internal/types"
)

func TestFallbackClassifyCritical(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		mood       string
		wantFactor string
	}{
		{"suicide keyword", "I keep thinking about suicide lately", types.MoodSad, types.FactorSuicidalIdeation},
		{"end it all", "some days I just want to end it all", types.MoodNeutral, types.FactorSuicidalIdeation},
		{"self harm keyword", "I thought about self harm again today", types.MoodAnxious, types.FactorSelfHarmIndication},
		{"hurt myself", "I am scared I will hurt myself", types.MoodCalm, types.FactorSelfHarmIndication},
		{"case insensitive", "I WANT TO DIE", types.MoodHappy, types.FactorSuicidalIdeation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := FallbackClassify(tt.content, tt.mood)
			if v.RiskLevel != types.RiskLevelCritical {
				t.Fatalf("RiskLevel = %q, want critical", v.RiskLevel)
			}
			if v.Confidence != 0.7 {
				t.Fatalf("Confidence = %v, want 0.7", v.Confidence)
			}
			if len(v.RiskFactors) != 1 || v.RiskFactors[0].Type != tt.wantFactor {
				t.Fatalf("RiskFactors = %+v, want one factor of type %q", v.RiskFactors, tt.wantFactor)
			}
		})
	}
}

// Critical keywords trigger regardless of mood. A happy label must never
// mask explicit crisis phrasing.
func TestFallbackClassifyCriticalIgnoresMood(t *testing.T) {
	for _, mood := range []string{types.MoodHappy, types.MoodExcited, types.MoodGrateful} {
		v := FallbackClassify("honestly life is not worth living", mood)
		if v.RiskLevel != types.RiskLevelCritical {
			t.Fatalf("mood %q: RiskLevel = %q, want critical", mood, v.RiskLevel)
		}
	}
}

func TestFallbackClassifyHigh(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		mood     string
		wantHigh bool
	}{
		{"two high keywords", "everything feels hopeless and worthless", types.MoodNeutral, true},
		{"one keyword sad mood", "it all feels hopeless", types.MoodSad, true},
		{"one keyword anxious mood", "there is no point anymore", types.MoodAnxious, true},
		{"one keyword neutral mood", "feeling pretty hopeless today", types.MoodNeutral, false},
		{"no keywords sad mood", "today was a rough day at school", types.MoodSad, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := FallbackClassify(tt.content, tt.mood)
			if tt.wantHigh {
				if v.RiskLevel != types.RiskLevelHigh {
					t.Fatalf("RiskLevel = %q, want high", v.RiskLevel)
				}
				if v.Confidence != 0.6 {
					t.Fatalf("Confidence = %v, want 0.6", v.Confidence)
				}
			} else {
				if v.RiskLevel != types.RiskLevelNone {
					t.Fatalf("RiskLevel = %q, want none", v.RiskLevel)
				}
				if !v.None() {
					t.Fatalf("None() = false for %+v", v)
				}
			}
		})
	}
}

func TestFallbackClassifyNone(t *testing.T) {
	v := FallbackClassify("had a great time at practice, feeling strong", types.MoodHappy)
	if v.RiskLevel != types.RiskLevelNone {
		t.Fatalf("RiskLevel = %q, want none", v.RiskLevel)
	}
	if v.Confidence != 0.5 {
		t.Fatalf("Confidence = %v, want 0.5", v.Confidence)
	}
	if len(v.RiskFactors) != 0 {
		t.Fatalf("RiskFactors = %+v, want empty", v.RiskFactors)
	}
}
